package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-dictadmin/components/dictionary"
)

type updateService interface {
	Update(ctx context.Context, draft dictionary.Draft) (dictionary.Item, error)
}

// UpdateDictionaryInput carries the edited item, including its id.
type UpdateDictionaryInput struct {
	Draft  dictionary.Draft
	Result *dictionary.Item
}

// UpdateDictionaryCommand replaces the editable fields of an item.
type UpdateDictionaryCommand struct {
	service   updateService
	telemetry Telemetry
}

// NewUpdateDictionaryCommand creates a command instance.
func NewUpdateDictionaryCommand(service updateService, telemetry Telemetry) *UpdateDictionaryCommand {
	return &UpdateDictionaryCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateDictionaryInput] = (*UpdateDictionaryCommand)(nil)

// Execute delegates to the dictionary service.
func (c *UpdateDictionaryCommand) Execute(ctx context.Context, msg UpdateDictionaryInput) error {
	if c.service == nil {
		return errors.New("update command requires service")
	}
	item, err := c.service.Update(ctx, msg.Draft)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = item
	}
	c.telemetry.Record(ctx, "dictionary.command.update", map[string]any{
		"id":   item.ID,
		"type": item.Type,
	})
	return nil
}
