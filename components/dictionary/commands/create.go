package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-dictadmin/components/dictionary"
)

type createService interface {
	Create(ctx context.Context, draft dictionary.Draft) (dictionary.Item, error)
}

// CreateDictionaryInput carries a new item. Result receives the stored item
// when set.
type CreateDictionaryInput struct {
	Draft  dictionary.Draft
	Result *dictionary.Item
}

// CreateDictionaryCommand stores a new dictionary item.
type CreateDictionaryCommand struct {
	service   createService
	telemetry Telemetry
}

// NewCreateDictionaryCommand creates a command instance.
func NewCreateDictionaryCommand(service createService, telemetry Telemetry) *CreateDictionaryCommand {
	return &CreateDictionaryCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CreateDictionaryInput] = (*CreateDictionaryCommand)(nil)

// Execute delegates to the dictionary service.
func (c *CreateDictionaryCommand) Execute(ctx context.Context, msg CreateDictionaryInput) error {
	if c.service == nil {
		return errors.New("create command requires service")
	}
	item, err := c.service.Create(ctx, msg.Draft)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = item
	}
	c.telemetry.Record(ctx, "dictionary.command.create", map[string]any{
		"id":   item.ID,
		"type": item.Type,
	})
	return nil
}
