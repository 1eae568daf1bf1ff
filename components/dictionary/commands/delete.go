package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

type deleteService interface {
	Delete(ctx context.Context, id int64) error
}

// DeleteDictionaryInput identifies the item to remove.
type DeleteDictionaryInput struct {
	ID int64
}

// DeleteDictionaryCommand removes a dictionary item.
type DeleteDictionaryCommand struct {
	service   deleteService
	telemetry Telemetry
}

// NewDeleteDictionaryCommand creates a command instance.
func NewDeleteDictionaryCommand(service deleteService, telemetry Telemetry) *DeleteDictionaryCommand {
	return &DeleteDictionaryCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteDictionaryInput] = (*DeleteDictionaryCommand)(nil)

// Execute delegates to the dictionary service.
func (c *DeleteDictionaryCommand) Execute(ctx context.Context, msg DeleteDictionaryInput) error {
	if c.service == nil {
		return errors.New("delete command requires service")
	}
	if err := c.service.Delete(ctx, msg.ID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dictionary.command.delete", map[string]any{"id": msg.ID})
	return nil
}
