package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-dictadmin/components/dictionary"
)

type seedService interface {
	Seed(ctx context.Context, drafts []dictionary.Draft) (created, skipped int, err error)
}

// SeedDictionariesInput names the seed file, or carries an already decoded
// document. Created and Skipped report the outcome when set.
type SeedDictionariesInput struct {
	Path     string
	Document *dictionary.SeedDocument
	Created  *int
	Skipped  *int
}

// SeedDictionariesCommand preloads dictionaries from a YAML document.
type SeedDictionariesCommand struct {
	service   seedService
	telemetry Telemetry
}

// NewSeedDictionariesCommand wires dependencies.
func NewSeedDictionariesCommand(service seedService, telemetry Telemetry) *SeedDictionariesCommand {
	return &SeedDictionariesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedDictionariesInput] = (*SeedDictionariesCommand)(nil)

// Execute reads the document and creates every missing item.
func (c *SeedDictionariesCommand) Execute(ctx context.Context, msg SeedDictionariesInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	doc := msg.Document
	if doc == nil {
		if msg.Path == "" {
			return errors.New("seed command requires a path or document")
		}
		var err error
		if doc, err = dictionary.ReadSeed(msg.Path); err != nil {
			return err
		}
	}
	created, skipped, err := c.service.Seed(ctx, doc.Drafts())
	if msg.Created != nil {
		*msg.Created = created
	}
	if msg.Skipped != nil {
		*msg.Skipped = skipped
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dictionary.command.seed", map[string]any{
		"source":  doc.Source,
		"created": created,
		"skipped": skipped,
	})
	return nil
}
