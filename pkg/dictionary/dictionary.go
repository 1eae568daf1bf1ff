package dictionary

import (
	core "github.com/goliatone/go-dictadmin/components/dictionary"
	"github.com/goliatone/go-dictadmin/pkg/client"
)

// Service exposes the underlying components/dictionary.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Client re-exports the REST collaborator used by the console.
type Client = core.Client

// ClientConfig re-exports the REST client settings.
type ClientConfig = client.Config

// Item re-exports the dictionary record.
type Item = core.Item

// Draft re-exports the create/update payload.
type Draft = core.Draft

// NewService proxies to the internal constructor.
func NewService(opts Options) (*Service, error) {
	return core.NewService(opts)
}

// NewClient builds the resty-backed REST client.
func NewClient(cfg ClientConfig) (Client, error) {
	return client.New(cfg)
}
