package goadmin

import (
	"context"
	"errors"

	"github.com/goliatone/go-dictadmin/components/shell"
	dictionarypkg "github.com/goliatone/go-dictadmin/pkg/dictionary"
)

// MenuBuilder ensures dictionary entries exist within the admin navigation.
// shell.MenuRegistry satisfies it.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item shell.MenuItem) error
}

// Config wires the dictionary client + feature flags into an admin shell.
type Config struct {
	EnableDictionaries bool
	MenuCode           string
	MenuBuilder        MenuBuilder
	Client             dictionarypkg.Client
	DefaultMenuItem    shell.MenuItem
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed dictionary menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDictionaries && cfg.Client == nil {
		return nil, errors.New("goadmin: dictionary client is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = shell.DefaultMenuCode
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Dictionaries"
	}
	if cfg.DefaultMenuItem.Path == "" {
		cfg.DefaultMenuItem.Path = "/admin/dictionaries"
	}
	if cfg.DefaultMenuItem.Code == "" {
		cfg.DefaultMenuItem.Code = "admin.dictionaries"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "book"
	}
	if cfg.DefaultMenuItem.Group == "" {
		cfg.DefaultMenuItem.Group = "System"
	}
	return &Admin{cfg: cfg}, nil
}

// Dictionaries exposes the configured client when enabled.
func (a *Admin) Dictionaries() dictionarypkg.Client {
	if !a.cfg.EnableDictionaries {
		return nil
	}
	return a.cfg.Client
}

// MenuItem returns the entry Bootstrap registers.
func (a *Admin) MenuItem() shell.MenuItem {
	return a.cfg.DefaultMenuItem
}

// Bootstrap seeds menu entries when dictionary support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableDictionaries || a.cfg.MenuBuilder == nil {
		return nil
	}
	return a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.DefaultMenuItem)
}
