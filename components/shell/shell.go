package shell

import (
	"context"
	"fmt"
)

// Options configures the Shell. Every collaborator is optional except the
// session store.
type Options struct {
	Metadata      Metadata
	Theme         ThemeProvider
	ThemeSelector ThemeSelector
	Sessions      *SessionStore
	Locales       *LocaleMatcher
	Menu          *MenuRegistry
	MenuCode      string
	Home          Breadcrumb
}

// Shell composes the page providers in a fixed order:
// theme, session, menu, breadcrumb, layout.
type Shell struct {
	metadata  Metadata
	locales   *LocaleMatcher
	providers []Provider
}

// New builds a Shell with safe defaults.
func New(opts Options) (*Shell, error) {
	if opts.Sessions == nil {
		return nil, ErrSessionStoreRequired
	}
	if opts.Locales == nil {
		opts.Locales = NewLocaleMatcher("en", "zh-CN")
	}
	if opts.MenuCode == "" {
		opts.MenuCode = DefaultMenuCode
	}
	if opts.Home.Label == "" {
		opts.Home = Breadcrumb{Label: "Home", Path: "/"}
	}
	return &Shell{
		metadata: opts.Metadata,
		locales:  opts.Locales,
		providers: []Provider{
			themeProvider(opts.Theme, opts.ThemeSelector),
			sessionProvider(opts.Sessions, opts.Locales),
			menuProvider(opts.Menu, opts.MenuCode),
			breadcrumbProvider(opts.Home),
			layoutProvider(),
		},
	}, nil
}

// Providers lists provider names in execution order.
func (s *Shell) Providers() []string {
	names := make([]string, len(s.providers))
	for i, p := range s.providers {
		names[i] = p.Name()
	}
	return names
}

// Locales lists the supported locale tags.
func (s *Shell) Locales() []string {
	return s.locales.Supported()
}

// Mount runs every provider against a fresh page context.
func (s *Shell) Mount(ctx context.Context, req Request) (*PageContext, error) {
	page := &PageContext{
		Request:     req,
		Metadata:    s.metadata,
		Menu:        []MenuItem{},
		Breadcrumbs: []Breadcrumb{},
	}
	for _, provider := range s.providers {
		if err := provider.Provide(ctx, page); err != nil {
			return nil, fmt.Errorf("shell: %s provider: %w", provider.Name(), err)
		}
	}
	return page, nil
}

// Release restores layout defaults once the page is done rendering.
func (s *Shell) Release(page *PageContext) {
	if page == nil || page.Layout == nil {
		return
	}
	page.Layout.SetUseDefaultLayout(true)
}
