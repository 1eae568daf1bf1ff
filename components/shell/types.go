package shell

import "context"

// Request carries the request data the providers need.
type Request struct {
	Path           string
	SessionID      string
	AcceptLanguage string
	ThemeName      string
	ThemeVariant   string
	// BareLayout asks for the page without the default chrome.
	BareLayout bool
}

// Metadata is the document head information rendered by the layout.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// PageContext accumulates what each provider contributes. Inner providers read
// the fields set by outer ones.
type PageContext struct {
	Request     Request         `json:"-"`
	Metadata    Metadata        `json:"metadata"`
	Theme       *ThemeSelection `json:"-"`
	Session     *Session        `json:"-"`
	Locale      string          `json:"locale"`
	Menu        []MenuItem      `json:"menu"`
	ActiveMenu  *MenuItem       `json:"active_menu,omitempty"`
	Breadcrumbs []Breadcrumb    `json:"breadcrumbs"`
	Layout      *LayoutState    `json:"layout"`
}

// Provider contributes one concern to the page context.
type Provider interface {
	Name() string
	Provide(ctx context.Context, page *PageContext) error
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc struct {
	ProviderName string
	Fn           func(ctx context.Context, page *PageContext) error
}

func (p ProviderFunc) Name() string { return p.ProviderName }

func (p ProviderFunc) Provide(ctx context.Context, page *PageContext) error {
	if p.Fn == nil {
		return nil
	}
	return p.Fn(ctx, page)
}
