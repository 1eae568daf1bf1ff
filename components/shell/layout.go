package shell

import (
	"context"
	"sync"
)

const layoutSessionKey = "shell.layout"

// LayoutParam=LayoutBare in the query string sets Request.BareLayout.
const (
	LayoutParam = "layout"
	LayoutBare  = "bare"
)

// LayoutState tells the template whether to wrap the page in the default
// chrome (menu, header, breadcrumb). It lives on the session so an opt-out
// lasts until the page releases it.
type LayoutState struct {
	mu         sync.Mutex
	useDefault bool
	title      string
}

func newLayoutState() *LayoutState {
	return &LayoutState{useDefault: true}
}

// UseDefaultLayout reports the current flag.
func (l *LayoutState) UseDefaultLayout() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.useDefault
}

// SetUseDefaultLayout lets a page opt out of the default chrome. Requests with
// BareLayout set start with it off; Release turns it back on.
func (l *LayoutState) SetUseDefaultLayout(v bool) {
	l.mu.Lock()
	l.useDefault = v
	l.mu.Unlock()
}

// Title is the heading derived from the active menu item.
func (l *LayoutState) Title() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.title
}

func layoutProvider() Provider {
	return ProviderFunc{
		ProviderName: "layout",
		Fn: func(_ context.Context, page *PageContext) error {
			state := newLayoutState()
			if page.Session != nil {
				stored, err := page.Session.GetOrCreate(layoutSessionKey, func() (any, error) {
					return state, nil
				})
				if err != nil {
					return err
				}
				state = stored.(*LayoutState)
			}
			state.mu.Lock()
			defer state.mu.Unlock()
			if page.Request.BareLayout {
				state.useDefault = false
			}
			switch {
			case page.ActiveMenu != nil:
				state.title = page.ActiveMenu.Label
			case len(page.Breadcrumbs) > 0:
				state.title = page.Breadcrumbs[len(page.Breadcrumbs)-1].Label
			default:
				state.title = page.Metadata.Title
			}
			page.Layout = state
			return nil
		},
	}
}
