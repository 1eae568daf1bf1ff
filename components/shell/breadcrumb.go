package shell

import "context"

// Breadcrumb is one step of the trail.
type Breadcrumb struct {
	Label string `json:"label"`
	Path  string `json:"path,omitempty"`
}

func breadcrumbProvider(home Breadcrumb) Provider {
	return ProviderFunc{
		ProviderName: "breadcrumb",
		Fn: func(_ context.Context, page *PageContext) error {
			trail := []Breadcrumb{}
			if home.Label != "" {
				trail = append(trail, home)
			}
			if active := page.ActiveMenu; active != nil {
				if active.Group != "" {
					trail = append(trail, Breadcrumb{Label: active.Group})
				}
				trail = append(trail, Breadcrumb{Label: active.Label})
			}
			page.Breadcrumbs = trail
			return nil
		},
	}
}
