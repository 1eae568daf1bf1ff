package shell

import (
	"context"
	"sort"
	"strings"
)

// ThemeProvider matches the go-theme provider interface used by adapters.
type ThemeProvider interface {
	SelectTheme(ctx context.Context, selector ThemeSelector) (*ThemeSelection, error)
}

// ThemeSelector describes the desired theme/variant.
type ThemeSelector struct {
	Name    string
	Variant string
}

// ThemeSelection carries resolved theme details (tokens, assets, chart theme).
type ThemeSelection struct {
	Name       string
	Variant    string
	Tokens     map[string]string
	Assets     ThemeAssets
	ChartTheme string
}

// ThemeAssets provides asset metadata plus optional prefix/resolver.
type ThemeAssets struct {
	Values   map[string]string
	Prefix   string
	Resolver func(string) string
}

// AssetURL resolves the final URL for a named asset (logo, favicon, etc.).
func (assets ThemeAssets) AssetURL(name string) string {
	if len(assets.Values) == 0 {
		return ""
	}
	path := assets.Values[name]
	if path == "" {
		return ""
	}
	if assets.Resolver != nil {
		if resolved := assets.Resolver(path); resolved != "" {
			return resolved
		}
	}
	if assets.Prefix != "" {
		return strings.TrimRight(assets.Prefix, "/") + "/" + strings.TrimLeft(path, "/")
	}
	return path
}

// CSSVariablesInline renders the tokens as a style attribute value with
// sorted keys.
func (theme *ThemeSelection) CSSVariablesInline() string {
	if theme == nil || len(theme.Tokens) == 0 {
		return ""
	}
	keys := make([]string, 0, len(theme.Tokens))
	for key := range theme.Tokens {
		if strings.TrimSpace(key) != "" && theme.Tokens[key] != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	var builder strings.Builder
	for _, key := range keys {
		builder.WriteString(normalizeCSSVariable(key))
		builder.WriteString(": ")
		builder.WriteString(theme.Tokens[key])
		builder.WriteString("; ")
	}
	return strings.TrimSpace(builder.String())
}

// AssetURL resolves a named asset using the selection assets.
func (theme *ThemeSelection) AssetURL(name string) string {
	if theme == nil {
		return ""
	}
	return theme.Assets.AssetURL(name)
}

func normalizeCSSVariable(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "--") {
		return name
	}
	return "--" + name
}

// StaticThemeProvider serves one configured theme, honoring variant requests.
type StaticThemeProvider struct {
	Selection ThemeSelection
	// Variants maps a variant name to token overrides.
	Variants map[string]map[string]string
}

// SelectTheme returns a copy of the configured selection.
func (p StaticThemeProvider) SelectTheme(_ context.Context, selector ThemeSelector) (*ThemeSelection, error) {
	selection := cloneThemeSelection(&p.Selection)
	if selector.Variant != "" {
		if overrides, ok := p.Variants[selector.Variant]; ok {
			if selection.Tokens == nil {
				selection.Tokens = map[string]string{}
			}
			for key, value := range overrides {
				selection.Tokens[key] = value
			}
			selection.Variant = selector.Variant
		}
	}
	return selection, nil
}

func themeProvider(provider ThemeProvider, fallback ThemeSelector) Provider {
	return ProviderFunc{
		ProviderName: "theme",
		Fn: func(ctx context.Context, page *PageContext) error {
			if provider == nil {
				return nil
			}
			selector := fallback
			if page.Request.ThemeName != "" {
				selector.Name = page.Request.ThemeName
			}
			if page.Request.ThemeVariant != "" {
				selector.Variant = page.Request.ThemeVariant
			}
			selection, err := provider.SelectTheme(ctx, selector)
			if err != nil {
				return err
			}
			page.Theme = selection
			if page.Metadata.Icon == "" {
				page.Metadata.Icon = selection.AssetURL("favicon")
			}
			return nil
		},
	}
}

func cloneThemeSelection(selection *ThemeSelection) *ThemeSelection {
	if selection == nil {
		return nil
	}
	cloned := *selection
	if len(selection.Tokens) > 0 {
		cloned.Tokens = make(map[string]string, len(selection.Tokens))
		for key, value := range selection.Tokens {
			cloned.Tokens[key] = value
		}
	}
	if len(selection.Assets.Values) > 0 {
		cloned.Assets.Values = make(map[string]string, len(selection.Assets.Values))
		for key, value := range selection.Assets.Values {
			cloned.Assets.Values[key] = value
		}
	}
	return &cloned
}
