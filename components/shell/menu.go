package shell

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultMenuCode names the main navigation menu.
const DefaultMenuCode = "admin.main"

// MenuItem is one navigation entry.
type MenuItem struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Path     string `json:"path"`
	Icon     string `json:"icon,omitempty"`
	Group    string `json:"group,omitempty"`
	Position int    `json:"position"`
	Active   bool   `json:"active"`
}

// MenuHook lets packages register menu entries on new registries.
type MenuHook func(reg *MenuRegistry) error

var (
	globalMenuHookMu sync.Mutex
	globalMenuHooks  []MenuHook
)

// RegisterMenuHook registers a hook executed against new registries.
func RegisterMenuHook(h MenuHook) {
	globalMenuHookMu.Lock()
	defer globalMenuHookMu.Unlock()
	globalMenuHooks = append(globalMenuHooks, h)
}

// MenuRegistry stores menu items per menu code.
type MenuRegistry struct {
	mu    sync.RWMutex
	menus map[string]map[string]MenuItem
}

// NewMenuRegistry builds an empty registry and applies global hooks.
func NewMenuRegistry() (*MenuRegistry, error) {
	reg := &MenuRegistry{menus: map[string]map[string]MenuItem{}}
	if err := reg.ApplyHooks(); err != nil {
		return nil, err
	}
	return reg, nil
}

// ApplyHooks executes registered menu hooks.
func (r *MenuRegistry) ApplyHooks() error {
	globalMenuHookMu.Lock()
	defer globalMenuHookMu.Unlock()
	for _, hook := range globalMenuHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// EnsureMenuItem inserts or replaces the item keyed by its code (or path).
func (r *MenuRegistry) EnsureMenuItem(_ context.Context, menuCode string, item MenuItem) error {
	if menuCode == "" {
		menuCode = DefaultMenuCode
	}
	if item.Code == "" {
		item.Code = item.Path
	}
	if item.Code == "" {
		return fmt.Errorf("shell: menu item needs a code or path")
	}
	item.Active = false
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.menus[menuCode] == nil {
		r.menus[menuCode] = map[string]MenuItem{}
	}
	r.menus[menuCode][item.Code] = item
	return nil
}

// Items returns the menu sorted by position then code.
func (r *MenuRegistry) Items(menuCode string) []MenuItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]MenuItem, 0, len(r.menus[menuCode]))
	for _, item := range r.menus[menuCode] {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].Code < items[j].Code
	})
	return items
}

func menuProvider(reg *MenuRegistry, menuCode string) Provider {
	return ProviderFunc{
		ProviderName: "menu",
		Fn: func(_ context.Context, page *PageContext) error {
			if reg == nil {
				page.Menu = []MenuItem{}
				return nil
			}
			items := reg.Items(menuCode)
			best, bestLen := -1, -1
			for i, item := range items {
				if matchesPath(page.Request.Path, item.Path) && len(item.Path) > bestLen {
					best, bestLen = i, len(item.Path)
				}
			}
			if best >= 0 {
				items[best].Active = true
				active := items[best]
				page.ActiveMenu = &active
			}
			page.Menu = items
			return nil
		},
	}
}

func matchesPath(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, strings.TrimRight(prefix, "/")+"/")
}
