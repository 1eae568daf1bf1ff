package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-dictadmin/components/shell"
)

const (
	viewSessionKey  = "dictionary.view"
	defaultTemplate = "dictionaries"
	defaultBasePath = "/admin/dictionaries"
)

var (
	// ErrUnknownAction is returned by Dispatch for unsupported actions.
	ErrUnknownAction = errors.New("dictionary: unknown action")
	// ErrInvalidParameter is returned when an action parameter cannot be parsed.
	ErrInvalidParameter = errors.New("dictionary: invalid parameter")

	errMissingShell    = errors.New("dictionary: shell is required")
	errMissingRenderer = errors.New("dictionary: renderer is required")
)

// PageSizeOptions lists the page sizes offered by the pager.
var PageSizeOptions = []int{10, 20, 50, 100}

// ControllerOptions wires the console page.
type ControllerOptions struct {
	Shell      *shell.Shell
	Renderer   Renderer
	Client     Client
	Chart      *GroupChart
	Telemetry  Telemetry
	Translator TranslationService
	Formatter  DateFormatter
	Template   string
	BasePath   string
	PageSize   int
	// ReportTransportErrors is passed to every View built by the controller.
	ReportTransportErrors bool
}

// Controller renders the dictionary page and dispatches browser actions to
// the session's View.
type Controller struct {
	opts      ControllerOptions
	validator *FormValidator
}

// NewController validates options and applies defaults.
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.Shell == nil {
		return nil, errMissingShell
	}
	if opts.Renderer == nil {
		return nil, errMissingRenderer
	}
	if opts.Client == nil {
		return nil, ErrClientRequired
	}
	if opts.Template == "" {
		opts.Template = defaultTemplate
	}
	if opts.BasePath == "" {
		opts.BasePath = defaultBasePath
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Controller{opts: opts, validator: NewFormValidator()}, nil
}

// RenderPage mounts the shell, refreshes the list like a fresh page load and
// renders the page into out.
func (c *Controller) RenderPage(ctx context.Context, req shell.Request, out io.Writer) (*shell.PageContext, error) {
	page, view, err := c.mount(ctx, req)
	if err != nil {
		return nil, err
	}
	defer c.opts.Shell.Release(page)
	// list failures leave the previous state on screen
	_ = view.Refresh(ctx)
	return page, c.render(ctx, page, view, out)
}

// Dispatch applies one browser action then re-renders the page.
func (c *Controller) Dispatch(ctx context.Context, req shell.Request, action string, form url.Values, out io.Writer) (*shell.PageContext, error) {
	page, view, err := c.mount(ctx, req)
	if err != nil {
		return nil, err
	}
	defer c.opts.Shell.Release(page)
	if err := c.apply(ctx, page, view, action, form); err != nil {
		return page, err
	}
	return page, c.render(ctx, page, view, out)
}

// State returns the session's view snapshot without rendering.
func (c *Controller) State(ctx context.Context, req shell.Request) (State, *shell.PageContext, error) {
	page, view, err := c.mount(ctx, req)
	if err != nil {
		return State{}, nil, err
	}
	defer c.opts.Shell.Release(page)
	return view.Snapshot(), page, nil
}

func (c *Controller) mount(ctx context.Context, req shell.Request) (*shell.PageContext, *View, error) {
	page, err := c.opts.Shell.Mount(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	stored, err := page.Session.GetOrCreate(viewSessionKey, func() (any, error) {
		return NewView(ViewOptions{
			Client:                c.opts.Client,
			Telemetry:             c.opts.Telemetry,
			Validator:             c.validator,
			Translator:            c.opts.Translator,
			Locale:                page.Locale,
			PageSize:              c.opts.PageSize,
			ReportTransportErrors: c.opts.ReportTransportErrors,
		})
	})
	if err != nil {
		c.opts.Shell.Release(page)
		return nil, nil, err
	}
	view, ok := stored.(*View)
	if !ok {
		c.opts.Shell.Release(page)
		return nil, nil, fmt.Errorf("dictionary: session value %q has type %T", viewSessionKey, stored)
	}
	view.SetLocale(page.Locale)
	return page, view, nil
}

func (c *Controller) apply(ctx context.Context, page *shell.PageContext, view *View, action string, form url.Values) error {
	value := func(key string) string { return strings.TrimSpace(form.Get(key)) }
	var err error
	switch action {
	case "search":
		view.SetFilters(value("type"), value("label"))
		err = view.Search(ctx)
	case "reset":
		err = view.Reset(ctx)
	case "page":
		n, perr := parsePositive(value("page"))
		if perr != nil {
			return perr
		}
		err = view.ChangePage(ctx, n)
	case "page-size":
		n, perr := parsePositive(value("page_size"))
		if perr != nil {
			return perr
		}
		err = view.ChangePageSize(ctx, n)
	case "select":
		view.Select(value("type"))
	case "add":
		view.OpenAddForm(value("type"))
	case "edit":
		id, perr := parseID(value("id"))
		if perr != nil {
			return perr
		}
		err = view.OpenEditByID(id)
	case "close":
		view.CloseDrawer()
	case "save":
		err = view.Save(ctx, FormInput{
			Type:        form.Get(FieldType),
			Label:       form.Get(FieldLabel),
			Value:       form.Get(FieldValue),
			Sort:        form.Get(FieldSort),
			Description: form.Get(FieldDescription),
		})
	case "delete":
		id, perr := parseID(value("id"))
		if perr != nil {
			return perr
		}
		err = view.Delete(ctx, id, isConfirmed(value("confirm")))
	case "cancel-delete":
		view.CancelDelete()
	case "locale":
		if locale := value("locale"); locale != "" {
			page.Session.SetLocale(locale)
			page.Locale = locale
			view.SetLocale(locale)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if err != nil {
		// outcomes are reflected in the view state and notices
		c.opts.Telemetry.Record(ctx, "dictionary.console.action", map[string]any{
			"action": action,
			"error":  err.Error(),
		})
	}
	return nil
}

// ItemRow is an item prepared for display.
type ItemRow struct {
	Item
	Created     string
	Updated     string
	Description string
	PendingDel  bool
}

func (c *Controller) render(ctx context.Context, page *shell.PageContext, view *View, out io.Writer) error {
	data, err := c.pageData(ctx, page, view)
	if err != nil {
		return err
	}
	html, err := c.opts.Renderer.Render(c.opts.Template, data)
	if err != nil {
		return fmt.Errorf("dictionary: render %s: %w", c.opts.Template, err)
	}
	if out != nil {
		if _, err := io.WriteString(out, html); err != nil {
			return err
		}
	}
	c.opts.Telemetry.Record(ctx, "dictionary.console.render", map[string]any{
		"session": page.Session.ID,
		"locale":  page.Locale,
	})
	return nil
}

func (c *Controller) pageData(ctx context.Context, page *shell.PageContext, view *View) (map[string]any, error) {
	state := view.Snapshot()
	rows := make([]ItemRow, 0, len(state.SelectedItems))
	for _, item := range state.SelectedItems {
		description := item.Description
		if description == "" {
			description = "-"
		}
		rows = append(rows, ItemRow{
			Item:        item,
			Created:     c.opts.Formatter.Format(item.CreatedAt),
			Updated:     c.opts.Formatter.Format(item.UpdatedAt),
			Description: description,
			PendingDel:  state.PendingDelete == item.ID,
		})
	}

	chartTheme := ""
	themeData := map[string]any{}
	if page.Theme != nil {
		chartTheme = page.Theme.ChartTheme
		themeData["name"] = page.Theme.Name
		themeData["variant"] = page.Theme.Variant
		themeData["css"] = page.Theme.CSSVariablesInline()
		themeData["logo"] = page.Theme.AssetURL("logo")
	}
	chartHTML := ""
	if c.opts.Chart != nil {
		html, err := c.opts.Chart.Render(ctx, state.Groups, state.Locale, chartTheme)
		if err != nil {
			c.opts.Telemetry.Record(ctx, "dictionary.chart_error", map[string]any{"error": err.Error()})
		} else {
			chartHTML = html
		}
	}

	drawerTitle := ""
	switch state.Mode {
	case DrawerCreating:
		drawerTitle = Message(state.Locale, "drawer.add", nil)
	case DrawerEditing:
		drawerTitle = Message(state.Locale, "drawer.edit", nil)
	}

	layout := map[string]any{"default": true, "title": page.Metadata.Title}
	if page.Layout != nil {
		layout["default"] = page.Layout.UseDefaultLayout()
		layout["title"] = page.Layout.Title()
	}
	actionQuery := ""
	if page.Request.BareLayout {
		actionQuery = "?" + shell.LayoutParam + "=" + shell.LayoutBare
	}

	return map[string]any{
		"meta":         page.Metadata,
		"theme":        themeData,
		"menu":         page.Menu,
		"breadcrumbs":  page.Breadcrumbs,
		"layout":       layout,
		"locale":       state.Locale,
		"locales":      c.opts.Shell.Locales(),
		"t":            Messages(state.Locale),
		"state":        state,
		"groups":       state.Groups,
		"rows":         rows,
		"has_prev":     state.HasPrev(),
		"has_next":     state.HasNext(),
		"prev_page":    state.Page - 1,
		"next_page":    state.Page + 1,
		"page_sizes":   PageSizeOptions,
		"form_fields":  FormFields(state.Form, state.FormErrors, state.TypeLocked, state.Locale),
		"drawer_title": drawerTitle,
		"notices":      view.DrainNotices(),
		"chart_html":   chartHTML,
		"base_path":    c.opts.BasePath,
		"action_path":  strings.TrimRight(c.opts.BasePath, "/") + "/actions/",
		"action_query": actionQuery,
	}, nil
}

func parsePositive(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidParameter, raw)
	}
	return n, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q", ErrInvalidParameter, raw)
	}
	return id, nil
}

func isConfirmed(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
