package dictionary

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultPageSize mirrors the page size the console starts with.
const DefaultPageSize = 50

var (
	// ErrConfirmationRequired is returned by Delete until the user confirms.
	ErrConfirmationRequired = errors.New("dictionary: delete requires confirmation")
	// ErrDrawerClosed is returned by Save when no form is open.
	ErrDrawerClosed = errors.New("dictionary: drawer is not open")
	// ErrSaveInProgress rejects a second submit while one is running.
	ErrSaveInProgress = errors.New("dictionary: save already in progress")
	// ErrUnknownItem is returned when an id is not part of the fetched page.
	ErrUnknownItem = errors.New("dictionary: item not on the current page")
	// ErrClientRequired indicates the view was built without a REST client.
	ErrClientRequired = errors.New("dictionary: client is required")
)

// DrawerMode tells whether the drawer creates or edits an item.
type DrawerMode string

const (
	DrawerClosed   DrawerMode = ""
	DrawerCreating DrawerMode = "creating"
	DrawerEditing  DrawerMode = "editing"
)

// NoticeKind classifies toast notices.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a one-shot message shown after an operation.
type Notice struct {
	Kind        NoticeKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
}

// ViewOptions configures a View.
type ViewOptions struct {
	Client     Client
	Telemetry  Telemetry
	Validator  *FormValidator
	Translator TranslationService
	Locale     string
	PageSize   int
	// ReportTransportErrors turns swallowed transport failures into error notices.
	ReportTransportErrors bool
}

// View is the headless state machine behind the dictionary admin screen.
// One View exists per viewer session. Methods are safe for concurrent use;
// network calls run without holding the lock.
type View struct {
	client          Client
	telemetry       Telemetry
	validator       *FormValidator
	translator      TranslationService
	reportTransport bool

	mu          sync.Mutex
	locale      string
	page        int
	pageSize    int
	typeFilter  string
	labelFilter string
	loading     bool
	saving      bool
	groups      []Group
	total       int
	selected    string
	editing     *Item
	mode        DrawerMode
	form        FormInput
	formErrors  FieldErrors
	typeLocked  bool
	pendingDel  int64
	notices     []Notice

	seq      uint64
	applied  uint64
	inflight int
}

// NewView builds a View with the default paging state.
func NewView(opts ViewOptions) (*View, error) {
	if opts.Client == nil {
		return nil, ErrClientRequired
	}
	validator := opts.Validator
	if validator == nil {
		validator = NewFormValidator()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	locale := opts.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	return &View{
		client:          opts.Client,
		telemetry:       normalizeTelemetry(opts.Telemetry),
		validator:       validator,
		translator:      opts.Translator,
		reportTransport: opts.ReportTransportErrors,
		locale:          locale,
		page:            1,
		pageSize:        pageSize,
		groups:          []Group{},
		formErrors:      FieldErrors{},
	}, nil
}

// SetLocale switches the language used for notices and form messages.
func (v *View) SetLocale(locale string) {
	if locale == "" {
		return
	}
	v.mu.Lock()
	v.locale = locale
	v.mu.Unlock()
}

// List fetches one page with the given parameters and, when the response is
// still the newest issued, replaces the grouped state and total. Failures leave
// the state untouched.
func (v *View) List(ctx context.Context, page, pageSize int, typeFilter, labelFilter string) error {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	v.mu.Lock()
	v.page = page
	v.pageSize = pageSize
	v.typeFilter = typeFilter
	v.labelFilter = labelFilter
	v.seq++
	token := v.seq
	v.inflight++
	v.loading = true
	v.mu.Unlock()

	query := ListQuery{Page: page, PageSize: pageSize, Type: typeFilter, Label: labelFilter}
	result, err := v.client.List(ctx, query)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.inflight--
	if v.inflight == 0 {
		v.loading = false
	}
	if err != nil {
		v.telemetry.Record(ctx, "dictionary.list_failed", map[string]any{
			"page":      page,
			"page_size": pageSize,
			"error":     err.Error(),
		})
		return fmt.Errorf("dictionary: list: %w", err)
	}
	if token <= v.applied {
		v.telemetry.Record(ctx, "dictionary.list_stale", map[string]any{
			"token":   token,
			"applied": v.applied,
		})
		return nil
	}
	v.applied = token
	v.groups = GroupByType(result.Dictionaries)
	v.total = result.Total
	v.telemetry.Record(ctx, "dictionary.list", map[string]any{
		"page":   page,
		"groups": len(v.groups),
		"total":  result.Total,
	})
	return nil
}

// Refresh re-lists with the current page, size and filters.
func (v *View) Refresh(ctx context.Context) error {
	page, size, typ, label := v.query()
	return v.List(ctx, page, size, typ, label)
}

// Search lists with the current filter inputs.
func (v *View) Search(ctx context.Context) error {
	return v.Refresh(ctx)
}

// SetFilters updates the filter inputs without fetching.
func (v *View) SetFilters(typeFilter, labelFilter string) {
	v.mu.Lock()
	v.typeFilter = typeFilter
	v.labelFilter = labelFilter
	v.mu.Unlock()
}

// ChangePage moves to page n and lists it.
func (v *View) ChangePage(ctx context.Context, n int) error {
	_, size, typ, label := v.query()
	return v.List(ctx, n, size, typ, label)
}

// ChangePageSize applies a new page size and goes back to the first page.
func (v *View) ChangePageSize(ctx context.Context, size int) error {
	_, _, typ, label := v.query()
	return v.List(ctx, 1, size, typ, label)
}

// Reset clears both filters and lists the first page.
func (v *View) Reset(ctx context.Context) error {
	_, size, _, _ := v.query()
	return v.List(ctx, 1, size, "", "")
}

// Select marks a type as selected. Unknown types render the empty state.
func (v *View) Select(typ string) {
	v.mu.Lock()
	v.selected = typ
	v.mu.Unlock()
}

// OpenAddForm opens an empty drawer, pre-filling and locking the type when
// one is given.
func (v *View) OpenAddForm(typ string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = DrawerCreating
	v.editing = nil
	v.form = FormInput{Type: typ}
	v.typeLocked = typ != ""
	v.formErrors = FieldErrors{}
}

// OpenEditForm opens the drawer pre-filled with item.
func (v *View) OpenEditForm(item Item) {
	v.mu.Lock()
	defer v.mu.Unlock()
	copied := item
	v.mode = DrawerEditing
	v.editing = &copied
	v.form = FormInputFromItem(item)
	v.typeLocked = false
	v.formErrors = FieldErrors{}
}

// OpenEditByID opens the edit drawer for an item of the fetched page.
func (v *View) OpenEditByID(id int64) error {
	v.mu.Lock()
	item, ok := FindItem(v.groups, id)
	v.mu.Unlock()
	if !ok {
		return ErrUnknownItem
	}
	v.OpenEditForm(item)
	return nil
}

// CloseDrawer discards the form.
func (v *View) CloseDrawer() {
	v.mu.Lock()
	v.closeDrawerLocked()
	v.mu.Unlock()
}

// Save validates input and issues a create or update. Validation failures and
// backend-reported errors keep the drawer open without refreshing; transport
// failures close the drawer and refresh like a success does, without a
// success notice.
func (v *View) Save(ctx context.Context, input FormInput) error {
	v.mu.Lock()
	if v.mode == DrawerClosed {
		v.mu.Unlock()
		return ErrDrawerClosed
	}
	if v.saving {
		v.mu.Unlock()
		return ErrSaveInProgress
	}
	if v.mode == DrawerCreating && v.typeLocked {
		input.Type = v.form.Type
	}
	v.form = input
	locale := v.locale
	draft, errs := v.validator.Validate(input, locale)
	if len(errs) > 0 {
		v.formErrors = errs
		v.mu.Unlock()
		v.telemetry.Record(ctx, "dictionary.save_rejected", map[string]any{
			"fields": errs.Fields(),
		})
		return ErrInvalidForm
	}
	v.formErrors = FieldErrors{}
	mode := v.mode
	if mode == DrawerEditing && v.editing != nil {
		draft.ID = v.editing.ID
	}
	v.saving = true
	v.mu.Unlock()

	var err error
	if mode == DrawerEditing {
		err = v.client.Update(ctx, draft)
	} else {
		err = v.client.Create(ctx, draft)
	}

	v.mu.Lock()
	v.saving = false
	if message, ok := ApplicationMessage(err); ok {
		v.pushNoticeLocked(NoticeError, message, "")
		v.mu.Unlock()
		v.telemetry.Record(ctx, "dictionary.save_failed", map[string]any{
			"mode":  string(mode),
			"error": message,
		})
		return err
	}
	if err != nil {
		if v.reportTransport {
			v.pushNoticeLocked(NoticeError, v.translateLocked(ctx, "notice.transport.title", nil), err.Error())
		}
	} else if mode == DrawerEditing {
		v.pushNoticeLocked(NoticeSuccess,
			v.translateLocked(ctx, "notice.updated.title", nil),
			v.translateLocked(ctx, "notice.updated.body", nil))
	} else {
		v.pushNoticeLocked(NoticeSuccess,
			v.translateLocked(ctx, "notice.created.title", nil),
			v.translateLocked(ctx, "notice.created.body", nil))
	}
	v.closeDrawerLocked()
	v.mu.Unlock()

	if err != nil {
		v.telemetry.Record(ctx, "dictionary.transport_error", map[string]any{
			"operation": "save",
			"mode":      string(mode),
			"error":     err.Error(),
		})
	} else {
		v.telemetry.Record(ctx, "dictionary.save", map[string]any{
			"mode":  string(mode),
			"type":  draft.Type,
			"value": draft.Value,
		})
	}

	// refresh failures are already recorded by List
	_ = v.Refresh(ctx)
	return err
}

// Delete removes an item once confirmed. Without confirmation it only records
// the pending prompt. The list is refreshed after every confirmed attempt.
func (v *View) Delete(ctx context.Context, id int64, confirmed bool) error {
	v.mu.Lock()
	if !confirmed {
		v.pendingDel = id
		v.mu.Unlock()
		return ErrConfirmationRequired
	}
	v.pendingDel = 0
	v.mu.Unlock()

	err := v.client.Delete(ctx, id)

	v.mu.Lock()
	message, appErr := ApplicationMessage(err)
	switch {
	case appErr:
		v.pushNoticeLocked(NoticeError, message, "")
	case err != nil:
		if v.reportTransport {
			v.pushNoticeLocked(NoticeError, v.translateLocked(ctx, "notice.transport.title", nil), err.Error())
		}
	default:
		v.pushNoticeLocked(NoticeSuccess,
			v.translateLocked(ctx, "notice.deleted.title", nil),
			v.translateLocked(ctx, "notice.deleted.body", nil))
	}
	v.mu.Unlock()

	switch {
	case appErr:
		v.telemetry.Record(ctx, "dictionary.delete_failed", map[string]any{"id": id, "error": message})
	case err != nil:
		v.telemetry.Record(ctx, "dictionary.transport_error", map[string]any{
			"operation": "delete",
			"id":        id,
			"error":     err.Error(),
		})
	default:
		v.telemetry.Record(ctx, "dictionary.delete", map[string]any{"id": id})
	}

	_ = v.Refresh(ctx)
	return err
}

// CancelDelete dismisses the confirmation prompt.
func (v *View) CancelDelete() {
	v.mu.Lock()
	v.pendingDel = 0
	v.mu.Unlock()
}

// DrainNotices returns pending notices and clears them.
func (v *View) DrainNotices() []Notice {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.notices
	v.notices = nil
	if out == nil {
		return []Notice{}
	}
	return out
}

// Groups returns a copy of the grouped records.
func (v *View) Groups() []Group {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneGroups(v.groups)
}

// SelectedItems returns the items of the selected group, or an empty slice.
func (v *View) SelectedItems() []Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selectedItemsLocked()
}

// TotalPages is the page count for the current total and page size.
func (v *View) TotalPages() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return totalPages(v.total, v.pageSize)
}

// State is an immutable copy of the view used for rendering.
type State struct {
	Locale        string      `json:"locale"`
	Page          int         `json:"page"`
	PageSize      int         `json:"page_size"`
	TotalPages    int         `json:"total_pages"`
	Total         int         `json:"total"`
	TypeFilter    string      `json:"type_filter"`
	LabelFilter   string      `json:"label_filter"`
	Loading       bool        `json:"loading"`
	Saving        bool        `json:"saving"`
	Groups        []Group     `json:"groups"`
	Selected      string      `json:"selected"`
	SelectedItems []Item      `json:"selected_items"`
	DrawerOpen    bool        `json:"drawer_open"`
	Mode          DrawerMode  `json:"mode"`
	Editing       *Item       `json:"editing,omitempty"`
	Form          FormInput   `json:"form"`
	FormErrors    FieldErrors `json:"form_errors"`
	TypeLocked    bool        `json:"type_locked"`
	PendingDelete int64       `json:"pending_delete,omitempty"`
}

// HasPrev reports whether a previous page exists.
func (s State) HasPrev() bool { return s.Page > 1 }

// HasNext reports whether a following page exists.
func (s State) HasNext() bool { return s.Page < s.TotalPages }

// Snapshot copies the current state.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	var editing *Item
	if v.editing != nil {
		copied := *v.editing
		editing = &copied
	}
	errs := make(FieldErrors, len(v.formErrors))
	for k, msg := range v.formErrors {
		errs[k] = msg
	}
	return State{
		Locale:        v.locale,
		Page:          v.page,
		PageSize:      v.pageSize,
		TotalPages:    totalPages(v.total, v.pageSize),
		Total:         v.total,
		TypeFilter:    v.typeFilter,
		LabelFilter:   v.labelFilter,
		Loading:       v.loading,
		Saving:        v.saving,
		Groups:        cloneGroups(v.groups),
		Selected:      v.selected,
		SelectedItems: v.selectedItemsLocked(),
		DrawerOpen:    v.mode != DrawerClosed,
		Mode:          v.mode,
		Editing:       editing,
		Form:          v.form,
		FormErrors:    errs,
		TypeLocked:    v.typeLocked,
		PendingDelete: v.pendingDel,
	}
}

func (v *View) query() (int, int, string, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page, v.pageSize, v.typeFilter, v.labelFilter
}

func (v *View) selectedItemsLocked() []Item {
	if v.selected == "" {
		return []Item{}
	}
	group, ok := FindGroup(v.groups, v.selected)
	if !ok {
		return []Item{}
	}
	return append([]Item{}, group.Items...)
}

func (v *View) closeDrawerLocked() {
	v.mode = DrawerClosed
	v.editing = nil
	v.form = FormInput{}
	v.formErrors = FieldErrors{}
	v.typeLocked = false
}

func (v *View) pushNoticeLocked(kind NoticeKind, title, description string) {
	v.notices = append(v.notices, Notice{Kind: kind, Title: title, Description: description})
}

func (v *View) translateLocked(ctx context.Context, key string, args map[string]string) string {
	return translateOrFallback(ctx, v.translator, v.locale, key, args)
}

func totalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
