package dictionary

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// MaxPageSize caps the listing page size accepted by the backend.
const MaxPageSize = 500

var (
	errMissingRepository = errors.New("dictionary: repository not configured")
	// ErrInvalidID is returned when an update or delete carries no id.
	ErrInvalidID = errors.New("dictionary: id is required")
)

// ValidationError lists the draft fields rejected by the backend.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(e.Fields))
	for _, name := range FieldErrors(e.Fields).Fields() {
		messages = append(messages, e.Fields[name])
	}
	return strings.Join(messages, ", ")
}

// Options configures the backend Service.
type Options struct {
	Repository Repository
	Validator  *validator.Validate
	Translator ut.Translator
	Telemetry  Telemetry
}

// Service implements the dictionary REST contract on top of a Repository.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Validator == nil {
		validate, trans, err := NewDraftValidator()
		if err != nil {
			return nil, err
		}
		opts.Validator = validate
		opts.Translator = trans
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}, nil
}

// NewDraftValidator returns a validator reporting fields by their JSON names.
func NewDraftValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("dictionary: register validator translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate, trans, nil
}

// List returns one page of items ordered by type, sort and id.
func (s *Service) List(ctx context.Context, query ListQuery) (ListResult, error) {
	repo, err := s.repository()
	if err != nil {
		return ListResult{}, err
	}
	query = NormalizeListQuery(query)
	result, err := repo.List(ctx, query)
	if err != nil {
		return ListResult{}, err
	}
	if result.Dictionaries == nil {
		result.Dictionaries = []Item{}
	}
	s.recordTelemetry(ctx, "dictionary.api.list", map[string]any{
		"page":      query.Page,
		"page_size": query.PageSize,
		"returned":  len(result.Dictionaries),
		"total":     result.Total,
	})
	return result, nil
}

// Create validates and stores a new item. Any id on the draft is ignored.
func (s *Service) Create(ctx context.Context, draft Draft) (Item, error) {
	repo, err := s.repository()
	if err != nil {
		return Item{}, err
	}
	draft = trimDraft(draft)
	draft.ID = 0
	if err := s.validate(draft); err != nil {
		return Item{}, err
	}
	item, err := repo.Create(ctx, draft)
	if err != nil {
		return Item{}, err
	}
	s.recordTelemetry(ctx, "dictionary.api.create", map[string]any{
		"id":   item.ID,
		"type": item.Type,
	})
	return item, nil
}

// Update validates and replaces the editable fields of an existing item.
func (s *Service) Update(ctx context.Context, draft Draft) (Item, error) {
	repo, err := s.repository()
	if err != nil {
		return Item{}, err
	}
	if draft.ID <= 0 {
		return Item{}, ErrInvalidID
	}
	draft = trimDraft(draft)
	if err := s.validate(draft); err != nil {
		return Item{}, err
	}
	item, err := repo.Update(ctx, draft)
	if err != nil {
		return Item{}, err
	}
	s.recordTelemetry(ctx, "dictionary.api.update", map[string]any{
		"id":   item.ID,
		"type": item.Type,
	})
	return item, nil
}

// Delete removes the item with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	repo, err := s.repository()
	if err != nil {
		return err
	}
	if id <= 0 {
		return ErrInvalidID
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dictionary.api.delete", map[string]any{"id": id})
	return nil
}

// Seed inserts every draft that is not already stored, reporting how many
// were created and how many were skipped as duplicates.
func (s *Service) Seed(ctx context.Context, drafts []Draft) (created, skipped int, err error) {
	for _, draft := range drafts {
		if _, err := s.Create(ctx, draft); err != nil {
			if errors.Is(err, ErrDuplicateValue) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("dictionary: seed %s/%s: %w", draft.Type, draft.Value, err)
		}
		created++
	}
	s.recordTelemetry(ctx, "dictionary.api.seed", map[string]any{
		"created": created,
		"skipped": skipped,
	})
	return created, skipped, nil
}

// NormalizeListQuery applies paging defaults and bounds.
func NormalizeListQuery(query ListQuery) ListQuery {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = DefaultPageSize
	}
	if query.PageSize > MaxPageSize {
		query.PageSize = MaxPageSize
	}
	query.Type = strings.TrimSpace(query.Type)
	query.Label = strings.TrimSpace(query.Label)
	return query
}

func (s *Service) validate(draft Draft) error {
	err := s.opts.Validator.Struct(draft)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("dictionary: validate draft: %w", err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		message := fe.Error()
		if s.opts.Translator != nil {
			message = fe.Translate(s.opts.Translator)
		}
		out.Fields[fe.Field()] = message
	}
	return out
}

func (s *Service) repository() (Repository, error) {
	if s == nil || s.opts.Repository == nil {
		return nil, errMissingRepository
	}
	return s.opts.Repository, nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func trimDraft(draft Draft) Draft {
	draft.Type = strings.TrimSpace(draft.Type)
	draft.Label = strings.TrimSpace(draft.Label)
	draft.Value = strings.TrimSpace(draft.Value)
	draft.Description = strings.TrimSpace(draft.Description)
	return draft
}
