package dictionary

import (
	"context"
	"errors"
)

// Client is the REST collaborator used by the admin view. Implementations own
// the base URL, auth headers, and transport concerns.
type Client interface {
	List(ctx context.Context, query ListQuery) (ListResult, error)
	Create(ctx context.Context, draft Draft) error
	Update(ctx context.Context, draft Draft) error
	Delete(ctx context.Context, id int64) error
}

// Repository persists dictionary items for the reference backend.
// Implementations ensure (type, value) uniqueness and report ErrDuplicateValue.
type Repository interface {
	List(ctx context.Context, query ListQuery) (ListResult, error)
	Create(ctx context.Context, draft Draft) (Item, error)
	Update(ctx context.Context, draft Draft) (Item, error)
	Delete(ctx context.Context, id int64) error
}

// Item is a single dictionary record as exchanged with the backend.
// Timestamps are kept as the raw strings returned by the server.
type Item struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Sort        int    `json:"sort"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Group aggregates every fetched item sharing one type.
type Group struct {
	Type  string `json:"type"`
	Items []Item `json:"items"`
	Count int    `json:"count"`
}

// ListQuery carries the listing endpoint parameters.
type ListQuery struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Type     string `json:"type"`
	Label    string `json:"label"`
}

// ListResult is the listing endpoint payload.
type ListResult struct {
	Dictionaries []Item `json:"dictionaries"`
	Total        int    `json:"total"`
}

// Draft is the create/update payload. ID is only sent for updates.
type Draft struct {
	ID          int64  `json:"id,omitempty" yaml:"-"`
	Type        string `json:"type" yaml:"type" validate:"required,max=64"`
	Label       string `json:"label" yaml:"label" validate:"required,max=128"`
	Value       string `json:"value" yaml:"value" validate:"required,max=255"`
	Sort        int    `json:"sort" yaml:"sort" validate:"min=0"`
	Description string `json:"description" yaml:"description,omitempty" validate:"max=1024"`
}

// DraftFromItem copies the editable fields of an item.
func DraftFromItem(item Item) Draft {
	return Draft{
		ID:          item.ID,
		Type:        item.Type,
		Label:       item.Label,
		Value:       item.Value,
		Sort:        item.Sort,
		Description: item.Description,
	}
}

var (
	// ErrNotFound is reported when an update/delete targets an unknown id.
	ErrNotFound = errors.New("dictionary not found")
	// ErrDuplicateValue is reported when (type, value) already exists.
	ErrDuplicateValue = errors.New("duplicate value")
)

// ApplicationError is an error reported by the backend inside the response
// payload (`{"error": "..."}`), as opposed to a transport failure.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// ApplicationMessage returns the user facing message when err belongs to the
// backend-reported error channel.
func ApplicationMessage(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error(), true
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound.Error(), true
	}
	if errors.Is(err, ErrDuplicateValue) {
		return ErrDuplicateValue.Error(), true
	}
	return "", false
}

// IsApplicationError reports whether err was reported by the backend payload.
func IsApplicationError(err error) bool {
	_, ok := ApplicationMessage(err)
	return ok
}
