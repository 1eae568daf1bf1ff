package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/goliatone/go-dictadmin/components/dictionary"
)

// DefaultTimeout bounds every request when Config.Timeout is unset.
const DefaultTimeout = 10 * time.Second

var (
	// ErrBaseURLRequired is returned by New without a base URL.
	ErrBaseURLRequired = errors.New("client: base URL is required")
	// ErrUnexpectedStatus wraps every non-2xx response, with or without an
	// error payload.
	ErrUnexpectedStatus = errors.New("client: unexpected status")
)

// Config configures the REST collaborator.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the dictionary REST endpoints. It performs no retries.
type Client struct {
	http *resty.Client
}

var _ dictionary.Client = (*Client)(nil)

// New builds a client for the given backend.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rc := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		rc.SetAuthToken(cfg.APIKey)
	}
	return &Client{http: rc}, nil
}

type listEnvelope struct {
	Dictionaries []dictionary.Item `json:"dictionaries"`
	Total        int               `json:"total"`
	Error        string            `json:"error"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// List calls GET /dicts/all.
func (c *Client) List(ctx context.Context, query dictionary.ListQuery) (dictionary.ListResult, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page":     strconv.Itoa(query.Page),
			"pageSize": strconv.Itoa(query.PageSize),
			"type":     query.Type,
			"label":    query.Label,
		}).
		Get("/dicts/all")
	if err != nil {
		return dictionary.ListResult{}, fmt.Errorf("client: GET /dicts/all: %w", err)
	}
	var envelope listEnvelope
	if err := decode(res, http.MethodGet, "/dicts/all", &envelope); err != nil {
		return dictionary.ListResult{}, err
	}
	if envelope.Error != "" {
		return dictionary.ListResult{}, &dictionary.ApplicationError{Message: envelope.Error}
	}
	if envelope.Dictionaries == nil {
		envelope.Dictionaries = []dictionary.Item{}
	}
	return dictionary.ListResult{Dictionaries: envelope.Dictionaries, Total: envelope.Total}, nil
}

// Create calls POST /dicts/create without an id.
func (c *Client) Create(ctx context.Context, draft dictionary.Draft) error {
	draft.ID = 0
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(draft).
		Post("/dicts/create")
	if err != nil {
		return fmt.Errorf("client: POST /dicts/create: %w", err)
	}
	return mutationResult(res, http.MethodPost, "/dicts/create")
}

// Update calls PUT /dicts/update with the id.
func (c *Client) Update(ctx context.Context, draft dictionary.Draft) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(draft).
		Put("/dicts/update")
	if err != nil {
		return fmt.Errorf("client: PUT /dicts/update: %w", err)
	}
	return mutationResult(res, http.MethodPut, "/dicts/update")
}

// Delete calls DELETE /dicts/del?id=.
func (c *Client) Delete(ctx context.Context, id int64) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", strconv.FormatInt(id, 10)).
		Delete("/dicts/del")
	if err != nil {
		return fmt.Errorf("client: DELETE /dicts/del: %w", err)
	}
	return mutationResult(res, http.MethodDelete, "/dicts/del")
}

func mutationResult(res *resty.Response, method, path string) error {
	var envelope errorEnvelope
	if err := decode(res, method, path, &envelope); err != nil {
		return err
	}
	if envelope.Error != "" {
		return &dictionary.ApplicationError{Message: envelope.Error}
	}
	return nil
}

// decode rejects non-2xx responses as transport failures, keeping any error
// text the server sent. Only 2xx bodies reach out, so an application error
// can only come from a successful status.
func decode(res *resty.Response, method, path string, out any) error {
	body := res.Body()
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		var payload errorEnvelope
		if len(body) > 0 && json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return fmt.Errorf("client: %s %s: %w: %d: %s", method, path, ErrUnexpectedStatus, res.StatusCode(), payload.Error)
		}
		return fmt.Errorf("client: %s %s: %w: %d", method, path, ErrUnexpectedStatus, res.StatusCode())
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("client: %s %s: decode response: %w", method, path, err)
	}
	return nil
}
