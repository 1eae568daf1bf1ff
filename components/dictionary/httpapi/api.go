package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-dictadmin/components/dictionary"
	"github.com/goliatone/go-dictadmin/components/dictionary/commands"
)

// Telemetry receives handler failures that are not reported to the caller.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Handlers exposes the dictionary REST contract backed by shared commands.
type Handlers struct {
	List   gocommand.Querier[dictionary.ListQuery, dictionary.ListResult]
	Create gocommand.Commander[commands.CreateDictionaryInput]
	Update gocommand.Commander[commands.UpdateDictionaryInput]
	Delete gocommand.Commander[commands.DeleteDictionaryInput]
	// APIKey enables bearer token checks when set.
	APIKey    string
	Telemetry Telemetry
}

// NewApp builds a fiber app serving the handlers under /dicts.
func NewApp(h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	Register(app, h)
	return app
}

// Register mounts the /dicts routes on router.
func Register(router fiber.Router, h *Handlers) {
	dicts := router.Group("/dicts", h.authorize)
	dicts.Get("/all", h.HandleList)
	dicts.Post("/create", h.HandleCreate)
	dicts.Put("/update", h.HandleUpdate)
	dicts.Delete("/del", h.HandleDelete)
}

func (h *Handlers) authorize(c *fiber.Ctx) error {
	if h.APIKey == "" {
		return c.Next()
	}
	token := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
	if token != h.APIKey {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	return c.Next()
}

// HandleList serves GET /dicts/all.
func (h *Handlers) HandleList(c *fiber.Ctx) error {
	query := dictionary.ListQuery{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", dictionary.DefaultPageSize),
		Type:     c.Query("type"),
		Label:    c.Query("label"),
	}
	result, err := h.List.Query(c.UserContext(), query)
	if err != nil {
		return h.respondError(c, "list", err)
	}
	if result.Dictionaries == nil {
		result.Dictionaries = []dictionary.Item{}
	}
	return c.JSON(result)
}

// HandleCreate serves POST /dicts/create.
func (h *Handlers) HandleCreate(c *fiber.Ctx) error {
	var draft dictionary.Draft
	if err := json.Unmarshal(c.Body(), &draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	draft.ID = 0
	var item dictionary.Item
	if err := h.Create.Execute(c.UserContext(), commands.CreateDictionaryInput{Draft: draft, Result: &item}); err != nil {
		return h.respondError(c, "create", err)
	}
	return c.JSON(fiber.Map{"dictionary": item})
}

// HandleUpdate serves PUT /dicts/update.
func (h *Handlers) HandleUpdate(c *fiber.Ctx) error {
	var draft dictionary.Draft
	if err := json.Unmarshal(c.Body(), &draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	var item dictionary.Item
	if err := h.Update.Execute(c.UserContext(), commands.UpdateDictionaryInput{Draft: draft, Result: &item}); err != nil {
		return h.respondError(c, "update", err)
	}
	return c.JSON(fiber.Map{"dictionary": item})
}

// HandleDelete serves DELETE /dicts/del?id=.
func (h *Handlers) HandleDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id is required"})
	}
	if err := h.Delete.Execute(c.UserContext(), commands.DeleteDictionaryInput{ID: id}); err != nil {
		return h.respondError(c, "delete", err)
	}
	return c.JSON(fiber.Map{})
}

// respondError writes application errors into a 200 payload, rejects bad ids
// with 400 and hides everything else behind a 500.
func (h *Handlers) respondError(c *fiber.Ctx, operation string, err error) error {
	if message, ok := dictionary.ApplicationMessage(err); ok {
		return c.JSON(fiber.Map{"error": message})
	}
	if errors.Is(err, dictionary.ErrInvalidID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id is required"})
	}
	if h.Telemetry != nil {
		h.Telemetry.Record(c.UserContext(), "dictionary.api.error", map[string]any{
			"operation": operation,
			"error":     err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
