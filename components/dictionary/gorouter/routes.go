package gorouter

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-dictadmin/components/dictionary"
	"github.com/goliatone/go-dictadmin/components/shell"
)

// DefaultSessionCookie names the cookie carrying the console session id.
const DefaultSessionCookie = "dictadmin_session"

// Config wires go-router with the dictionary console controller.
type Config[T any] struct {
	Router        router.Router[T]
	Controller    *dictionary.Controller
	BasePath      string
	SessionCookie string
	Routes        RouteConfig
}

// RouteConfig customizes the relative paths used for console endpoints.
type RouteConfig struct {
	HTML    string
	State   string
	Actions string
}

// Register mounts the console routes (HTML page, JSON state, form actions).
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	cookieName := cfg.SessionCookie
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		req := shellRequest(ctx, base+routes.HTML, cookieName)
		var buf bytes.Buffer
		page, err := cfg.Controller.RenderPage(ctx.Context(), req, &buf)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return sendHTML(ctx, page, cookieName, base, buf.Bytes())
	}))

	group.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
		req := shellRequest(ctx, base+routes.HTML, cookieName)
		state, page, err := cfg.Controller.State(ctx.Context(), req)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		setSessionCookie(ctx, page, cookieName, base)
		return ctx.JSON(http.StatusOK, state)
	}))

	group.Post(routes.Actions, router.WrapHandler(func(ctx router.Context) error {
		req := shellRequest(ctx, base+routes.HTML, cookieName)
		form, err := url.ParseQuery(string(ctx.Body()))
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var buf bytes.Buffer
		page, err := cfg.Controller.Dispatch(ctx.Context(), req, ctx.Param("action"), form, &buf)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, dictionary.ErrUnknownAction) || errors.Is(err, dictionary.ErrInvalidParameter) {
				status = http.StatusBadRequest
			}
			return respondError(ctx, status, err)
		}
		return sendHTML(ctx, page, cookieName, base, buf.Bytes())
	}))

	return nil
}

func shellRequest(ctx router.Context, path, cookieName string) shell.Request {
	return shell.Request{
		Path:           path,
		SessionID:      readCookie(ctx.Header("Cookie"), cookieName),
		AcceptLanguage: ctx.Header("Accept-Language"),
		ThemeName:      strings.TrimSpace(ctx.Query("theme")),
		ThemeVariant:   strings.TrimSpace(ctx.Query("variant")),
		BareLayout:     strings.TrimSpace(ctx.Query(shell.LayoutParam)) == shell.LayoutBare,
	}
}

func readCookie(header, name string) string {
	if header == "" {
		return ""
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func setSessionCookie(ctx router.Context, page *shell.PageContext, name, path string) {
	if page == nil || page.Session == nil || !page.Session.Created {
		return
	}
	cookie := &http.Cookie{
		Name:     name,
		Value:    page.Session.ID,
		Path:     path,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	ctx.SetHeader("Set-Cookie", cookie.String())
}

func sendHTML(ctx router.Context, page *shell.PageContext, cookieName, base string, body []byte) error {
	setSessionCookie(ctx, page, cookieName, base)
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(body)
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dictionaries"
	}
	if routes.State == "" {
		routes.State = "/dictionaries/_state"
	}
	if routes.Actions == "" {
		routes.Actions = "/dictionaries/actions/:action"
	}
	return routes
}
