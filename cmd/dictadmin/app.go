package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/goliatone/go-dictadmin/components/dictionary"
	"github.com/goliatone/go-dictadmin/components/dictionary/commands"
	"github.com/goliatone/go-dictadmin/components/dictionary/gorouter"
	"github.com/goliatone/go-dictadmin/components/dictionary/httpapi"
	"github.com/goliatone/go-dictadmin/components/dictionary/queries"
	"github.com/goliatone/go-dictadmin/components/shell"
	"github.com/goliatone/go-dictadmin/pkg/config"
	dictionarypkg "github.com/goliatone/go-dictadmin/pkg/dictionary"
	"github.com/goliatone/go-dictadmin/pkg/goadmin"
	"github.com/goliatone/go-dictadmin/pkg/logging"
	"github.com/goliatone/go-dictadmin/pkg/storage"
)

const driverMemory = "memory"

type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	telemetry *logging.Telemetry
}

func bootstrap(configFile string) (*app, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, telemetry: logging.NewTelemetry(logger)}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func (a *app) storageConfig() storage.Config {
	db := a.cfg.Database
	return storage.Config{
		Driver:          db.Driver,
		DSN:             db.DSN,
		Host:            db.Host,
		Port:            db.Port,
		Name:            db.Name,
		Username:        db.Username,
		Password:        db.Password,
		TLS:             db.TLS,
		Params:          db.Params,
		MaxOpenConns:    db.MaxOpenConns,
		MaxIdleConns:    db.MaxIdleConns,
		ConnMaxLifetime: db.ConnMaxLifetime,
	}
}

// openRepository returns the configured store, migrated and ready.
func (a *app) openRepository(ctx context.Context) (dictionary.Repository, func(), error) {
	if a.cfg.Database.Driver == driverMemory {
		a.logger.Warn("using in-memory dictionary store; data is lost on exit")
		return dictionary.NewInMemoryRepository(), func() {}, nil
	}
	db, err := storage.Open(a.storageConfig())
	if err != nil {
		return nil, nil, err
	}
	if err := storage.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	a.logger.Info("dictionary store ready", zap.String("driver", db.DriverName()))
	return storage.NewDictionaryRepository(db), func() { _ = db.Close() }, nil
}

func (a *app) newService(repo dictionary.Repository) (*dictionarypkg.Service, error) {
	return dictionarypkg.NewService(dictionarypkg.Options{
		Repository: repo,
		Telemetry:  a.telemetry,
	})
}

func (a *app) newAPI(service *dictionarypkg.Service) *fiber.App {
	return httpapi.NewApp(&httpapi.Handlers{
		List:      queries.NewListDictionariesQuery(service),
		Create:    commands.NewCreateDictionaryCommand(service, a.telemetry),
		Update:    commands.NewUpdateDictionaryCommand(service, a.telemetry),
		Delete:    commands.NewDeleteDictionaryCommand(service, a.telemetry),
		APIKey:    a.cfg.Server.APIKey,
		Telemetry: a.telemetry,
	})
}

func (a *app) newClient() (dictionarypkg.Client, error) {
	return dictionarypkg.NewClient(dictionarypkg.ClientConfig{
		BaseURL: a.cfg.Client.BaseURL,
		APIKey:  a.cfg.Client.APIKey,
		Timeout: a.cfg.Client.Timeout,
	})
}

func (a *app) consolePath() string {
	return strings.TrimRight(a.cfg.Server.BasePath, "/") + "/dictionaries"
}

// newConsole wires the shell, the dictionary controller and the go-router
// routes on a fiber adapter.
func (a *app) newConsole(ctx context.Context) (router.Server[*fiber.App], *shell.SessionStore, error) {
	client, err := a.newClient()
	if err != nil {
		return nil, nil, err
	}

	menu, err := shell.NewMenuRegistry()
	if err != nil {
		return nil, nil, err
	}
	admin, err := goadmin.New(goadmin.Config{
		EnableDictionaries: true,
		Client:             client,
		MenuBuilder:        menu,
		DefaultMenuItem: shell.MenuItem{
			Label: "Dictionaries",
			Path:  a.consolePath(),
			Group: a.cfg.Console.MenuGroup,
		},
	})
	if err != nil {
		return nil, nil, err
	}
	if err := admin.Bootstrap(ctx); err != nil {
		return nil, nil, fmt.Errorf("dictadmin: bootstrap menu: %w", err)
	}

	sessions := shell.NewSessionStore(a.cfg.Server.SessionTTL)
	theme := a.cfg.Theme
	appShell, err := shell.New(shell.Options{
		Metadata: shell.Metadata{
			Title:       a.cfg.Console.Title,
			Description: a.cfg.Console.Description,
			Icon:        a.cfg.Console.Favicon,
		},
		Theme: shell.StaticThemeProvider{
			Selection: shell.ThemeSelection{
				Name:       theme.Name,
				Variant:    theme.Variant,
				Tokens:     theme.Tokens,
				Assets:     shell.ThemeAssets{Values: theme.Assets, Prefix: theme.AssetsPrefix},
				ChartTheme: theme.ChartTheme,
			},
			Variants: theme.Variants,
		},
		ThemeSelector: shell.ThemeSelector{Name: theme.Name, Variant: theme.Variant},
		Sessions:      sessions,
		Locales:       shell.NewLocaleMatcher(a.cfg.Console.Locales...),
		Menu:          menu,
		Home:          shell.Breadcrumb{Label: "Home", Path: a.cfg.Server.BasePath},
	})
	if err != nil {
		return nil, nil, err
	}

	renderer, err := dictionary.NewTemplateRenderer()
	if err != nil {
		return nil, nil, fmt.Errorf("dictadmin: load templates: %w", err)
	}
	chartOptions := []dictionary.GroupChartOption{
		dictionary.WithChartCache(dictionary.NewChartCache(a.cfg.Console.ChartCacheTTL)),
		dictionary.WithChartTheme(theme.ChartTheme),
	}
	if theme.ChartAssetsHost != "" {
		chartOptions = append(chartOptions, dictionary.WithChartAssetsHost(theme.ChartAssetsHost))
	}

	controller, err := dictionary.NewController(dictionary.ControllerOptions{
		Shell:                 appShell,
		Renderer:              renderer,
		Client:                admin.Dictionaries(),
		Chart:                 dictionary.NewGroupChart(chartOptions...),
		Telemetry:             a.telemetry,
		Formatter:             dictionary.DateFormatter{Location: a.cfg.Console.Location()},
		BasePath:              a.consolePath(),
		PageSize:              a.cfg.Console.PageSize,
		ReportTransportErrors: a.cfg.Console.ReportTransportErrors,
	})
	if err != nil {
		return nil, nil, err
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:        server.Router(),
		Controller:    controller,
		BasePath:      a.cfg.Server.BasePath,
		SessionCookie: a.cfg.Server.SessionCookie,
	}); err != nil {
		return nil, nil, fmt.Errorf("dictadmin: register console routes: %w", err)
	}
	return server, sessions, nil
}

// sweepSessions evicts idle console sessions until ctx ends.
func sweepSessions(ctx context.Context, sessions *shell.SessionStore, logger *zap.Logger) error {
	interval := sessions.TTL() / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug("swept console sessions", zap.Int("evicted", n))
			}
		}
	}
}
