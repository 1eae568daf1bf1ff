package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-dictadmin/components/dictionary"
	"github.com/goliatone/go-dictadmin/components/dictionary/commands"
	"github.com/goliatone/go-dictadmin/components/dictionary/queries"
	"github.com/goliatone/go-dictadmin/pkg/storage"
)

const shutdownTimeout = 5 * time.Second

type globals struct {
	Config string `short:"c" type:"path" help:"Path to the dictadmin YAML config (defaults to ./dictadmin.yaml)."`
}

type cli struct {
	globals

	Serve   serveCmd   `cmd:"" default:"1" help:"Run the REST backend and the admin console together."`
	API     apiCmd     `cmd:"" name:"api" help:"Run only the dictionary REST backend."`
	Console consoleCmd `cmd:"" help:"Run only the admin console against a remote backend."`
	Migrate migrateCmd `cmd:"" help:"Create the dictionaries table."`
	Seed    seedCmd    `cmd:"" help:"Load dictionaries from a YAML seed file."`
	List    listCmd    `cmd:"" help:"Print dictionaries grouped by type through the REST backend."`
}

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root cli
	ctx := kong.Parse(&root,
		kong.Name("dictadmin"),
		kong.Description("Dictionary administration console and REST backend."),
		kong.UsageOnError(),
		kong.BindTo(runCtx, (*context.Context)(nil)),
	)
	err := ctx.Run(&root.globals)
	ctx.FatalIfErrorf(err)
}

type serveCmd struct{}

func (cmd *serveCmd) Run(ctx context.Context, g *globals) error {
	app, err := bootstrap(g.Config)
	if err != nil {
		return err
	}
	defer app.close()

	repo, closeRepo, err := app.openRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()
	service, err := app.newService(repo)
	if err != nil {
		return err
	}
	api := app.newAPI(service)
	console, sessions, err := app.newConsole(ctx)
	if err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		app.logger.Info("dictionary API listening", zap.String("addr", app.cfg.Server.APIAddr))
		return api.Listen(app.cfg.Server.APIAddr)
	})
	group.Go(func() error {
		app.logger.Info("dictionary console listening",
			zap.String("addr", app.cfg.Server.ConsoleAddr),
			zap.String("path", app.consolePath()),
		)
		return console.Serve(app.cfg.Server.ConsoleAddr)
	})
	group.Go(func() error {
		return sweepSessions(gctx, sessions, app.logger)
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(
			api.ShutdownWithContext(shutdownCtx),
			console.Shutdown(shutdownCtx),
		)
	})
	return ignoreCanceled(group.Wait())
}

type apiCmd struct {
	Addr string `help:"Override server.api_addr."`
}

func (cmd *apiCmd) Run(ctx context.Context, g *globals) error {
	app, err := bootstrap(g.Config)
	if err != nil {
		return err
	}
	defer app.close()
	if cmd.Addr != "" {
		app.cfg.Server.APIAddr = cmd.Addr
	}

	repo, closeRepo, err := app.openRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()
	service, err := app.newService(repo)
	if err != nil {
		return err
	}
	api := app.newAPI(service)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		app.logger.Info("dictionary API listening", zap.String("addr", app.cfg.Server.APIAddr))
		return api.Listen(app.cfg.Server.APIAddr)
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return api.ShutdownWithContext(shutdownCtx)
	})
	return ignoreCanceled(group.Wait())
}

type consoleCmd struct {
	Addr    string `help:"Override server.console_addr."`
	Backend string `help:"Override client.base_url."`
}

func (cmd *consoleCmd) Run(ctx context.Context, g *globals) error {
	app, err := bootstrap(g.Config)
	if err != nil {
		return err
	}
	defer app.close()
	if cmd.Addr != "" {
		app.cfg.Server.ConsoleAddr = cmd.Addr
	}
	if cmd.Backend != "" {
		app.cfg.Client.BaseURL = cmd.Backend
	}

	console, sessions, err := app.newConsole(ctx)
	if err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		app.logger.Info("dictionary console listening",
			zap.String("addr", app.cfg.Server.ConsoleAddr),
			zap.String("backend", app.cfg.Client.BaseURL),
		)
		return console.Serve(app.cfg.Server.ConsoleAddr)
	})
	group.Go(func() error {
		return sweepSessions(gctx, sessions, app.logger)
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return console.Shutdown(shutdownCtx)
	})
	return ignoreCanceled(group.Wait())
}

type migrateCmd struct{}

func (cmd *migrateCmd) Run(ctx context.Context, g *globals) error {
	app, err := bootstrap(g.Config)
	if err != nil {
		return err
	}
	defer app.close()
	if app.cfg.Database.Driver == driverMemory {
		fmt.Fprintln(os.Stdout, color.YellowString("! memory driver has no schema to migrate"))
		return nil
	}
	db, err := storage.Open(app.storageConfig())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.Migrate(ctx, db); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s migrated %s database\n", color.GreenString("✓"), app.cfg.Database.Driver)
	return nil
}

type seedCmd struct {
	File string `required:"" type:"existingfile" help:"Seed YAML file with dictionaries to create."`
}

func (cmd *seedCmd) Run(ctx context.Context, g *globals) error {
	app, err := bootstrap(g.Config)
	if err != nil {
		return err
	}
	defer app.close()
	repo, closeRepo, err := app.openRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()
	service, err := app.newService(repo)
	if err != nil {
		return err
	}

	var created, skipped int
	seeder := commands.NewSeedDictionariesCommand(service, app.telemetry)
	if err := seeder.Execute(ctx, commands.SeedDictionariesInput{
		Path:    cmd.File,
		Created: &created,
		Skipped: &skipped,
	}); err != nil {
		return fmt.Errorf("dictadmin: seed %s: %w", cmd.File, err)
	}
	fmt.Fprintf(os.Stdout, "%s seeded %d dictionary items from %s (%d already present)\n",
		color.GreenString("✓"), created, cmd.File, skipped)
	return nil
}

type listCmd struct {
	Type     string `help:"Filter by dictionary type (substring)."`
	Label    string `help:"Filter by label (substring)."`
	Page     int    `default:"1" help:"Page to fetch."`
	PageSize int    `name:"page-size" default:"50" help:"Items per page."`
	Backend  string `help:"Override client.base_url."`
}

func (cmd *listCmd) Run(ctx context.Context, g *globals) error {
	app, err := bootstrap(g.Config)
	if err != nil {
		return err
	}
	defer app.close()
	if cmd.Backend != "" {
		app.cfg.Client.BaseURL = cmd.Backend
	}
	client, err := app.newClient()
	if err != nil {
		return err
	}
	result, err := queries.NewGroupedDictionariesQuery(client).Query(ctx, dictionary.ListQuery{
		Page:     cmd.Page,
		PageSize: cmd.PageSize,
		Type:     cmd.Type,
		Label:    cmd.Label,
	})
	if err != nil {
		return fmt.Errorf("dictadmin: list: %w", err)
	}
	if len(result.Groups) == 0 {
		fmt.Fprintln(os.Stdout, color.YellowString("no dictionaries found"))
		return nil
	}
	heading := color.New(color.FgCyan, color.Bold)
	for _, group := range result.Groups {
		heading.Fprintf(os.Stdout, "%s (%s) [%d]\n", group.Type, strcase.ToKebab(group.Type), group.Count)
		for _, item := range group.Items {
			line := fmt.Sprintf("  #%d %s = %s (sort %d)", item.ID, item.Label, item.Value, item.Sort)
			if item.Description != "" {
				line += " " + color.HiBlackString(item.Description)
			}
			fmt.Fprintln(os.Stdout, line)
		}
	}
	fmt.Fprintf(os.Stdout, "page %d, %d of %d items\n", cmd.Page, countItems(result.Groups), result.Total)
	return nil
}

func countItems(groups []dictionary.Group) int {
	total := 0
	for _, group := range groups {
		total += group.Count
	}
	return total
}

func ignoreCanceled(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	if strings.Contains(err.Error(), "server closed") {
		return nil
	}
	return err
}
