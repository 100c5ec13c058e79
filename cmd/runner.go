package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelx/internal/identity"
	"github.com/desertthunder/reelx/internal/metrics"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, identity provider and catalog client are created on first use so that
// commands like setup work before the rest of the configuration is filled in.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	identity   identity.Provider
	tmdb       *services.TMDBService
	loader     tasks.Loader
	metrics    *metrics.Metrics
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB
	Identity   identity.Provider
	TMDB       *services.TMDBService
	Loader     tasks.Loader
	Metrics    *metrics.Metrics
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		db:         opts.DB,
		identity:   opts.Identity,
		tmdb:       opts.TMDB,
		loader:     opts.Loader,
		metrics:    opts.Metrics,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, catalogCommand, serveCommand, browseCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and the dependencies it creates afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database handle if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

func (r *Runner) identityProvider() (identity.Provider, error) {
	if r.identity != nil {
		return r.identity, nil
	}

	var db *sql.DB
	switch r.config.Identity.Provider {
	case "", "local":
		var err error
		if db, err = r.database(); err != nil {
			return nil, err
		}
	}

	p, err := identity.NewFromConfig(r.config.Identity, db, r.httpClient, r.logger)
	if err != nil {
		return nil, err
	}
	r.identity = p
	return p, nil
}

func (r *Runner) catalogService(ctx context.Context) (*services.TMDBService, error) {
	if r.tmdb != nil {
		return r.tmdb, nil
	}

	svc, err := services.NewTMDBServiceFromConfig(ctx, r.config.Catalog, r.httpClient)
	if err != nil {
		return nil, err
	}
	r.tmdb = svc
	return svc, nil
}

func (r *Runner) catalogLoader(ctx context.Context) (tasks.Loader, error) {
	if r.loader != nil {
		return r.loader, nil
	}

	svc, err := r.catalogService(ctx)
	if err != nil {
		return nil, err
	}
	r.loader = tasks.NewPageLoader(svc, r.logger).WithMetrics(r.metrics)
	return r.loader, nil
}

// newSession builds a started session manager that reports to nav and alerts.
func (r *Runner) newSession(nav session.Navigator, alerts session.Alerter) (*session.Manager, error) {
	p, err := r.identityProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create identity provider: %w", err)
	}

	m := session.NewManager(p, session.ManagerOpts{
		Navigator: nav,
		Alerter:   alerts,
		Logger:    shared.WithLogger(r.logger, "provider", p.Name()),
	})
	m.Start()
	return m, nil
}

func (r *Runner) imageBase() string {
	if r.config.Catalog.ImageBaseURL != "" {
		return r.config.Catalog.ImageBaseURL
	}
	return "https://image.tmdb.org/t/p"
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
