package server

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	httpserver "dataaccess-backend/internal/app/server"
	"dataaccess-backend/internal/application/services"
	"dataaccess-backend/internal/config"
	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/infrastructure/repositories"
	"dataaccess-backend/internal/patterns"
	"dataaccess-backend/internal/security"
)

// ServeOptions are the command line overrides of the configuration
type ServeOptions struct {
	ConfigPath string
	HTTPAddr   string
	Repository string
}

// AddFlags binds the options to fs
func (o *ServeOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&o.HTTPAddr, "http-addr", "", "HTTP server address (overrides config)")
	fs.StringVar(&o.Repository, "repository", "", "Repository backend: memory, postgresql, gorm, mongodb or neo4j (overrides config)")
}

// NewCommandStartServer creates the root command with its serve subcommand
func NewCommandStartServer(ctx context.Context, out, errOut io.Writer) *cobra.Command {
	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)

	root := &cobra.Command{
		Use:           "dataaccess-backend",
		Short:         "Generic data access service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	// Make Go standard flags (including klog) available to every command so users can use -v, --v etc.
	root.PersistentFlags().AddGoFlagSet(klogFlags)

	opts := &ServeOptions{}
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resource API",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if !c.Flags().Changed("v") && cfg.Log.Level > 0 {
				_ = klogFlags.Set("v", strconv.Itoa(cfg.Log.Level))
			}
			return Run(ctx, cfg)
		},
	}
	opts.AddFlags(serve.Flags())
	root.AddCommand(serve)
	return root
}

func (o *ServeOptions) config() (*config.Config, error) {
	cfg, err := config.NewConfig(o.ConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if o.HTTPAddr != "" {
		cfg.Settings.HTTPAddr = o.HTTPAddr
	}
	if o.Repository != "" {
		cfg.Repository.Type = repositories.RepositoryType(o.Repository)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// Run serves the API until ctx is done
func Run(ctx context.Context, cfg *config.Config) error {
	factory := repositories.NewFactory(cfg.Repository)
	if err := factory.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := factory.Close(); err != nil {
			klog.Errorf("failed to close repository: %v", err)
		}
	}()

	adapter, err := repositories.NewAdapter(factory, repositories.TodoBinding())
	if err != nil {
		return errors.Wrap(err, "failed to create todo adapter")
	}

	changes := patterns.NewSubject()
	changes.Subscribe(patterns.ObserverFunc(func(e any) {
		if ev, ok := e.(services.ChangeEvent); ok {
			klog.V(2).Infof("%s %s id %d", ev.Resource, ev.Op, ev.ID)
		}
	}))

	todos := services.NewTodoService(adapter,
		services.WithResolver[*models.Todo](security.NewResolver(cfg.Security.Roles, cfg.Security.DefaultRole)),
		services.WithSubject[*models.Todo](changes),
		services.WithLogger[*models.Todo](klog.Background().WithName("todos")),
	)

	srv := httpserver.SetupServer(httpserver.Options{
		Addr:      cfg.Settings.HTTPAddr,
		RateLimit: cfg.Settings.RateLimit,
		RateBurst: cfg.Settings.RateBurst,
	}, todos)

	serveErr := make(chan error, 1)
	go func() {
		klog.Infof("%s %s listening on %s, repository %s",
			cfg.App.Name, cfg.App.Version, cfg.Settings.HTTPAddr, factory.Type())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return errors.Wrap(err, "failed to serve HTTP")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Settings.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	klog.Info("server stopped")
	return nil
}
