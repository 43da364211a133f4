package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	viddefe "github.com/viddefe/go-viddefe"
	"github.com/viddefe/go-viddefe/internal/di"
	"github.com/viddefe/go-viddefe/internal/permissions"
	"github.com/viddefe/go-viddefe/internal/render"
	"github.com/viddefe/go-viddefe/internal/runtimeconfig"
)

// app holds the flags and the module shared by every command.
type app struct {
	configPath string
	storage    string
	driver     string
	dsn        string
	backend    string
	pageSize   int
	caps       []string
	verbose    bool

	module  *viddefe.Module
	sources []string
	styles  render.Styles
}

// Execute runs the root command.
func Execute() error {
	root, a := newRootCommand()
	defer a.close()
	return root.Execute()
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{styles: render.DefaultStyles()}
	root := &cobra.Command{
		Use:           "viddefe",
		Short:         "Church management client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context(), cmd.Name() != "seed")
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (YAML) layered over ~/.config/viddefe and ./viddefe.yaml")
	flags.StringVar(&a.storage, "storage", "", "storage provider (memory, bun, http)")
	flags.StringVar(&a.driver, "driver", "", "bun driver (sqlite, postgres)")
	flags.StringVar(&a.dsn, "dsn", "", "bun data source name")
	flags.StringVar(&a.backend, "backend", "", "backend base URL for the http provider")
	flags.IntVar(&a.pageSize, "page-size", 0, "rows per page")
	flags.StringSliceVar(&a.caps, "caps", nil, "capabilities granted to this session, e.g. churches:read (default all)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		churchesCmd(a),
		peopleCmd(a),
		groupsCmd(a),
		meetingsCmd(a),
		offeringsCmd(a),
		geoCmd(a),
		seedCmd(a),
		browseCmd(a),
	)
	return root, a
}

func (a *app) config() (runtimeconfig.Config, error) {
	cfg, sources, err := viddefe.LoadConfig(a.configPath)
	if err != nil {
		return cfg, err
	}
	a.sources = sources
	if a.storage != "" {
		cfg.Storage.Provider = a.storage
	}
	if a.driver != "" {
		cfg.Storage.Driver = a.driver
	}
	if a.dsn != "" {
		cfg.Storage.DSN = a.dsn
	}
	if a.backend != "" {
		cfg.Backend.BaseURL = a.backend
	}
	if a.pageSize > 0 {
		cfg.Pagination.DefaultPageSize = a.pageSize
	}
	if a.verbose {
		cfg.Features.Logger = true
		cfg.Logging.Level = "debug"
	}
	cfg.Features.Events = true
	return cfg, nil
}

func (a *app) open(ctx context.Context, seedMemory bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := a.config()
	if err != nil {
		return err
	}
	var opts []di.Option
	if len(a.caps) > 0 {
		opts = append(opts, di.WithCapabilities(permissions.NewSet(a.caps...)))
	}
	module, err := viddefe.New(cfg, opts...)
	if err != nil {
		return err
	}
	a.module = module
	if err := module.EnsureSchema(ctx); err != nil {
		return err
	}
	if seedMemory && strings.EqualFold(cfg.Storage.Provider, runtimeconfig.StorageMemory) {
		seed, err := viddefe.DefaultSeed()
		if err != nil {
			return err
		}
		if _, err := module.Seed(ctx, seed); err != nil {
			return fmt.Errorf("seed memory store: %w", err)
		}
	}
	return nil
}

func (a *app) close() {
	if a.module != nil {
		_ = a.module.Close()
		a.module = nil
	}
}

var errNotFound = errors.New("not found")
