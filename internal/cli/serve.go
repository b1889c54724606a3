package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mermedit/internal/config"
	"github.com/matzehuels/mermedit/internal/server"
	"github.com/matzehuels/mermedit/pkg/layout"
	"github.com/matzehuels/mermedit/pkg/metrics"
	"github.com/matzehuels/mermedit/pkg/pipeline"
	"github.com/matzehuels/mermedit/pkg/render"
	"github.com/matzehuels/mermedit/pkg/session"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string
	noMetrics  bool
	noCache    bool
	sessionTTL time.Duration
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve editing sessions over HTTP",
		Long: `Serve editing sessions over HTTP.

Each session holds one document with its canvas, preview and node offsets.
Sessions live in memory and expire after a period without requests.
Stateless routes under /api render, parse, generate and lay out documents.

Prometheus metrics are exposed on /metrics unless --no-metrics is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = opts.addr
			}
			if opts.noMetrics {
				cfg.Server.Metrics = false
			}
			if opts.noCache {
				cfg.Cache.Backend = config.BackendNone
			}
			if cmd.Flags().Changed("session-ttl") {
				cfg.Session.TTL = opts.sessionTTL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	d := config.Default()
	cmd.Flags().StringVar(&opts.addr, "addr", d.Server.Addr, "listen address")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", d.Session.TTL, "idle time after which a session expires")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	logger := c.Logger

	store, err := cfg.Cache.Open(ctx)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	keyer := cfg.Cache.Keyer()

	runner := pipeline.NewRunner(store, keyer, logger)
	defer runner.Close()

	previewCfg := cfg.Render
	previewCfg.Format = render.FormatSVG
	gv := render.NewGraphviz(previewCfg, render.WithLogger(logger))
	defer gv.Close()

	prog := newProgress(logger)
	if err := gv.Init(ctx); err != nil {
		return err
	}
	prog.done("Graphviz ready")

	preservePinned := cfg.Session.PreservePinned
	sessions := session.NewMemoryStore(session.Options{
		TTL:            cfg.Session.TTL,
		MaxSessions:    cfg.Session.MaxSessions,
		Renderer:       render.NewCached(gv, store, keyer, render.KeyOpts(previewCfg), cfg.Cache.TTL),
		Engine:         layout.New(cfg.Layout, layout.WithLogger(logger)),
		PreservePinned: &preservePinned,
		Logger:         logger,
	})

	var reg *metrics.Registry
	if cfg.Server.Metrics {
		reg = metrics.NewRegistry()
		reg.Install()
	}

	srv := server.New(server.Options{
		Config:  cfg,
		Store:   sessions,
		Runner:  runner,
		Metrics: reg,
		Logger:  logger,
	})

	printInfo("Serving on %s", StyleLink.Render("http://"+cfg.Server.Addr))
	if c.configFile != "" {
		printDetail("Config: %s", c.configFile)
	}
	printDetail("Cache: %s", cfg.Cache.Backend)

	return srv.Run(ctx)
}
