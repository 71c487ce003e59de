package commands

import (
	"context"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port int    `short:"p" help:"Port to listen on (overrides serve.port)"`
	Poll string `help:"Rebuild periodically, e.g. 30s (overrides serve.poll_interval)"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadedConfig()
	if err != nil {
		return err
	}
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}
	if s.Poll != "" {
		cfg.Serve.PollInterval = s.Poll
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg := prom.NewRegistry()
	opts := BuildOptions{
		Recorder:     metrics.NewPrometheusRecorder(reg),
		KeepCheckout: true,
	}
	build := func(ctx context.Context) error {
		_, err := RunBuild(ctx, cfg, opts)
		return err
	}
	return preview.NewServer(cfg, build, preview.WithRegistry(reg)).Run(g.Context)
}
