package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/pullfrom/internal/config"
	"git.home.luguber.info/inful/pullfrom/internal/forge"
	"git.home.luguber.info/inful/pullfrom/internal/foundation/errors"
	"git.home.luguber.info/inful/pullfrom/internal/logfields"
	"git.home.luguber.info/inful/pullfrom/internal/metrics"
	"git.home.luguber.info/inful/pullfrom/internal/report"
	"git.home.luguber.info/inful/pullfrom/internal/selector"
	"git.home.luguber.info/inful/pullfrom/internal/version"
)

// CLI is the pullfrom command line.
type CLI struct {
	Repo        string           `short:"r" help:"Repository as owner/name, git URL or https URL" env:"PULLFROM_REPOSITORY"`
	Token       string           `short:"t" help:"GitHub API token" env:"PULLFROM_TOKEN,GITHUB_TOKEN"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	Config      string           `short:"c" help:"Optional YAML configuration file" type:"path" env:"PULLFROM_CONFIG"`
	APIURL      string           `name:"api-url" help:"GitHub API base URL (default ${default_api_url})"`
	Timeout     time.Duration    `help:"HTTP request timeout"`
	Window      time.Duration    `help:"How far back master commits count"`
	Output      string           `short:"o" help:"Output format: text, name, ref or json"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics in text format to this file on exit" type:"path"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`
}

func (c *CLI) overrides() config.Overrides {
	return config.Overrides{
		APIURL:      c.APIURL,
		Repository:  c.Repo,
		Token:       c.Token,
		Timeout:     c.Timeout,
		Window:      c.Window,
		Output:      c.Output,
		MetricsFile: c.MetricsFile,
		Verbose:     c.Verbose,
	}
}

// run executes one selection and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// .env values must be in the environment before kong resolves env tags.
	if _, err := config.LoadEnvFiles(); err != nil {
		return errors.NewCLIErrorAdapter(false, nil).Report(stderr,
			errors.ConfigError("failed to load environment file").WithCause(err).Build())
	}

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("pullfrom"),
		kong.Description("Decide which branch a deployment should pull from."),
		kong.Writers(stdout, stderr),
		kong.Vars{
			"version":         version.String(),
			"default_api_url": config.DefaultAPIURL,
		},
	)
	if err != nil {
		return errors.NewCLIErrorAdapter(false, nil).Report(stderr, err)
	}
	if _, err := parser.Parse(args); err != nil {
		_, _ = fmt.Fprintf(stderr, "pullfrom: error: %v\n", err)
		return errors.ExitFailure
	}

	cfg, err := loadConfig(&cli)
	if err != nil {
		return errors.NewCLIErrorAdapter(cli.Verbose, nil).Report(stderr, err)
	}

	logger := cfg.Logging.NewLogger(stderr).With(logfields.RunID(uuid.NewString()))
	adapter := errors.NewCLIErrorAdapter(cli.Verbose, logger)
	logger.Debug("Configuration loaded", "config", cfg.String())

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if cfg.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	printer := report.New(stdout, cfg.Output)

	sel := selector.New(func(token string) (selector.Forge, error) {
		client, err := forge.NewGitHubClient(cfg.APIURL, token,
			forge.WithTimeout(cfg.Timeout),
			forge.WithRecorder(recorder),
			forge.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
	sel.Window = cfg.Window
	sel.Patterns = selector.Patterns{
		Master:        cfg.Branches.Master,
		ReleaseMarker: cfg.Branches.ReleaseMarker,
		HotfixMarker:  cfg.Branches.HotfixMarker,
	}
	sel.Observer = printer.Observer()
	sel.Recorder = recorder
	sel.Logger = logger

	res, err := sel.Select(ctx, cfg.Repository, cfg.Token)
	if err == nil {
		err = printer.Result(res)
	}

	if prom != nil {
		if werr := prom.WriteTextfile(cfg.MetricsFile); werr != nil {
			logger.Warn("Failed to write metrics file", logfields.Error(werr))
		}
	}

	return adapter.Report(stderr, err)
}

// loadConfig layers defaults, the optional config file and the command line.
func loadConfig(cli *CLI) (*config.Config, error) {
	cfg := config.Default()
	if cli.Config != "" {
		loaded, err := config.Load(cli.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.Apply(cli.overrides()); err != nil {
		return nil, err
	}
	return cfg, nil
}
