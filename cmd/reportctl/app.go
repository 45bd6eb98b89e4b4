package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"reports-ui/internal/backend"
	"reports-ui/internal/config"
	"reports-ui/internal/logger"
	"reports-ui/internal/service/builder"
	"reports-ui/internal/service/download"
	"reports-ui/internal/service/export"
	"reports-ui/internal/session"
	"reports-ui/internal/ui"
)

// app carries what every command needs once the configuration is loaded.
type app struct {
	out      io.Writer
	prompter ui.Prompter

	configPath string
	envFile    string
	username   string
	assumeYes  bool
	quiet      bool

	cfg     *config.Config
	log     *slog.Logger
	client  *backend.Client
	console *ui.Console
}

func newApp(out io.Writer, p ui.Prompter) *app {
	return &app{out: out, prompter: p}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Build report templates, export and schedule reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.Path(), "path to the YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", os.Getenv("ENV_FILE"), "optional .env file")
	root.PersistentFlags().StringVarP(&a.username, "user", "u", "", "user name (defaults to the configured one)")
	root.PersistentFlags().BoolVarP(&a.assumeYes, "yes", "y", false, "answer yes to every confirmation")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "do not log")

	root.AddCommand(
		newTemplateCmd(a),
		newGroupCmd(a),
		newExportCmd(a),
		newScheduleCmd(a),
	)

	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.quiet {
		a.log = logger.Discard()
	} else {
		a.log = logger.Setup(cfg.Env, os.Stderr, "")
	}

	if a.username == "" {
		a.username = cfg.Username
	}

	a.client = backend.New(cfg.BaseURL, cfg.Backend.Timeout)
	a.console = ui.NewConsole(a.out, a.prompter)
	a.console.AssumeYes = a.assumeYes
	return nil
}

func (a *app) session() session.Session {
	return session.Static(a.username)
}

func (a *app) builder() *builder.Builder {
	return builder.New(a.client, a.session(), a.console, a.console, a.log)
}

func (a *app) exporter(sink ui.ReportSink) *export.Controller {
	return export.New(a.client, a.session(), a.console, a.console, sink, a.log,
		export.WithReadyDelay(a.cfg.ReportReadyDelay),
		export.WithReturnURL(a.cfg.ReturnURL),
	)
}

func (a *app) downloader() *download.Sink {
	return download.New(a.cfg.DownloadDir, a.cfg.Backend.Timeout, a.log)
}

// chooseTemplate asks for a template when none was given on the command line.
func (a *app) chooseTemplate(templates []string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("no templates available")
	}

	i, err := a.console.Choose("Template", templates)
	if err != nil {
		return 0, err
	}
	return ids[i], nil
}
