package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/editor"
	"github.com/mattsolo1/grove-notetree/pkg/service"
)

// Runtime carries the state shared by every subcommand: global flags, the
// logger and the settings store.
type Runtime struct {
	SettingsFile string
	LogLevel     string
	MetricsFile  string

	Logger *logrus.Logger
	Store  *config.Store

	// LogOutput overrides where logs go. Defaults to stderr.
	LogOutput io.Writer

	metrics *service.Metrics
}

// AddGlobalFlags registers the persistent flags on the root command.
func AddGlobalFlags(cmd *cobra.Command, rt *Runtime) {
	cmd.PersistentFlags().StringVar(&rt.SettingsFile, "settings", "", "settings file (default is $HOME/.config/nt/config.yaml)")
	cmd.PersistentFlags().StringVar(&rt.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&rt.MetricsFile, "metrics-file", "", "write operation counters to this file in Prometheus text format on exit")
}

// Init builds the logger and loads settings. It runs once before any
// subcommand.
func (rt *Runtime) Init(cmd *cobra.Command) error {
	logger := logrus.New()
	out := rt.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(rt.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	// grove-core's standard command may register --verbose.
	if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	rt.Logger = logger

	store, err := config.New(rt.SettingsFile, logrus.NewEntry(logger))
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	rt.Store = store
	return nil
}

// Entry returns the root log entry.
func (rt *Runtime) Entry() *logrus.Entry {
	if rt.Logger == nil {
		rt.Logger = logrus.New()
	}
	return logrus.NewEntry(rt.Logger)
}

// Service creates the notes service driving host.
func (rt *Runtime) Service(host editor.Host) (*service.Service, error) {
	if rt.Store == nil {
		return nil, fmt.Errorf("settings not loaded")
	}
	svc, err := service.New(&service.Config{
		Settings: rt.Store,
		Host:     host,
		Logger:   rt.Entry(),
		Metrics:  rt.Metrics(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize service: %w", err)
	}
	return svc, nil
}

// ExternalHost returns an editor host that launches the configured editor,
// or one that only records paths when launch is false.
func (rt *Runtime) ExternalHost(launch bool) *editor.ExternalHost {
	if !launch {
		return editor.NewExternalHost(nil, rt.Entry())
	}
	return editor.NewExternalHost(func() string {
		cmd, _ := rt.Store.GetString(config.KeyEditor)
		return cmd
	}, rt.Entry())
}

// Metrics returns the counters shared by every service of this run.
func (rt *Runtime) Metrics() *service.Metrics {
	if rt.metrics == nil {
		rt.metrics = service.NewMetrics()
	}
	return rt.metrics
}

// Finish reports the run's operation counters: a debug summary, and the
// --metrics-file textfile when one was requested. Failed commands are
// counted too, so call it after Execute returns.
func (rt *Runtime) Finish() error {
	metrics := rt.Metrics()
	if totals, err := metrics.Totals(); err == nil && len(totals) > 0 {
		fields := logrus.Fields{}
		for k, v := range totals {
			fields[k] = v
		}
		rt.Entry().WithFields(fields).Debug("operation summary")
	}
	if rt.MetricsFile == "" {
		return nil
	}
	return metrics.WriteTextfile(rt.MetricsFile)
}
