package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-notetree/cmd/config"
	"github.com/mattsolo1/grove-notetree/internal/tui/sidebar"
	"github.com/mattsolo1/grove-notetree/pkg/editor"
	"github.com/mattsolo1/grove-notetree/pkg/watch"
)

// NewTuiCmd creates the `nt tui` command.
func NewTuiCmd(rt *cmdconfig.Runtime) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive notes sidebar",
		Long: `Launch a terminal sidebar with the notes tree next to a tabbed editor.
Unsaved notes are saved when focus moves to another tab (notes.auto_save).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for TTY
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("TUI mode requires an interactive terminal")
			}

			// Keep log output off the alternate screen.
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				rt.Logger.SetOutput(f)
			} else {
				rt.Logger.SetOutput(io.Discard)
			}
			log := rt.Entry()

			ws := editor.NewWorkspace(afero.NewOsFs(), log)
			svc, err := rt.Service(ws)
			if err != nil {
				return err
			}

			stopAutoSave := svc.NewAutoSaver().Start()
			defer stopAutoSave()

			rt.Store.Watch()
			stopSettings := svc.WatchSettings(rt.Store)
			defer stopSettings()

			watcher, err := watch.New(svc.Tree.Refresh, log)
			if err != nil {
				return fmt.Errorf("failed to start file watcher: %w", err)
			}
			defer watcher.Close()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go watcher.Run(ctx)

			model := sidebar.New(svc, ws, sidebar.Options{Watcher: watcher})
			defer model.Close()
			p := tea.NewProgram(model, tea.WithAltScreen())

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file while the TUI runs")

	return cmd
}
