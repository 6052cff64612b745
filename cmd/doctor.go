package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	cmdconfig "github.com/mattsolo1/grove-notetree/cmd/config"
	"github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/notefs"
)

func NewDoctorCmd(rt *cmdconfig.Runtime) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the notes root and settings for common problems",
		Long: `The doctor command checks for common setup issues and offers to fix
the ones it can.

Issues it can detect:
- Missing settings file (fixable)
- Missing or unwritable notes root (missing is fixable)
- Editor command not found on PATH
- Sibling names that differ only in case or Unicode form`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Running notes doctor...")
			fmt.Fprintln(out)

			issues, fixed := 0, 0
			report := func(format string, a ...any) {
				issues++
				fmt.Fprintf(out, "! "+format+"\n", a...)
			}

			// Settings file
			settingsPath := rt.Store.ConfigFile()
			if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
				report("Settings file %s does not exist (defaults in use)", settingsPath)
				if fix {
					if _, err := rt.Store.EnsureFile(); err != nil {
						fmt.Fprintf(out, "   could not write settings: %v\n", err)
					} else {
						fmt.Fprintln(out, "   wrote settings file")
						fixed++
					}
				}
			}

			// Notes root
			svc, err := rt.Service(rt.ExternalHost(false))
			if err != nil {
				return err
			}
			root, err := svc.RootPath()
			if err != nil {
				return fmt.Errorf("resolve notes root: %w", err)
			}
			info, err := os.Stat(root)
			switch {
			case os.IsNotExist(err):
				report("Notes root %s does not exist", root)
				if fix {
					if _, err := svc.EnsureRoot(); err != nil {
						fmt.Fprintf(out, "   could not create notes root: %v\n", err)
					} else {
						fmt.Fprintln(out, "   created notes root")
						fixed++
					}
				}
			case err != nil:
				report("Cannot stat notes root %s: %v", root, err)
			case !info.IsDir():
				report("Notes root %s is not a directory", root)
			default:
				if err := checkWritable(root); err != nil {
					report("Notes root %s is not writable: %v", root, err)
				}
			}

			// Editor
			if editorCmd, ok := rt.Store.GetString(config.KeyEditor); ok {
				bin := strings.Fields(editorCmd)[0]
				if _, err := exec.LookPath(bin); err != nil {
					report("Editor %q not found on PATH", bin)
					fmt.Fprintf(out, "   set %s in %s\n", config.KeyEditor, settingsPath)
				}
			}

			// Name clashes
			if info, err := os.Stat(root); err == nil && info.IsDir() {
				clashes, err := notefs.FindClashes(cmd.Context(), afero.NewOsFs(), root, rt.Store.GetBool(config.KeyShowHidden))
				if err != nil {
					return err
				}
				for _, c := range clashes {
					report("Names in %s differ only in case or Unicode form:", relPath(svc, c.Dir))
					for _, name := range c.Names {
						fmt.Fprintf(out, "   - %s\n", name)
					}
					fmt.Fprintln(out, "   This requires manual intervention")
				}
			}

			fmt.Fprintln(out)
			if issues == 0 {
				fmt.Fprintln(out, "No issues found.")
				return nil
			}
			fmt.Fprintf(out, "Summary: found %d issue(s)", issues)
			if fix {
				fmt.Fprintf(out, ", fixed %d", fixed)
			}
			fmt.Fprintln(out)
			if !fix && issues > fixed {
				fmt.Fprintln(out, "\nRun 'nt doctor --fix' to fix what can be fixed automatically")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Automatically fix issues")

	return cmd
}

func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".nt-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}
