// Command workbench launches the terminal UI for supervising long-running
// coding-agent sessions, or manages the registered-workspace store via its
// add/list subcommands (spec.md §6 "CLI").
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/johnespinosa/workbench/internal/action"
	"github.com/johnespinosa/workbench/internal/engine"
	"github.com/johnespinosa/workbench/internal/gitutil"
	"github.com/johnespinosa/workbench/internal/logging"
	"github.com/johnespinosa/workbench/internal/model"
	"github.com/johnespinosa/workbench/internal/persist"
	"github.com/johnespinosa/workbench/internal/ptyproc"
	"github.com/johnespinosa/workbench/internal/router"
	"github.com/johnespinosa/workbench/internal/tui"
	"github.com/johnespinosa/workbench/internal/wsconfig"
)

var (
	debugFlag bool
	nameFlag  string
)

// defaultRows/defaultCols size a restored session's screen buffer.
// Restored sessions load as Stopped and ResizeAll only resizes Running
// sessions, so the buffer keeps this size until a window resize arrives
// after the session has been restarted.
const (
	defaultRows = 24
	defaultCols = 80
)

var rootCmd = &cobra.Command{
	Use:   "workbench",
	Short: "Supervise long-running coding-agent sessions across project directories",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTUI,
}

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Register a workspace in the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print registered workspaces",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging (also: WORKBENCH_DEBUG=1)")
	addCmd.Flags().StringVar(&nameFlag, "name", "", "display name for the workspace (default: directory base name)")
	rootCmd.AddCommand(addCmd, listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func debugEnabled() bool {
	return debugFlag || os.Getenv("WORKBENCH_DEBUG") != ""
}

func runAdd(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	configDir, err := persist.ConfigDir()
	if err != nil {
		return err
	}
	state, err := persist.Load(configDir)
	if err != nil {
		return err
	}
	for _, ws := range state.Workspaces {
		if ws.Path == path {
			return fmt.Errorf("%s is already registered as %q", path, ws.Name)
		}
	}

	name := nameFlag
	if name == "" {
		name = filepath.Base(path)
	}
	ws := model.NewWorkspace(name, path)
	state.Workspaces = append(state.Workspaces, persist.SnapshotWorkspace(ws))
	if state.Sessions == nil {
		state.Sessions = map[uuid.UUID][]persist.SessionSnapshot{}
	}
	return persist.Save(configDir, state)
}

func runList(cmd *cobra.Command, args []string) error {
	configDir, err := persist.ConfigDir()
	if err != nil {
		return err
	}
	state, err := persist.Load(configDir)
	if err != nil {
		return err
	}
	if len(state.Workspaces) == 0 {
		fmt.Println("no workspaces registered")
		return nil
	}
	for _, ws := range state.Workspaces {
		fmt.Printf("%s\t%s\t%s\n", ws.Name, ws.Status.String(), ws.Path)
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	configDir, err := persist.ConfigDir()
	if err != nil {
		return err
	}

	if debugEnabled() {
		cleanup, err := logging.Init(filepath.Join(configDir, "debug.log"), "workbench ")
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		defer cleanup()
	}

	state, err := persist.Load(configDir)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	cfg, err := wsconfig.Load(configDir)
	if err != nil {
		return fmt.Errorf("load ui config: %w", err)
	}

	rtr := router.New(ptyproc.OutputChanCapacity)
	eng := engine.New(ptyproc.RealLauncher{}, rtr.Internal(), rtr.PTYOutput())

	for _, wsSnap := range state.Workspaces {
		ws := wsSnap.Restore()
		eng.AddWorkspace(ws)
		for _, sessSnap := range state.Sessions[ws.ID] {
			eng.Restore(sessSnap.Restore(), defaultRows, defaultCols)
		}
	}

	if len(args) == 1 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		found := false
		for _, wsSnap := range state.Workspaces {
			if wsSnap.Path == path {
				found = true
				break
			}
		}
		if !found {
			ws := model.NewWorkspace(filepath.Base(path), path)
			eng.AddWorkspace(ws)
		}
	}

	m := tui.New(eng, rtr, gitutil.ExecRunner{}, configDir, configDir, cfg)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	rtr.Internal() <- action.PersistRequested{}
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
