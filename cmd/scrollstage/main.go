package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"scrollstage/behavior"
	"scrollstage/compose"
	"scrollstage/host"
)

var (
	verbose  bool
	modeName string
	modeFile string
	debug    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scrollstage",
	Short: "scrollstage - composed-page experience runtime",
	Long: `scrollstage runs composed, animated page experiences: environment
triggers feed a runtime state store, behaviours map state to animation
parameters each frame, and a navigation machine moves between sections
with exit/entry task orchestration.

Run without arguments to open the viewer with the fullpage preset.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViewer()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the viewer for a preset or mode file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViewer()
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [mode.yaml...]",
	Short: "Validate mode files against the built-in behaviour registry",
	Args:  cobra.MinimumNArgs(1),
	RunE:  checkModes,
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the built-in preset modes",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range compose.PresetNames() {
			fmt.Println(name)
		}
		return nil
	},
}

var checkWatch bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVar(&modeName, "mode", "fullpage", "built-in preset mode to run")
		cmd.Flags().StringVar(&modeFile, "file", "", "mode YAML file (overrides --mode)")
		cmd.Flags().BoolVar(&debug, "debug", false, "show the frame counter")
	}
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "keep watching the files and re-validate on change")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(modesCmd)
}

func loadMode() (compose.Mode, error) {
	if modeFile != "" {
		return compose.Load(modeFile)
	}
	return compose.Preset(modeName)
}

func runViewer() error {
	mode, err := loadMode()
	if err != nil {
		return err
	}
	h, err := host.New(mode, logger, debug)
	if err != nil {
		return err
	}
	logger.Info("starting viewer",
		zap.String("mode", mode.Name),
		zap.Int("sections", len(mode.Sections)))
	return host.Run(h)
}

func checkModes(cmd *cobra.Command, args []string) error {
	reg := behavior.NewRegistry()
	if err := behavior.RegisterBuiltins(reg); err != nil {
		return err
	}

	validate := func(path string) error {
		mode, err := compose.Load(path)
		if err != nil {
			return err
		}
		if err := compose.Validate(mode, reg); err != nil {
			return err
		}
		fmt.Printf("%s: ok (mode %q, %d sections)\n", path, mode.Name, len(mode.Sections))
		return nil
	}

	for _, path := range args {
		if err := validate(path); err != nil {
			if !checkWatch {
				return err
			}
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}
	if !checkWatch {
		return nil
	}

	dirs := map[string]bool{}
	for _, path := range args {
		dirs[filepath.Dir(path)] = true
	}
	dirList := make([]string, 0, len(dirs))
	for d := range dirs {
		dirList = append(dirList, d)
	}
	w, err := compose.NewWatcher(dirList...)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching for mode changes", zap.Strings("dirs", dirList))
	for {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
				continue
			}
			if err := validate(path); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
		case err, ok := <-w.Errors:
			if ok && err != nil {
				logger.Warn("watcher error", zap.Error(err))
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
