package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"eazypaste/pkg/filter"
	"eazypaste/pkg/logging"
	"eazypaste/pkg/settings"
	"eazypaste/pkg/tree"
	"eazypaste/pkg/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrNoFolder is returned when no folder argument is given and none was used before.
var ErrNoFolder = errors.New("no folder given and no previous folder in settings")

// app carries the state shared by every command of one invocation.
type app struct {
	logger     *zap.Logger
	debug      bool
	configPath string
}

// NewRootCommand creates the eazypaste command tree. A nil logger disables logging
// until --debug installs a development logger.
func NewRootCommand(logger *zap.Logger) *cobra.Command {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &app{logger: logger}

	root := &cobra.Command{
		Use:   version.AppName,
		Short: "Browse a project folder and assemble LLM prompts from its files",
		Long: `eazypaste shows a folder as a filtered tree, keeps it live while files change,
and pastes selected files together with intro rules and a task into one prompt.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !a.debug {
				return nil
			}
			l, err := logging.Setup(true, version.AppName, version.Version)
			if err != nil {
				return fmt.Errorf("failed to initialize debug logger: %w", err)
			}
			a.logger = l
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Settings file (default is the user config directory)")

	root.AddCommand(
		newTreeCommand(a),
		newWatchCommand(a),
		newCombineCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree for the process arguments.
func Execute(logger *zap.Logger) error {
	return NewRootCommand(logger).Execute()
}

// openStore returns the settings store selected by --config.
func (a *app) openStore() (*settings.Store, error) {
	path := a.configPath
	if path == "" {
		var err error
		path, err = settings.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return settings.NewStore(path, a.logger), nil
}

// filterFlags holds the per-command overrides of the persisted filter settings.
type filterFlags struct {
	hide   []string
	search []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.hide, "hide", nil, "Hide entries whose name contains this substring (replaces the saved list)")
	cmd.Flags().StringSliceVar(&f.search, "search", nil, "Only show entries matching this word by name or content (replaces the saved words)")
}

// apply overlays the flags that were set on cmd onto cfg.
func (f *filterFlags) apply(cmd *cobra.Command, cfg filter.Config) filter.Config {
	if cmd.Flags().Changed("hide") {
		cfg.HiddenList = f.hide
	}
	if cmd.Flags().Changed("search") {
		cfg.SearchWords = f.search
	}
	return cfg
}

// resolveFolder picks the folder argument or the last used folder, and remembers an
// explicitly chosen one.
func (a *app) resolveFolder(store *settings.Store, st settings.Settings, args []string) (string, error) {
	if len(args) == 0 {
		if st.LastFolderPath == "" {
			return "", ErrNoFolder
		}
		return st.LastFolderPath, nil
	}

	folder, err := filepath.Abs(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to resolve folder: %w", err)
	}
	if folder != st.LastFolderPath {
		if _, err := store.Update(func(s *settings.Settings) { s.LastFolderPath = folder }); err != nil {
			a.logger.Warn("Failed to remember folder", zap.String("folder", folder), zap.Error(err))
		}
	}
	return folder, nil
}

// load opens the store and reads the current settings.
func (a *app) load() (*settings.Store, settings.Settings, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, settings.Settings{}, err
	}
	st, err := store.Load()
	if err != nil {
		return nil, settings.Settings{}, err
	}
	return store, st, nil
}

func (a *app) newBuilder(st settings.Settings) *tree.Builder {
	return tree.NewBuilder(a.logger, tree.WithMaxWorkers(st.MaxWorkers))
}
