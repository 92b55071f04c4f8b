package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
	"github.com/aretw0/jotter/internal/config"
	"github.com/aretw0/jotter/pkg/core"
)

var (
	verbose    bool
	configFile string
	storePath  string
	adapter    string
)

// session is the store opened by the running command.
var session struct {
	path     string
	opts     []jotter.Option
	settings *config.Settings
	svc      *core.Service
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jotter",
	Short: "A small notes manager with tags, search and export",
	Long: `Jotter keeps short notes with tags in a SQLite database or a folder of
Markdown files. Every write is validated and normalized; the whole store can
be searched, summarized, exported and imported.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)

		// A failed command skips the post-run hook.
		if err := closeSession(); err != nil {
			slog.Warn("failed to close previous store", "error", err)
		}
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeSession()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fatal("jotter", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: jotter.yaml in the store root)")
	rootCmd.PersistentFlags().StringVarP(&storePath, "store", "s", "", "Store location (database file or directory)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Storage adapter: sqlite or fs")
}

// openService resolves the store from flags, config and the working
// directory, in that order, and opens it.
func openService(cmd *cobra.Command) (*core.Service, error) {
	if session.svc != nil {
		return session.svc, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	root, rootErr := jotter.FindRoot(wd)

	dirs := []string{wd}
	if rootErr == nil && root != wd {
		dirs = append([]string{root}, dirs...)
	}
	settings, err := config.Load(configFile, dirs...)
	if err != nil {
		return nil, err
	}

	path := storePath
	switch {
	case path != "":
	case settings.Store.Path != "":
		path = settings.Store.Path
	case rootErr == nil:
		path = root
	default:
		path = wd
	}

	opts := append(settings.Options(), jotter.WithLogger(slog.Default()))
	if adapter != "" {
		opts = append(opts, jotter.WithAdapter(adapter))
	}

	svc, err := jotter.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	slog.Debug("store ready", "path", path, "config", settings.ConfigFile)

	session.path, session.opts, session.settings, session.svc = path, opts, settings, svc
	return svc, nil
}

func closeSession() error {
	if session.svc == nil {
		return nil
	}
	session.svc = nil
	return jotter.Release(session.path, session.opts...)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
