// Package main provides the CLI entrypoint for mjtally.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mjtally/internal/config"
	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/session"
	"github.com/verte-zerg/mjtally/internal/store"
	"github.com/verte-zerg/mjtally/internal/tui"
)

const defaultLogLevel = "info"

var (
	dbPath   string
	retries  int
	logLevel string
	logFile  string
	color    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mjtally",
		Short:         "Mahjong scoresheet for a 16-round session",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runScoresheetCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbPath, "db", config.DefaultDBPath(), "path to the SQLite database")
	flags.IntVar(&retries, "retries", store.DefaultRetries, "write attempts when the database is busy")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file used while a TUI is running")
	flags.BoolVar(&color, "color", false, "force coloured output")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newRoundCmd())
	rootCmd.AddCommand(newSeatCmd())
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newCloseCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

func runScoresheetCmd(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, true, func(_ context.Context, sess *session.Session, log zerolog.Logger) error {
		program := tea.NewProgram(tui.NewModel(sess, log), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run scoresheet TUI: %w", err)
		}
		return nil
	})
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// resolveConfig layers flags over the config file over built-in defaults.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Store.Path)
	applyIntConfig(cmd, "retries", &retries, fileCfg.Store.Retries)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyBoolConfig(cmd, "color", &color, fileCfg.Display.Color)

	cfg := model.Config{
		DBPath:   config.ExpandHome(dbPath),
		Retries:  retries,
		LogLevel: logLevel,
		LogFile:  config.ExpandHome(logFile),
		Color:    color,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return fmt.Errorf("--db must not be empty")
	}
	if cfg.Retries < 1 {
		return fmt.Errorf("--retries must be >= 1")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

// newLogger writes to stderr for one-shot commands and to a file while a TUI
// owns the terminal.
func newLogger(cfg model.Config, stderr io.Writer, toFile bool) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}
	if toFile {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return zerolog.Nop(), func() {}, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), func() {}, fmt.Errorf("failed to open log file: %w", err)
		}
		logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
		return logger, func() {
			// Best-effort close.
			_ = f.Close()
		}, nil
	}

	output := zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339, NoColor: true}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger(), func() {}, nil
}

// withSession resolves config, opens the store and loads the session around fn.
func withSession(cmd *cobra.Command, logToFile bool, fn func(context.Context, *session.Session, zerolog.Logger) error) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg, cmd.ErrOrStderr(), logToFile)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(cfg.DBPath, store.WithRetries(cfg.Retries))
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("db-close-failed")
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess := session.New(st, session.WithLogger(log))
	if err := sess.Load(ctx); err != nil {
		if errors.Is(err, session.ErrPersistence) {
			return fmt.Errorf("failed to load session: %w", err)
		}
		// Malformed records were replaced by fresh values; keep going.
		log.Warn().Err(err).Msg("session-load-warning")
	}
	return fn(ctx, sess, log)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
