package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/ourspace/internal/credential"
	"github.com/nhle/ourspace/internal/logging"
	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/store"
	"github.com/nhle/ourspace/internal/streak"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	memoryStore bool

	cfg    *model.AppConfig
	logger *zap.Logger

	// Replaced in tests.
	now          = time.Now
	openSessions = credential.OpenSessions
	openStore    = defaultOpenStore
)

// rootCmd launches the terminal UI when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "ourspace",
	Short: "A shared space for two",
	Long: `ourspace keeps two people in touch: it counts the days you both
visited and lets you share journal entries, moods, goals and letters
with your partner as notifications.

Run without arguments to start the interactive terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env file is fine; anything else is worth reporting.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		if configPath == "" {
			configPath = model.DefaultConfigPath()
		}
		var err error
		cfg, err = model.LoadConfig(configPath)
		if err != nil {
			return err
		}

		// The terminal UI owns the screen, so it logs to a file. Other
		// commands share stderr with their output and only report problems.
		opts := logging.Options{Verbose: verbose || cfg.Log.Verbose}
		if cmd.HasParent() {
			opts.Quiet = true
		} else {
			opts.Path = cfg.Log.Path
		}
		logger, err = logging.New(opts)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/ourspace/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&memoryStore, "memory", false, "Keep everything in memory for this run")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(streakCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(prefsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultOpenStore() (store.Store, error) {
	if memoryStore {
		return store.NewMemoryStore(), nil
	}
	return store.NewSQLiteStore(cfg.Store.Path)
}

// currentUser returns the participant of the saved session.
func currentUser() (model.Participant, error) {
	sessions, err := openSessions()
	if err != nil {
		return 0, err
	}
	user, err := sessions.Current()
	if errors.Is(err, credential.ErrNoSession) {
		return 0, errors.New("not logged in, run 'ourspace login <name>' first")
	}
	return user, err
}

// restoreUser returns the participant of the saved session and records the
// visit, so using a remembered session counts toward days together just
// like logging in.
func restoreUser(ctx context.Context, s store.Store) (model.Participant, error) {
	user, err := currentUser()
	if err != nil {
		return 0, err
	}
	tracker := streak.NewTracker(s, logger, streak.WithClock(now))
	if err := tracker.RecordLogin(ctx, user.Key()); err != nil {
		return 0, err
	}
	return user, nil
}
