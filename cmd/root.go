package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forgelabs/forgelabs/internal/catalog"
	"github.com/forgelabs/forgelabs/internal/chat"
	"github.com/forgelabs/forgelabs/internal/learner"
	"github.com/forgelabs/forgelabs/internal/llm"
	"github.com/forgelabs/forgelabs/internal/logger"
	"github.com/forgelabs/forgelabs/internal/progression"
	"github.com/forgelabs/forgelabs/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "forgelabs",
	Short: "Robotics curriculum in the terminal",
	Long:  "ForgeLabs — a gated robotics curriculum with quizzes, XP, aura and an AI lab assistant.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides FORGELABS_DB env var)")
	rootCmd.Flags().Bool("no-splash", false, "Skip the boot animation")
	rootCmd.PersistentFlags().String("catalog", "", "Path to a YAML or JSON lesson catalog (overrides FORGELABS_CATALOG env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(actionCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then FORGELABS_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// loadCatalog reads --catalog, then FORGELABS_CATALOG, then the built-in
// curriculum.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	p, _ := cmd.Flags().GetString("catalog")
	if p == "" {
		p = os.Getenv("FORGELABS_CATALOG")
	}
	if p == "" {
		return catalog.Default()
	}
	return catalog.Load(p)
}

// logTarget picks where a command's log output goes.
type logTarget int

const (
	logQuiet  logTarget = iota // stderr, warnings only
	logServer                  // stderr, info and up
	logFile                    // data directory file, keeps the TUI clean
)

// newLogger builds the command logger. FORGELABS_LOG_* settings win over
// the target's defaults.
func newLogger(target logTarget) (*logger.Logger, error) {
	opts := logger.OptionsFromEnv()
	if opts.Level == "" {
		opts.Level = "info"
		if target == logQuiet {
			opts.Level = "warn"
		}
	}
	if target == logFile && opts.Path == "" {
		dir, err := store.DataDir()
		if err != nil {
			return nil, err
		}
		opts.Path = filepath.Join(dir, "forgelabs.log")
		if err := store.EnsureDir(opts.Path); err != nil {
			return nil, err
		}
	}
	return logger.New(opts)
}

// workspace is everything a command needs to act on the learner.
type workspace struct {
	store *store.Store
	ctrl  *progression.Controller
	log   *logger.Logger
}

// openWorkspace opens the store and builds the progression controller on
// top of it. Callers must Close the workspace.
func openWorkspace(cmd *cobra.Command, target logTarget) (*workspace, error) {
	log, err := newLogger(target)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cat, err := loadCatalog(cmd)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	learners := learner.NewStore(st.StateRepo(), log)
	ctrl := progression.NewController(cat, learners,
		progression.WithActivityLog(st.EventRepo()),
		progression.WithLogger(log),
	)
	log.Debug("workspace opened", "db", dbPath, "lessons", cat.Len())
	return &workspace{store: st, ctrl: ctrl, log: log}, nil
}

func (w *workspace) Close() error {
	w.log.Sync()
	return w.store.Close()
}

// gateway builds the chat gateway. Without any usable provider it still
// answers from the knowledge base.
func (w *workspace) gateway(ctx context.Context) *chat.Gateway {
	cfg := llmConfig()
	providers, err := llm.NewProviders(ctx, cfg, w.store.EventRepo(), w.log)
	if err != nil {
		w.log.Warn("AI models unavailable, answering from the knowledge base", "error", err)
		providers = nil
	}
	return chat.NewGatewayFromConfig(providers, cfg, w.log)
}

// llmConfig reads FORGELABS_LLM_* settings. When no provider was chosen
// explicitly and the default one has no key, it falls back to whichever
// well-known API key is present.
func llmConfig() llm.Config {
	cfg := llm.ConfigFromEnv()
	if os.Getenv("FORGELABS_LLM_PROVIDER") != "" || cfg.Validate() == nil {
		return cfg
	}
	if disc, ok := llm.DiscoverConfig(); ok {
		disc.Models = cfg.Models
		return disc
	}
	return cfg
}
