package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/guimauveb/guimauve.io/internal/config"
	"github.com/guimauveb/guimauve.io/internal/database"
	"github.com/guimauveb/guimauve.io/pkg/logger"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "guimauve.io administration tool",
	Example: `blogctl migrate up
blogctl migrate down --steps 1
blogctl migrate version
blogctl seed fixtures.yaml
blogctl export --format json --output articles.json`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(exportCmd())

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// env holds what every subcommand needs
type env struct {
	cfg *config.Config
	db  *database.DB
	log zerolog.Logger
}

// connect loads configuration and opens the database. Logs go to stderr so
// that exports written to stdout stay clean.
func connect() (*env, error) {
	if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, log: log}, nil
}
