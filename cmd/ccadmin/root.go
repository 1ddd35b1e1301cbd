package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/caseconductor/ccstore/internal/repository/postgres"
)

const cfgKeyDSN = "database_dsn"

var (
	// flagConfig is set by the --config flag.
	flagConfig string
	// flagDSN overrides the configured database DSN.
	flagDSN string

	logger *zap.Logger
	db     *postgres.DB
	store  *postgres.Store
)

var rootCmd = &cobra.Command{
	Use:   "ccadmin",
	Short: "Administrative tooling for the case conductor record store",
	Long: `ccadmin operates directly on the record store: it applies schema
migrations, lists soft-deleted records, restores deletion batches, and
permanently purges records that must not come back.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ccadmin.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "database DSN (overrides config and CCADMIN_DATABASE_DSN)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(deletedCmd)
	rootCmd.AddCommand(undeleteCmd)
	rootCmd.AddCommand(purgeCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ccadmin v0.1.0")
	},
}

// setup resolves the DSN, builds the logger, and connects the store. The
// version and migrate commands manage their own connections.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	if cmd.Name() == "version" || cmd.Name() == "migrate" {
		return nil
	}

	dsn, err := resolveDSN()
	if err != nil {
		return err
	}
	db, err = postgres.New(cmd.Context(), dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	store = postgres.NewStore(db, logger)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if db != nil {
		db.Close()
	}
	if logger != nil {
		_ = logger.Sync()
	}
	return nil
}

// resolveDSN returns the database DSN with precedence:
// --dsn flag > CCADMIN_DATABASE_DSN env > config file.
func resolveDSN() (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}

	v := viper.New()
	v.SetEnvPrefix("CCADMIN")
	v.AutomaticEnv()
	if flagConfig != "" {
		v.SetConfigFile(flagConfig)
	} else {
		v.SetConfigName("ccadmin")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return "", fmt.Errorf("read config: %w", err)
		}
	}

	dsn := v.GetString(cfgKeyDSN)
	if dsn == "" {
		return "", fmt.Errorf("no database DSN: set --dsn, CCADMIN_DATABASE_DSN, or %s in the config file", cfgKeyDSN)
	}
	return dsn, nil
}
