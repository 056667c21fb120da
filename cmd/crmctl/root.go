package main

import (
	"fmt"

	"github.com/zakareajob-cpu/zak-crm/internal/config"
	"github.com/zakareajob-cpu/zak-crm/internal/infra"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app holds what subcommands share. The database opens on first use so that
// hash-password works without one.
type app struct {
	envFile string
	cfg     *config.Config
	db      *gorm.DB
}

func (a *app) load() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", a.envFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) database() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := infra.NewDatabase(a.cfg.DatabaseDriver, a.cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", a.cfg.DatabaseDriver, err)
	}
	a.db = db
	return db, nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	a.db = nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "crmctl",
		Short:         "Maintenance commands for zak-crm",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "env file to load before reading configuration")

	rootCmd.AddCommand(
		newImportProductsCmd(a),
		newSeedAdminCmd(a),
		newHashPasswordCmd(),
	)
	return rootCmd
}
