package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskmanager/internal/config"
	"taskmanager/internal/db"
	"taskmanager/internal/logging"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
)

func main() {
	if err := newSeedCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSeedCommand() *cobra.Command {
	var (
		file  string
		reset bool
	)

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Migrate the schema and create the default roles and users",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logging.New(cfg.LogLevel, cfg.LogFormat)

			gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
			if err != nil {
				return err
			}

			policy := db.DefaultRetryPolicy()
			policy.MaxRetries = cfg.DBMaxRetries
			policy.MaxDelay = cfg.DBMaxRetryDelay
			policy.CommandTimeout = cfg.DBCommandTimeout

			ctx := context.Background()
			if err := db.Ping(ctx, gormDB, policy); err != nil {
				return fmt.Errorf("database unreachable: %w", err)
			}
			if reset || cfg.ResetDB {
				db.Reset(gormDB, log)
			}
			if err := db.Migrate(gormDB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("database migrations completed")

			if file == "" {
				file = cfg.SeedUsersPath
			}
			var extra []service.SeedUser
			if file != "" {
				if extra, err = service.LoadSeedFile(file); err != nil {
					return err
				}
				log.WithField("count", len(extra)).Info("loaded seed file")
			}

			seeder := service.NewSeeder(
				repository.NewUserRepository(gormDB, policy),
				repository.NewRoleRepository(gormDB, policy),
				log,
			)
			if err := seeder.Run(ctx, extra); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			log.Info("seed completed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with additional users (defaults to SEED_USERS_PATH)")
	cmd.Flags().BoolVar(&reset, "reset", false, "drop and recreate all tables before seeding")
	return cmd
}
