package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/listsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenHistory(config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	versions, err := shared.AppliedVersions(db)
	if err != nil {
		return fmt.Errorf("failed to read migration state: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Database ready at %s (%d migrations applied)\n", config.Database.Path, len(versions))
	if !config.Database.Enabled {
		r.writePlain("Set enabled = true under [database] to record sync runs.\n")
	}
	return nil
}

// SetupConfig writes the example configuration to the output path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		return fmt.Errorf("%w: output path is empty", shared.ErrInvalidArgument)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Export CONSUMER_KEY_1, CONSUMER_SECRET_1, ACCESS_TOKEN_KEY_1, ACCESS_TOKEN_SECRET_1 (and the _2 set), or put them in .env\n")
	r.writePlain("2. Run 'lsx lists' to check both accounts\n")
	return nil
}
