package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/listsync/internal/formatter"
	"github.com/desertthunder/listsync/internal/repositories"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// History prints the most recent recorded sync runs.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	limit := int(cmd.Int("limit"))
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", shared.ErrInvalidFlag, limit)
	}
	format := cmd.String("format")
	outputPath := cmd.String("output")

	if !config.Database.Enabled {
		r.logger.Warn("run history is disabled; enable [database] to record new runs")
	}

	db, err := shared.OpenHistory(config.Database)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).Recent(limit)
	if err != nil {
		return fmt.Errorf("failed to load runs: %w", err)
	}
	r.logger.Debug("loaded runs", "count", len(runs), "format", format)

	if outputPath != "" {
		if err := formatter.WriteExport(runs, format, outputPath); err != nil {
			return err
		}
		r.writePlain("✓ Exported %d runs to %s\n", len(runs), outputPath)
		return nil
	}

	data, err := formatter.Export(runs, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}
