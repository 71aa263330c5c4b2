package main

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/repositories"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/desertthunder/listsync/internal/tasks"
	"github.com/desertthunder/listsync/internal/ui"
	"github.com/urfave/cli/v3"
)

const progressBuffer = 256

// Sync merges the members of every same-named list pair across both accounts.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	verbose := cmd.Bool("verbose")
	shared.SetLogLevel(r.logger, shared.LevelFor(verbose))

	policy := config.Sync.CreatePolicy
	if cmd.IsSet("create") {
		policy = cmd.String("create")
	}
	workers := config.Sync.Workers
	if cmd.IsSet("workers") {
		workers = int(cmd.Int("workers"))
	}

	decider, err := tasks.DeciderFor(policy, r.interactiveDecider())
	if err != nil {
		return err
	}

	exclusions, err := shared.LoadExclusions(config.Sync.ExclusionsFile, config.Sync.TrimExclusions)
	if err != nil {
		return err
	}
	r.logger.Debug("loaded exclusions", "path", config.Sync.ExclusionsFile, "count", len(exclusions))

	left, right, err := r.accounts(ctx, config)
	if err != nil {
		return err
	}

	printer := newProgressPrinter(r)
	go printer.run()

	timeout := config.Sync.RequestTimeout
	syncer := tasks.NewSyncer(tasks.SyncerOpts{
		Left:        left,
		Right:       right,
		Negotiator:  tasks.NewNegotiator(printer.before(decider), timeout, r.logger),
		Differ:      tasks.NewDiffer(config.Sync.MaxMembers, timeout),
		CallTimeout: timeout,
		Logger:      r.logger,
	})

	r.logger.Info("starting sync", "left", left.Name(), "right", right.Name(), "workers", workers, "create", policy)
	startedAt := time.Now()

	result, runErr := syncer.Run(ctx, printer.updates, tasks.SyncOpts{
		Exclusions: exclusions,
		Verbose:    verbose,
		Notify:     cmd.Bool("dm"),
		Workers:    workers,
	})
	printer.close()

	if config.Database.Enabled {
		if err := r.recordRun(config, result, startedAt, runErr); err != nil {
			r.logger.Warn("failed to record sync run", "error", err)
		}
	}

	if runErr != nil {
		if result != nil && len(result.Diffs) > 0 {
			r.writePlain("%s\n", ui.Styles().Warn("Synced before failure: "+shared.JoinNames(syncedNames(result))))
		}
		if !errors.Is(runErr, shared.ErrAborted) {
			r.writePlain("%s\n", ui.Styles().Err("Sync failed: "+runErr.Error()))
		}
		return runErr
	}

	r.logger.Info("sync finished", "changed", len(result.ChangedLists()), "pairs", len(result.Pairs), "elapsed", time.Since(startedAt))
	return nil
}

// recordRun stores the run in the history database. History is never read back by the sync.
func (r *Runner) recordRun(config *shared.Config, result *tasks.SyncResult, startedAt time.Time, runErr error) error {
	db, err := shared.OpenHistory(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	leftName, rightName := config.Accounts[0].Label, config.Accounts[1].Label
	summary := ""
	if result != nil {
		if result.LeftLabel != "" {
			leftName = result.LeftLabel
		}
		if result.RightLabel != "" {
			rightName = result.RightLabel
		}
		summary = result.Summary
	}

	run := models.NewSyncRun(0, leftName, rightName, startedAt)
	if result != nil {
		run.SetOutcomes(result.Outcomes())
	}
	run.Finish(summary, time.Now(), runErr)

	if err := repositories.NewRunRepository(db).Create(run); err != nil {
		return err
	}
	r.logger.Debug("recorded sync run", "id", run.ID(), "sequence", run.Sequence())
	return nil
}

func syncedNames(result *tasks.SyncResult) []string {
	names := make([]string, 0, len(result.Diffs))
	for _, d := range result.Diffs {
		names = append(names, d.Name)
	}
	return names
}

// progressPrinter writes progress updates to the runner's output from a single goroutine.
//
// Prompts must not interleave with buffered updates, so [progressPrinter.before] drains the
// channel before every decision.
type progressPrinter struct {
	r       *Runner
	updates chan tasks.ProgressUpdate
	flush   chan chan struct{}
	done    chan struct{}
}

func newProgressPrinter(r *Runner) *progressPrinter {
	return &progressPrinter{
		r:       r,
		updates: make(chan tasks.ProgressUpdate, progressBuffer),
		flush:   make(chan chan struct{}),
		done:    make(chan struct{}),
	}
}

func (p *progressPrinter) run() {
	defer close(p.done)
	for {
		select {
		case update, ok := <-p.updates:
			if !ok {
				return
			}
			p.print(update)
		case ack := <-p.flush:
			p.drain()
			close(ack)
		}
	}
}

func (p *progressPrinter) drain() {
	for {
		select {
		case update, ok := <-p.updates:
			if !ok {
				return
			}
			p.print(update)
		default:
			return
		}
	}
}

func (p *progressPrinter) print(update tasks.ProgressUpdate) {
	if update.Message == "" {
		return
	}

	message := update.Message
	if err, ok := update.Data.(error); ok && err != nil {
		message = ui.Styles().Warn(message)
	}
	p.r.writePlain("%s\n", message)
}

// before wraps d so that all pending updates are printed before the question is asked.
func (p *progressPrinter) before(d tasks.Decider) tasks.Decider {
	return tasks.DeciderFunc(func(ctx context.Context, prompt string) (bool, error) {
		ack := make(chan struct{})
		select {
		case p.flush <- ack:
			<-ack
		case <-p.done:
		}
		return d.Decide(ctx, prompt)
	})
}

// close stops the printer once every queued update is written.
func (p *progressPrinter) close() {
	close(p.updates)
	<-p.done
}
