package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/desertthunder/listsync/internal/tasks"
	"github.com/desertthunder/listsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// listsReport is the JSON shape of the lists command.
type listsReport struct {
	Left      string   `json:"left"`
	Right     string   `json:"right"`
	Matched   []string `json:"matched"`
	OnlyLeft  []string `json:"only_left"`
	OnlyRight []string `json:"only_right"`
	Excluded  []string `json:"excluded"`
}

// Lists shows the lists of both accounts and whether a same-named list exists on the other side.
//
// Nothing is created or modified.
func (r *Runner) Lists(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	exclusions, err := shared.LoadExclusions(config.Sync.ExclusionsFile, config.Sync.TrimExclusions)
	if err != nil {
		return err
	}

	left, right, err := r.accounts(ctx, config)
	if err != nil {
		return err
	}

	timeout := config.Sync.RequestTimeout
	listsL, err := tasks.FetchAccountLists(ctx, left, timeout)
	if err != nil {
		return err
	}
	listsR, err := tasks.FetchAccountLists(ctx, right, timeout)
	if err != nil {
		return err
	}

	listsL, excludedL := tasks.Exclude(listsL, exclusions)
	listsR, excludedR := tasks.Exclude(listsR, exclusions)

	report := listsReport{Matched: []string{}, Excluded: []string{}}
	report.Excluded = append(report.Excluded, tasks.MergeNames(excludedL, excludedR)...)
	_, report.Left = tasks.Identify(listsL, left)
	_, report.Right = tasks.Identify(listsR, right)

	match := tasks.MatchLists(listsL, listsR)
	for _, p := range match.Pairs {
		report.Matched = append(report.Matched, p.Name())
	}
	report.OnlyLeft = listNames(match.UnmatchedA)
	report.OnlyRight = listNames(match.UnmatchedB)

	if cmd.Bool("json") {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}

	styles := ui.Styles()
	r.writePlainHeader(fmt.Sprintf("%s: %d lists, %s: %d lists", report.Left, len(listsL), report.Right, len(listsR)))
	for _, name := range report.Matched {
		r.writePlain("%s %s\n", styles.OK("✓"), name)
	}
	for _, name := range report.OnlyLeft {
		r.writePlain("%s %s %s\n", styles.Warn("←"), name, styles.Help("(only on "+report.Left+"'s account)"))
	}
	for _, name := range report.OnlyRight {
		r.writePlain("%s %s %s\n", styles.Warn("→"), name, styles.Help("(only on "+report.Right+"'s account)"))
	}
	if len(report.Excluded) > 0 {
		r.writePlainln("Excluded: %s", shared.JoinNames(report.Excluded))
	}
	return nil
}

func listNames(lists []models.List) []string {
	names := make([]string, 0, len(lists))
	for _, l := range lists {
		names = append(names, l.Name)
	}
	return names
}
