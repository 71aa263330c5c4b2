package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
	"golang.org/x/sync/errgroup"
)

// SyncOpts controls one run of [Syncer.Run].
type SyncOpts struct {
	Exclusions shared.ExclusionSet // List names never paired, created or prompted for
	Verbose    bool                // Emit per-list detail updates
	Notify     bool                // Direct message the summary to account 2
	Workers    int                 // Pairs synced concurrently; below 2 means sequential
}

// SyncResult describes what a run did. On failure it holds the work completed before the error.
type SyncResult struct {
	LeftUser   models.User
	RightUser  models.User
	LeftLabel  string // Screen name, or the account name when identity is unknown
	RightLabel string
	ListsLeft  int // Lists fetched before exclusion
	ListsRight int
	Excluded   []string
	Pairs      []models.ListPair
	Created    []string
	Skipped    []string
	Diffs      []*DiffResult // Completed pairs, in pair order
	Changed    bool
	Summary    string
	Notified   bool
	NotifyErr  error
}

// ChangedLists returns the names of lists that received members, in pair order.
func (r *SyncResult) ChangedLists() []string {
	var names []string
	for _, d := range r.Diffs {
		if d.Changed {
			names = append(names, d.Name)
		}
	}
	return names
}

// Outcomes converts completed pairs into persisted records.
func (r *SyncResult) Outcomes() []models.ListOutcome {
	outcomes := make([]models.ListOutcome, 0, len(r.Diffs))
	for _, d := range r.Diffs {
		outcomes = append(outcomes, d.Outcome())
	}
	return outcomes
}

// SummaryText renders the end-of-run summary for the given changed list names.
func SummaryText(changed []string) string {
	if len(changed) == 0 {
		return "List sync complete. No changes made!"
	}
	return fmt.Sprintf("List sync complete. Made changes to lists %s.", shared.JoinNames(changed))
}

// Syncer orchestrates a full run between two accounts: fetch, exclude, match, negotiate, diff, summarize, notify.
type Syncer struct {
	left        services.Account
	right       services.Account
	negotiator  *Negotiator
	differ      *Differ
	callTimeout time.Duration
	logger      *log.Logger
}

// SyncerOpts contains the collaborators of a [Syncer].
type SyncerOpts struct {
	Left        services.Account // Account 1; sends the summary message
	Right       services.Account // Account 2; receives the summary message
	Negotiator  *Negotiator
	Differ      *Differ
	CallTimeout time.Duration
	Logger      *log.Logger
}

// NewSyncer creates a [Syncer]. Missing negotiator and differ fall back to declining and default limits.
func NewSyncer(opts SyncerOpts) *Syncer {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Negotiator == nil {
		opts.Negotiator = NewNegotiator(AlwaysDecline{}, opts.CallTimeout, opts.Logger)
	}
	if opts.Differ == nil {
		opts.Differ = NewDiffer(shared.DefaultMaxMembers, opts.CallTimeout)
	}
	return &Syncer{
		left:        opts.Left,
		right:       opts.Right,
		negotiator:  opts.Negotiator,
		differ:      opts.Differ,
		callTimeout: opts.CallTimeout,
		logger:      opts.Logger,
	}
}

// Run performs one union-merge of every same-named list pair.
//
// The first failing pair cancels the remaining work; the returned result then holds the pairs that completed.
// Sending the summary happens strictly after all pair work and its failure only sets [SyncResult.NotifyErr].
func (s *Syncer) Run(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOpts) (*SyncResult, error) {
	if s.left == nil || s.right == nil {
		return nil, fmt.Errorf("%w: both accounts are required", shared.ErrServiceUnavailable)
	}

	result := &SyncResult{}

	if opts.Verbose {
		sendProgress(progress, fetchingListsUpdate())
	}
	listsL, err := s.fetchLists(ctx, s.left)
	if err != nil {
		return result, err
	}
	listsR, err := s.fetchLists(ctx, s.right)
	if err != nil {
		return result, err
	}
	result.ListsLeft, result.ListsRight = len(listsL), len(listsR)

	listsL, excludedL := Exclude(listsL, opts.Exclusions)
	listsR, excludedR := Exclude(listsR, opts.Exclusions)
	result.Excluded = MergeNames(excludedL, excludedR)
	if opts.Verbose && len(opts.Exclusions) > 0 {
		sendProgress(progress, excludedListsUpdate(opts.Exclusions.Names()))
	}

	result.LeftUser, result.LeftLabel = s.identify(listsL, s.left)
	result.RightUser, result.RightLabel = s.identify(listsR, s.right)

	notify := opts.Notify
	if notify && !result.RightUser.Known() {
		notify = false
		sendProgress(progress, identityUnknownUpdate())
	}

	countUpdate := listCountsUpdate(len(listsL), len(listsR), result.LeftLabel, result.RightLabel)
	if len(listsL) != len(listsR) {
		s.logger.Warn(shared.ErrListCountMismatch.Error(), "left", len(listsL), "right", len(listsR))
		sendProgress(progress, countUpdate)
	} else if opts.Verbose {
		sendProgress(progress, countUpdate)
	}

	sendProgress(progress, negotiatingUpdate())
	match := MatchLists(listsL, listsR)
	if opts.Verbose {
		for i, p := range match.Pairs {
			sendProgress(progress, presentOnBothUpdate(i+1, len(match.Pairs), p.Name()))
		}
	}

	negotiated, err := s.negotiator.Negotiate(ctx, progress, match, s.left, s.right, result.LeftLabel, result.RightLabel)
	if negotiated != nil {
		result.Pairs = negotiated.Pairs
		result.Created = negotiated.Created
		result.Skipped = negotiated.Skipped
	}
	if err != nil {
		return result, err
	}

	if err := s.syncPairs(ctx, progress, result, opts); err != nil {
		result.Changed = len(result.ChangedLists()) > 0
		return result, err
	}

	changed := result.ChangedLists()
	result.Changed = len(changed) > 0
	result.Summary = SummaryText(changed)
	if !result.Changed || opts.Verbose {
		sendProgress(progress, summaryUpdate(result))
	}

	if notify {
		_, err := callWithTimeout(ctx, s.callTimeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.left.SendDirectMessage(ctx, result.RightUser.ID, result.Summary)
		})
		if err != nil {
			result.NotifyErr = fmt.Errorf("%w: sending summary to %s: %w", shared.ErrAPIRequest, result.RightLabel, err)
			s.logger.Error("failed to send summary", "recipient", result.RightLabel, "error", err)
		} else {
			result.Notified = true
		}
		sendProgress(progress, notifyUpdate(result.RightLabel, result.NotifyErr))
	}

	sendProgress(progress, doneUpdate(result))
	return result, nil
}

// syncPairs diffs every pair, sequentially unless opts.Workers allows more.
//
// Each pair writes only its own slot, so completed pairs keep pair order regardless of scheduling.
func (s *Syncer) syncPairs(ctx context.Context, progress chan<- ProgressUpdate, result *SyncResult, opts SyncOpts) error {
	total := len(result.Pairs)
	slots := make([]*DiffResult, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))

	for i, pair := range result.Pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if opts.Verbose {
				sendProgress(progress, syncingListUpdate(i+1, total, pair.Name()))
			}

			logger := shared.WithLogger(s.logger, "list", pair.Name())
			d, err := s.differ.Diff(gctx, pair, s.left, s.right)
			if err != nil {
				logger.Error("failed to sync list", "error", err)
				return err
			}
			logger.Debug("synced list", "to_left", d.AddedLeft(), "to_right", d.AddedRight())

			slots[i] = d
			if update, ok := pairReportUpdate(i+1, total, d, result.LeftLabel, result.RightLabel, opts.Verbose); ok {
				sendProgress(progress, update)
			}
			return nil
		})
	}

	err := g.Wait()
	for _, d := range slots {
		if d != nil {
			result.Diffs = append(result.Diffs, d)
		}
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return err
}

func (s *Syncer) fetchLists(ctx context.Context, acct services.Account) ([]models.List, error) {
	return FetchAccountLists(ctx, acct, s.callTimeout)
}

func (s *Syncer) identify(lists []models.List, acct services.Account) (models.User, string) {
	owner, label := Identify(lists, acct)
	if !owner.Known() {
		s.logger.Warn(shared.ErrAccountIdentityUnknown.Error(), "account", acct.Name())
	}
	return owner, label
}

// FetchAccountLists fetches the lists of acct, bounding the call by timeout when it is positive.
func FetchAccountLists(ctx context.Context, acct services.Account, timeout time.Duration) ([]models.List, error) {
	lists, err := callWithTimeout(ctx, timeout, acct.Lists)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching lists of %s: %w", shared.ErrAPIRequest, acct.Name(), err)
	}
	return lists, nil
}

// Identify derives the account owner and its display label from the first of its (already filtered) lists.
// Accounts without lists fall back to their name and a zero user.
func Identify(lists []models.List, acct services.Account) (models.User, string) {
	if len(lists) > 0 && lists[0].Owner.Known() {
		owner := lists[0].Owner
		if owner.ScreenName == "" {
			return owner, acct.Name()
		}
		return owner, owner.ScreenName
	}
	return models.User{}, acct.Name()
}

// Exclude drops lists whose name is in the exclusion set, returning kept lists and dropped names.
func Exclude(lists []models.List, exclusions shared.ExclusionSet) ([]models.List, []string) {
	if len(exclusions) == 0 {
		return lists, nil
	}

	kept := make([]models.List, 0, len(lists))
	var dropped []string
	for _, l := range lists {
		if exclusions.Contains(l.Name) {
			dropped = append(dropped, l.Name)
			continue
		}
		kept = append(kept, l)
	}
	return kept, dropped
}

// MergeNames concatenates a and b, keeping the first occurrence of each name.
func MergeNames(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, n := range append(append([]string(nil), a...), b...) {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
