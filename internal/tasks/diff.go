package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
)

// DiffResult reports the union-merge of one list pair.
type DiffResult struct {
	Name       string
	ToLeft     []string // Public members of the right list missing on the left, in right fetch order
	ToRight    []string // Public members of the left list missing on the right, in left fetch order
	ProtectedL int      // Protected members seen on the left (never propagated)
	ProtectedR int
	TotalLeft  int // Projected size of the left list after adds
	TotalRight int
	Changed    bool
}

// AddedLeft is the number of members added to the left list.
func (d *DiffResult) AddedLeft() int { return len(d.ToLeft) }

// AddedRight is the number of members added to the right list.
func (d *DiffResult) AddedRight() int { return len(d.ToRight) }

// SameTotals reports whether both lists end up with the same projected size.
func (d *DiffResult) SameTotals() bool { return d.TotalLeft == d.TotalRight }

// Outcome converts the result into the persisted per-list record.
func (d *DiffResult) Outcome() models.ListOutcome {
	return models.ListOutcome{
		Name:       d.Name,
		AddedLeft:  d.AddedLeft(),
		AddedRight: d.AddedRight(),
		TotalLeft:  d.TotalLeft,
		TotalRight: d.TotalRight,
		Changed:    d.Changed,
	}
}

// Differ computes and applies the union of public members for a list pair.
type Differ struct {
	maxMembers  int
	chunkSize   int
	callTimeout time.Duration
}

// NewDiffer creates a [Differ] reading at most maxMembers per list.
//
// maxMembers falls back to [shared.DefaultMaxMembers] when not positive and is clamped to [shared.MaxMembersLimit].
func NewDiffer(maxMembers int, callTimeout time.Duration) *Differ {
	if maxMembers <= 0 {
		maxMembers = shared.DefaultMaxMembers
	}
	maxMembers = min(maxMembers, shared.MaxMembersLimit)
	return &Differ{maxMembers: maxMembers, chunkSize: DefaultChunkSize, callTimeout: callTimeout}
}

// Diff fetches both sides of pair, then adds the public members each side lacks.
//
// Adds happen in chunks of at most [services.MaxAddBatch] ids, left side first. Any failed call aborts the pair
// and is returned wrapped with [shared.ErrAPIRequest]; a pair is never reported as synced after a failure.
func (d *Differ) Diff(ctx context.Context, pair models.ListPair, left, right services.Account) (*DiffResult, error) {
	leftMembers, err := d.fetchMembers(ctx, left, pair.Left)
	if err != nil {
		return nil, err
	}
	rightMembers, err := d.fetchMembers(ctx, right, pair.Right)
	if err != nil {
		return nil, err
	}

	leftPublic, protectedL := partition(leftMembers)
	rightPublic, protectedR := partition(rightMembers)

	result := &DiffResult{
		Name:       pair.Name(),
		ToLeft:     missingFrom(leftPublic, rightPublic),
		ToRight:    missingFrom(rightPublic, leftPublic),
		ProtectedL: protectedL,
		ProtectedR: protectedR,
	}

	if err := d.addAll(ctx, left, pair.Left, result.ToLeft); err != nil {
		return nil, err
	}
	if err := d.addAll(ctx, right, pair.Right, result.ToRight); err != nil {
		return nil, err
	}

	result.TotalLeft = len(leftPublic) + protectedL + result.AddedLeft()
	result.TotalRight = len(rightPublic) + protectedR + result.AddedRight()
	result.Changed = result.AddedLeft() > 0 || result.AddedRight() > 0
	return result, nil
}

// fetchMembers pages through a list until the member cap is reached or no continuation remains.
func (d *Differ) fetchMembers(ctx context.Context, acct services.Account, list models.List) ([]models.Member, error) {
	var members []models.Member
	cursor := ""

	for len(members) < d.maxMembers {
		count := min(d.maxMembers-len(members), services.MaxMembersPage)
		page, err := callWithTimeout(ctx, d.callTimeout, func(ctx context.Context) (*models.MemberPage, error) {
			return acct.ListMembersPage(ctx, list.ID, cursor, count)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: fetching members of %s on %s: %w", shared.ErrAPIRequest, list.Name, acct.Name(), err)
		}

		members = append(members, page.Members...)
		if page.NextCursor == "" || len(page.Members) == 0 {
			break
		}
		cursor = page.NextCursor
	}

	if len(members) > d.maxMembers {
		members = members[:d.maxMembers]
	}
	return members, nil
}

func (d *Differ) addAll(ctx context.Context, acct services.Account, list models.List, ids []string) error {
	for batch := range Chunk(ids, d.chunkSize) {
		_, err := callWithTimeout(ctx, d.callTimeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, acct.AddListMembers(ctx, list.ID, batch)
		})
		if err != nil {
			return fmt.Errorf("%w: adding %d members to %s on %s: %w", shared.ErrAPIRequest, len(batch), list.Name, acct.Name(), err)
		}
	}
	return nil
}

// partition splits members into ordered, de-duplicated public ids and a count of protected members.
func partition(members []models.Member) (public []string, protected int) {
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		if m.Protected {
			protected++
			continue
		}
		public = append(public, m.ID)
	}
	return public, protected
}

// missingFrom returns the ids of source that are not in target, keeping source order.
func missingFrom(target, source []string) []string {
	have := make(map[string]struct{}, len(target))
	for _, id := range target {
		have[id] = struct{}{}
	}

	var missing []string
	for _, id := range source {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
