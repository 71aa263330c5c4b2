package tasks

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/services"
	"github.com/desertthunder/listsync/internal/shared"
)

// Decider answers yes/no questions put to the operator.
type Decider interface {
	Decide(ctx context.Context, prompt string) (bool, error)
}

// DeciderFunc adapts a function to [Decider].
type DeciderFunc func(ctx context.Context, prompt string) (bool, error)

func (f DeciderFunc) Decide(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysDecline never creates missing lists.
type AlwaysDecline struct{}

func (AlwaysDecline) Decide(context.Context, string) (bool, error) { return false, nil }

// AlwaysAccept creates every missing list without asking.
type AlwaysAccept struct{}

func (AlwaysAccept) Decide(context.Context, string) (bool, error) { return true, nil }

// DeciderFor maps a create policy from configuration to a [Decider].
// ask is the only policy that uses the interactive decider.
func DeciderFor(policy string, interactive Decider) (Decider, error) {
	switch policy {
	case shared.CreateAsk, "":
		if interactive == nil {
			return nil, fmt.Errorf("%w: create policy %q needs an interactive prompt", shared.ErrInvalidArgument, policy)
		}
		return interactive, nil
	case shared.CreateNever:
		return AlwaysDecline{}, nil
	case shared.CreateAlways:
		return AlwaysAccept{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown create policy %q", shared.ErrInvalidFlag, policy)
	}
}

// NegotiateResult is the outcome of resolving unmatched lists.
type NegotiateResult struct {
	Pairs   []models.ListPair // Matched pairs followed by pairs for newly created lists
	Created []string          // Names of lists created on either account
	Skipped []string          // Names the operator declined to create
}

// Negotiator offers to mirror lists that exist on only one account onto the other.
type Negotiator struct {
	decider     Decider
	callTimeout time.Duration
	logger      *log.Logger
}

// NewNegotiator creates a [Negotiator]. A nil decider declines everything.
func NewNegotiator(decider Decider, callTimeout time.Duration, logger *log.Logger) *Negotiator {
	if decider == nil {
		decider = AlwaysDecline{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Negotiator{decider: decider, callTimeout: callTimeout, logger: logger}
}

// MissingListPrompt is the question asked for a list missing on the named account.
func MissingListPrompt(name, account string) string {
	return fmt.Sprintf("List %s is missing on %s's account. Do you want to create it? [y/n] ", name, account)
}

// Negotiate resolves every unmatched list in match, creating a private copy on the account that lacks it when the
// decider accepts. Lists only on account 1 are offered first, then lists only on account 2.
//
// Accepted lists produce a new pair whose Left side still belongs to account 1. Pairs for lists of
// account 1 follow account 1's list order; pairs created on account 1 come last.
// Declining is a normal outcome and is recorded in [NegotiateResult.Skipped].
func (n *Negotiator) Negotiate(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	match MatchResult,
	left, right services.Account,
	leftLabel, rightLabel string,
) (*NegotiateResult, error) {
	result := &NegotiateResult{Pairs: append([]models.ListPair(nil), match.Pairs...)}

	for _, l := range match.UnmatchedA {
		created, err := n.offer(ctx, progress, l.Name, right, rightLabel)
		if err != nil {
			return result, err
		}
		if created == nil {
			result.Skipped = append(result.Skipped, l.Name)
			continue
		}
		result.Created = append(result.Created, l.Name)
		result.Pairs = append(result.Pairs, models.ListPair{Left: l, Right: *created})
	}
	sortByAccountOne(result.Pairs, match)

	for _, l := range match.UnmatchedB {
		created, err := n.offer(ctx, progress, l.Name, left, leftLabel)
		if err != nil {
			return result, err
		}
		if created == nil {
			result.Skipped = append(result.Skipped, l.Name)
			continue
		}
		result.Created = append(result.Created, l.Name)
		result.Pairs = append(result.Pairs, models.ListPair{Left: *created, Right: l})
	}

	return result, nil
}

// sortByAccountOne orders pairs by the position of their left list in account 1's lists.
// Pairs from a hand-built [MatchResult] without positions keep their order.
func sortByAccountOne(pairs []models.ListPair, match MatchResult) {
	slices.SortStableFunc(pairs, func(x, y models.ListPair) int {
		i, okX := match.positionA(x.Left.ID)
		j, okY := match.positionA(y.Left.ID)
		if !okX || !okY {
			return 0
		}
		return cmp.Compare(i, j)
	})
}

// offer asks whether to create name on target. A nil list means the operator declined.
func (n *Negotiator) offer(ctx context.Context, progress chan<- ProgressUpdate, name string, target services.Account, label string) (*models.List, error) {
	ok, err := n.decider.Decide(ctx, MissingListPrompt(name, label))
	if err != nil {
		return nil, fmt.Errorf("failed to read decision for list %s: %w", name, err)
	}

	if !ok {
		sendProgress(progress, skippingListUpdate(name))
		return nil, nil
	}

	sendProgress(progress, creatingListUpdate(name, label))
	created, err := callWithTimeout(ctx, n.callTimeout, func(ctx context.Context) (*models.List, error) {
		return target.CreateList(ctx, name, models.Private)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating list %s on %s: %w", shared.ErrAPIRequest, name, target.Name(), err)
	}

	if created.Name == "" {
		created.Name = name
	}
	n.logger.Debug("created list", "list", name, "account", target.Name(), "id", created.ID)
	return created, nil
}
