package tasks

import (
	"fmt"

	"github.com/desertthunder/listsync/internal/shared"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Phase is a state of the sync run, in the order they are entered.
type Phase int

const (
	FetchLists Phase = iota
	ExcludeFiltered
	MatchAndNegotiate
	SyncEachPair
	Summarize
	NotifySummary
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchLists:
		return "fetch_lists"
	case ExcludeFiltered:
		return "exclude_filtered"
	case MatchAndNegotiate:
		return "match_and_negotiate"
	case SyncEachPair:
		return "sync_each_pair"
	case Summarize:
		return "summarize"
	case NotifySummary:
		return "notify_summary"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchingListsUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchLists, Step: 0, Total: 2, Message: "Fetching lists..."}
}

func listCountsUpdate(countL, countR int, left, right string) ProgressUpdate {
	if countL == countR {
		return ProgressUpdate{
			Phase:   FetchLists,
			Step:    2,
			Total:   2,
			Message: fmt.Sprintf("Retrieved %d lists on both accounts.", countL),
		}
	}
	return ProgressUpdate{
		Phase:   FetchLists,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Retrieved %d lists from %s's account, but %d from %s's", countL, left, countR, right),
		Data:    shared.ErrListCountMismatch,
	}
}

func excludedListsUpdate(names []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExcludeFiltered,
		Message: fmt.Sprintf("Excluded lists: %s", shared.JoinNames(names)),
		Data:    names,
	}
}

func identityUnknownUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExcludeFiltered,
		Message: "Could not get name of account 2. Won't send summary dm.",
		Data:    shared.ErrAccountIdentityUnknown,
	}
}

func negotiatingUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: MatchAndNegotiate, Message: "Making sure that the same lists exist on both accounts..."}
}

func presentOnBothUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchAndNegotiate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("List %s is present on both accounts.", name),
	}
}

func creatingListUpdate(name, account string) ProgressUpdate {
	return ProgressUpdate{Phase: MatchAndNegotiate, Message: "Creating list.", Data: name + "@" + account}
}

func skippingListUpdate(name string) ProgressUpdate {
	return ProgressUpdate{Phase: MatchAndNegotiate, Message: "Skipping list.", Data: name}
}

func syncingListUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncEachPair,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Syncing list %s", name),
	}
}

// pairReportUpdate renders the result of one pair. Non-verbose output only mentions pairs that changed.
func pairReportUpdate(step, total int, d *DiffResult, left, right string, verbose bool) (ProgressUpdate, bool) {
	update := ProgressUpdate{Phase: SyncEachPair, Step: step, Total: total, Data: d}

	if !verbose {
		if !d.Changed {
			return update, false
		}
		update.Message = fmt.Sprintf("List %s:\n%s", d.Name, addingMembersLine(d, left, right))
		return update, true
	}

	msg := ""
	if d.ProtectedL > 0 || d.ProtectedR > 0 {
		msg = fmt.Sprintf("Ignoring protected accounts: %d on %s's account, %d on %s's\n", d.ProtectedL, left, d.ProtectedR, right)
	}
	if !d.Changed {
		update.Message = msg + "The list is in sync already."
		return update, true
	}

	msg += addingMembersLine(d, left, right) + "\n"
	if d.SameTotals() {
		msg += fmt.Sprintf("The list now has %d members on both accounts.", d.TotalLeft)
	} else {
		msg += fmt.Sprintf("The list now has %d members on %s's account and %d on %s's.", d.TotalLeft, left, d.TotalRight, right)
	}
	update.Message = msg
	return update, true
}

func addingMembersLine(d *DiffResult, left, right string) string {
	return fmt.Sprintf("Adding members: %d to %s's account, %d to %s's", d.AddedLeft(), left, d.AddedRight(), right)
}

func summaryUpdate(result *SyncResult) ProgressUpdate {
	return ProgressUpdate{Phase: Summarize, Message: result.Summary, Data: result}
}

func notifyUpdate(recipient string, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{Phase: NotifySummary, Message: fmt.Sprintf("Failed to send summary to %s: %v", recipient, err), Data: err}
	}
	return ProgressUpdate{Phase: NotifySummary, Message: fmt.Sprintf("Sent summary to %s.", recipient)}
}

func doneUpdate(result *SyncResult) ProgressUpdate {
	return ProgressUpdate{Phase: Done, Data: result}
}
