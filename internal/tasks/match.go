package tasks

import "github.com/desertthunder/listsync/internal/models"

// MatchResult partitions the lists of two accounts by name.
type MatchResult struct {
	Pairs      []models.ListPair // Lists present on both sides, in order of a
	UnmatchedA []models.List     // Lists only on account 1, in order of a
	UnmatchedB []models.List     // Lists only on account 2, in order of b

	rankA map[string]int // Position of each list of a, by list ID
}

// positionA reports where the list with id appeared in a.
func (m MatchResult) positionA(id string) (int, bool) {
	i, ok := m.rankA[id]
	return i, ok
}

// MatchLists pairs lists with identical names (case-sensitive, whole string).
//
// Inputs are not modified. When a side holds duplicate names the first one wins and later
// duplicates are reported as unmatched.
func MatchLists(a, b []models.List) MatchResult {
	index := make(map[string]int, len(b))
	for i, l := range b {
		if _, ok := index[l.Name]; !ok {
			index[l.Name] = i
		}
	}

	result := MatchResult{rankA: make(map[string]int, len(a))}
	paired := make([]bool, len(b))
	seen := make(map[string]struct{}, len(a))

	for i, l := range a {
		if _, ok := result.rankA[l.ID]; !ok {
			result.rankA[l.ID] = i
		}
		if _, dup := seen[l.Name]; dup {
			result.UnmatchedA = append(result.UnmatchedA, l)
			continue
		}
		seen[l.Name] = struct{}{}

		j, ok := index[l.Name]
		if !ok {
			result.UnmatchedA = append(result.UnmatchedA, l)
			continue
		}
		paired[j] = true
		result.Pairs = append(result.Pairs, models.ListPair{Left: l, Right: b[j]})
	}

	for j, l := range b {
		if !paired[j] {
			result.UnmatchedB = append(result.UnmatchedB, l)
		}
	}

	return result
}
