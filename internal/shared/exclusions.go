package shared

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// ExclusionSet holds list names that are never matched, created, or synced.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds a set from names.
func NewExclusionSet(names ...string) ExclusionSet {
	set := make(ExclusionSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Contains reports whether name is excluded. Comparison is exact.
func (s ExclusionSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the excluded names in sorted order.
func (s ExclusionSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ReadExclusions reads one list name per line.
//
// Only the line terminator is removed; surrounding whitespace is kept unless trim is set.
// Empty lines are skipped.
func ReadExclusions(r io.Reader, trim bool) (ExclusionSet, error) {
	set := ExclusionSet{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if trim {
			line = strings.TrimSpace(line)
		}
		if line == "" {
			continue
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exclusions: %w", err)
	}
	return set, nil
}

// LoadExclusions reads the exclusion file at path. A missing file yields an empty set.
func LoadExclusions(path string, trim bool) (ExclusionSet, error) {
	if path == "" {
		return ExclusionSet{}, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return ExclusionSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open exclusions file: %w", err)
	}
	defer f.Close()

	return ReadExclusions(f, trim)
}
