package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadExclusions(t *testing.T) {
	tt := []struct {
		name    string
		input   string
		trim    bool
		want    []string
		notWant []string
	}{
		{
			name:  "one name per line",
			input: "Friends\nWork\n",
			want:  []string{"Friends", "Work"},
		},
		{
			name:    "whitespace kept by default",
			input:   " Padded \nNews\r\n",
			want:    []string{" Padded ", "News"},
			notWant: []string{"Padded", "News\r"},
		},
		{
			name:    "whitespace trimmed when requested",
			input:   " Padded \n\t\n",
			trim:    true,
			want:    []string{"Padded"},
			notWant: []string{" Padded ", ""},
		},
		{
			name:  "no trailing newline",
			input: "Last",
			want:  []string{"Last"},
		},
		{
			name:    "blank lines skipped",
			input:   "\n\nA\n\n",
			want:    []string{"A"},
			notWant: []string{""},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			set, err := ReadExclusions(strings.NewReader(tc.input), tc.trim)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(set) != len(tc.want) {
				t.Errorf("expected %d names, got %v", len(tc.want), set.Names())
			}
			for _, name := range tc.want {
				if !set.Contains(name) {
					t.Errorf("expected %q to be excluded", name)
				}
			}
			for _, name := range tc.notWant {
				if set.Contains(name) {
					t.Errorf("did not expect %q to be excluded", name)
				}
			}
		})
	}
}

func TestLoadExclusions(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		set, err := LoadExclusions(filepath.Join(t.TempDir(), "excluded_lists.txt"), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(set) != 0 {
			t.Errorf("expected empty set, got %v", set.Names())
		}
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "excluded_lists.txt")
		if err := os.WriteFile(path, []byte("Work\nFriends\n"), 0644); err != nil {
			t.Fatal(err)
		}
		set, err := LoadExclusions(path, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.Join(set.Names(), ","); got != "Friends,Work" {
			t.Errorf("expected sorted names Friends,Work, got %s", got)
		}
	})

	t.Run("case sensitive", func(t *testing.T) {
		set := NewExclusionSet("Work")
		if set.Contains("work") {
			t.Error("exclusion match must be case-sensitive")
		}
	})
}
