package models

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSyncRun(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		run := NewSyncRun(1, "alice", "bob", time.Now())
		if err := run.Validate(); err != nil {
			t.Errorf("expected valid run, got %v", err)
		}

		empty := NewSyncRun(1, "", "", time.Time{})
		err := empty.Validate()
		if err == nil {
			t.Fatal("expected validation error")
		}
		for _, field := range []string{"left_name", "right_name", "started_at"} {
			if !strings.Contains(err.Error(), field) {
				t.Errorf("expected error to mention %s, got %v", field, err)
			}
		}
	})

	t.Run("Finish", func(t *testing.T) {
		run := NewSyncRun(1, "alice", "bob", time.Now())
		run.Finish("List sync complete. No changes made!", time.Now(), nil)
		if run.Status() != RunSucceeded {
			t.Errorf("expected succeeded, got %s", run.Status())
		}

		failed := NewSyncRun(2, "alice", "bob", time.Now())
		failed.Finish("", time.Now(), errors.New("boom"))
		if failed.Status() != RunFailed {
			t.Errorf("expected failed, got %s", failed.Status())
		}
		if failed.ErrorMessage() != "boom" {
			t.Errorf("expected error message boom, got %q", failed.ErrorMessage())
		}
	})

	t.Run("ChangedLists", func(t *testing.T) {
		run := NewSyncRun(1, "alice", "bob", time.Now())
		run.AddOutcome(ListOutcome{Name: "Friends", Changed: true})
		run.AddOutcome(ListOutcome{Name: "Work"})
		run.AddOutcome(ListOutcome{Name: "News", Changed: true})

		got := run.ChangedLists()
		if strings.Join(got, ",") != "Friends,News" {
			t.Errorf("expected Friends,News, got %v", got)
		}
	})
}

func TestListPair(t *testing.T) {
	pair := ListPair{Left: List{ID: "1", Name: "Friends"}, Right: List{ID: "9", Name: "Friends"}}
	if pair.Name() != "Friends" {
		t.Errorf("expected Friends, got %s", pair.Name())
	}
	if (User{}).Known() {
		t.Error("zero user should not be known")
	}
}
