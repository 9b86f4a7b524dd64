package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/activity_hub/models"
	"github.com/google/uuid"
)

func entry(priority bool, joined time.Time) models.WaitlistEntry {
	return models.WaitlistEntry{
		ID:           uuid.New(),
		EnrollmentID: uuid.New(),
		IsPriority:   priority,
		JoinedAt:     joined,
	}
}

func TestSortEntriesPriorityThenJoinTime(t *testing.T) {
	t0 := date(2026, time.March, 1)

	early := entry(false, t0)
	late := entry(false, t0.Add(2*time.Hour))
	priorityLate := entry(true, t0.Add(3*time.Hour))
	priorityEarly := entry(true, t0.Add(time.Hour))

	entries := []models.WaitlistEntry{late, priorityLate, early, priorityEarly}
	sortEntries(entries)

	wantOrder := []uuid.UUID{priorityEarly.ID, priorityLate.ID, early.ID, late.ID}
	for i, want := range wantOrder {
		if entries[i].ID != want {
			t.Fatalf("position %d: got entry %s, want %s", i+1, entries[i].ID, want)
		}
	}
}

func TestSortEntriesStableForTies(t *testing.T) {
	t0 := date(2026, time.March, 1)
	first := entry(false, t0)
	second := entry(false, t0)

	entries := []models.WaitlistEntry{first, second}
	sortEntries(entries)

	if entries[0].ID != first.ID || entries[1].ID != second.ID {
		t.Error("entries with identical join times must keep their original order")
	}
}

func TestRenumberIsDenseAndOneBased(t *testing.T) {
	t0 := date(2026, time.March, 1)
	entries := []models.WaitlistEntry{
		entry(false, t0),
		entry(true, t0.Add(time.Minute)),
		entry(false, t0.Add(2*time.Minute)),
	}
	// Simulate stale stored positions with gaps.
	entries[0].Position = 4
	entries[1].Position = 9
	entries[2].Position = 9

	sortEntries(entries)
	renumber(entries)

	for i, e := range entries {
		if e.Position != i+1 {
			t.Errorf("entry %d: position %d, want %d", i, e.Position, i+1)
		}
	}
	if !entries[0].IsPriority {
		t.Error("priority entry should hold position 1 after re-sort")
	}
}
