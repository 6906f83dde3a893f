package audit

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/greyfable/masterlist/internal/models"
)

func setupTestRecorder(t *testing.T) (*Recorder, *Store) {
	t.Helper()
	store := setupTestStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRecorder(store, logger), store
}

func TestRecordAssignsTimestampAndID(t *testing.T) {
	rec, store := setupTestRecorder(t)

	err := rec.Record(models.ActivityEntry{
		Action:  models.ActionUpload,
		Actor:   "mod",
		Subject: "ML-001",
		Detail:  "Uploaded ML-001",
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := store.List(1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(got))
	}
	if got[0].ID == "" {
		t.Error("entry has no id")
	}
	if _, err := time.Parse(time.RFC3339Nano, got[0].Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339Nano: %v", got[0].Timestamp, err)
	}
}

func TestRecordRejectsUnknownAction(t *testing.T) {
	rec, store := setupTestRecorder(t)

	err := rec.Record(models.ActivityEntry{Action: "REINDEX", Actor: "mod"})
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Record() error = %v, want ErrUnknownAction", err)
	}

	err = rec.Record(models.ActivityEntry{Action: models.ActionEdit})
	if err == nil {
		t.Error("Record() without actor expected error, got nil")
	}

	if got, _ := store.List(0); len(got) != 0 {
		t.Errorf("rejected entries were written: %v", got)
	}
}

func TestRecordBestEffortSwallowsFailure(t *testing.T) {
	rec, store := setupTestRecorder(t)
	store.Close()

	// Must not panic or propagate despite the closed store
	rec.RecordBestEffort(models.ActivityEntry{
		Action: models.ActionDelete,
		Actor:  "mod",
	})
}

func TestQueryFilters(t *testing.T) {
	rec, store := setupTestRecorder(t)

	now := time.Now()
	seed := []struct {
		action string
		actor  string
		age    time.Duration
	}{
		{models.ActionUpload, "alice", time.Hour},
		{models.ActionEdit, "alice", 3 * 24 * time.Hour},
		{models.ActionEdit, "bob", 10 * 24 * time.Hour},
		{models.ActionDelete, "carol", 45 * 24 * time.Hour},
	}
	for _, s := range seed {
		if err := store.Append(stampedEntry(s.action, s.actor, now.Add(-s.age))); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter models.ActivityFilter
		want   int
	}{
		{"all", models.ActivityFilter{}, 4},
		{"all keyword", models.ActivityFilter{Action: "all"}, 4},
		{"by action", models.ActivityFilter{Action: models.ActionEdit}, 2},
		{"by actor substring", models.ActivityFilter{Actor: "ali"}, 2},
		{"actor case-insensitive", models.ActivityFilter{Actor: "BOB"}, 1},
		{"week window", models.ActivityFilter{Range: "week"}, 2},
		{"month window", models.ActivityFilter{Range: "month"}, 3},
		{"limit cap", models.ActivityFilter{Limit: 2}, 2},
		{"combined", models.ActivityFilter{Action: models.ActionEdit, Actor: "alice"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rec.Query(tt.filter)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Query() returned %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestQueryToday(t *testing.T) {
	rec, store := setupTestRecorder(t)

	// Noon today and 48 hours ago: only the first is "today"
	y, m, d := time.Now().Date()
	noon := time.Date(y, m, d, 12, 0, 0, 0, time.Local)
	if err := store.Append(stampedEntry(models.ActionUpload, "alice", noon)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(stampedEntry(models.ActionUpload, "alice", noon.Add(-48*time.Hour))); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := rec.Query(models.ActivityFilter{Range: "today"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Query(today) returned %d entries, want 1", len(got))
	}
}

func TestQueryPagePagination(t *testing.T) {
	rec, store := setupTestRecorder(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		if err := store.Append(stampedEntry(models.ActionEdit, "mod", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	page1, total, err := rec.QueryPage(models.ActivityFilter{}, 1, 3)
	if err != nil {
		t.Fatalf("QueryPage() error = %v", err)
	}
	if total != 7 || len(page1) != 3 {
		t.Errorf("page 1: total=%d len=%d, want 7/3", total, len(page1))
	}

	page3, total, err := rec.QueryPage(models.ActivityFilter{}, 3, 3)
	if err != nil {
		t.Fatalf("QueryPage() error = %v", err)
	}
	if total != 7 || len(page3) != 1 {
		t.Errorf("page 3: total=%d len=%d, want 7/1", total, len(page3))
	}

	// Beyond the last page: empty, not an error
	page9, total, err := rec.QueryPage(models.ActivityFilter{}, 9, 3)
	if err != nil {
		t.Fatalf("QueryPage() beyond end error = %v", err)
	}
	if total != 7 || len(page9) != 0 {
		t.Errorf("page 9: total=%d len=%d, want 7/0", total, len(page9))
	}

	// No two pages overlap
	seen := map[string]bool{}
	for p := 1; p <= 3; p++ {
		page, _, err := rec.QueryPage(models.ActivityFilter{}, p, 3)
		if err != nil {
			t.Fatalf("QueryPage(%d) error = %v", p, err)
		}
		for _, e := range page {
			if seen[e.ID] {
				t.Errorf("entry %s appears on more than one page", e.ID)
			}
			seen[e.ID] = true
		}
	}
	if len(seen) != 7 {
		t.Errorf("pages covered %d entries, want 7", len(seen))
	}
}

func TestSubscribeReceivesFilteredResults(t *testing.T) {
	rec, _ := setupTestRecorder(t)

	var lastSet []models.ActivityEntry
	var calls int
	unsub := rec.Subscribe(models.ActivityFilter{Action: models.ActionUpload}, func(entries []models.ActivityEntry) {
		calls++
		lastSet = entries
	})
	defer unsub()

	if err := rec.Record(models.ActivityEntry{Action: models.ActionUpload, Actor: "alice", Subject: "ML-001"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if calls != 1 || len(lastSet) != 1 {
		t.Fatalf("after upload: calls=%d len=%d, want 1/1", calls, len(lastSet))
	}

	// An edit changes the store, so the callback fires again, but the
	// filtered set still has only the upload.
	if err := rec.Record(models.ActivityEntry{Action: models.ActionEdit, Actor: "alice", Subject: "ML-001"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(lastSet) != 1 || lastSet[0].Action != models.ActionUpload {
		t.Errorf("filtered set = %v, want only the upload entry", lastSet)
	}
}

func TestSubscribeUnsubscribeIndependence(t *testing.T) {
	rec, _ := setupTestRecorder(t)

	var first, second int
	unsub1 := rec.Subscribe(models.ActivityFilter{}, func([]models.ActivityEntry) { first++ })
	unsub2 := rec.Subscribe(models.ActivityFilter{}, func([]models.ActivityEntry) { second++ })

	if err := rec.Record(models.ActivityEntry{Action: models.ActionUpload, Actor: "a"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	unsub1()
	unsub1()

	if err := rec.Record(models.ActivityEntry{Action: models.ActionUpload, Actor: "b"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if first != 1 {
		t.Errorf("first subscriber calls = %d, want 1", first)
	}
	if second != 2 {
		t.Errorf("second subscriber calls = %d, want 2", second)
	}
	unsub2()
}
