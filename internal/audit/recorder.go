package audit

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/greyfable/masterlist/internal/models"
)

// ErrUnknownAction is returned when an action kind outside the closed set
// is recorded.
var ErrUnknownAction = errors.New("unknown action kind")

var validActions = map[string]bool{
	models.ActionUpload:         true,
	models.ActionEdit:           true,
	models.ActionDelete:         true,
	models.ActionUserEdit:       true,
	models.ActionPasswordChange: true,
	models.ActionRoleChange:     true,
	models.ActionAdminEdit:      true,
}

// Recorder validates and appends activity entries and serves filtered reads.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Record appends one entry. The timestamp and id are assigned here, at
// write time.
func (r *Recorder) Record(e models.ActivityEntry) error {
	if !validActions[e.Action] {
		return fmt.Errorf("%w: %q", ErrUnknownAction, e.Action)
	}
	if e.Actor == "" {
		return errors.New("activity entry requires an actor")
	}

	e.ID = uuid.New().String()
	e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)

	return r.store.Append(&e)
}

// RecordBestEffort logs and swallows any failure: the operation being
// audited must not fail because the audit write did.
func (r *Recorder) RecordBestEffort(e models.ActivityEntry) {
	if err := r.Record(e); err != nil {
		r.logger.Error("activity log write failed",
			"action", e.Action,
			"actor", e.Actor,
			"subject", e.Subject,
			"error", err,
		)
	}
}

// Query returns entries matching the filter, newest first, capped at
// filter.Limit when set.
func (r *Recorder) Query(filter models.ActivityFilter) ([]models.ActivityEntry, error) {
	all, err := r.store.List(0)
	if err != nil {
		return nil, fmt.Errorf("activity query failed: %w", err)
	}

	cutoff, hasCutoff := rangeCutoff(filter.Range, time.Now())

	matched := []models.ActivityEntry{}
	for _, e := range all {
		if filter.Action != "" && filter.Action != "all" && e.Action != filter.Action {
			continue
		}
		if filter.Actor != "" && !strings.Contains(strings.ToLower(e.Actor), strings.ToLower(filter.Actor)) {
			continue
		}
		if hasCutoff {
			ts, err := time.Parse(time.RFC3339Nano, e.Timestamp)
			if err != nil || ts.Before(cutoff) {
				continue
			}
		}
		matched = append(matched, e)
		if filter.Limit > 0 && len(matched) >= filter.Limit {
			break
		}
	}
	return matched, nil
}

// QueryPage applies the filter and then slices out one page. page is
// 1-based; pages past the end are empty, not an error.
func (r *Recorder) QueryPage(filter models.ActivityFilter, page, pageSize int) ([]models.ActivityEntry, int, error) {
	matched, err := r.Query(filter)
	if err != nil {
		return nil, 0, err
	}

	total := len(matched)
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []models.ActivityEntry{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Subscribe invokes fn with the full filtered result set after every store
// change. Subscribers are independent; the returned unsubscribe function is
// idempotent and stops all further invocations.
func (r *Recorder) Subscribe(filter models.ActivityFilter, fn func([]models.ActivityEntry)) func() {
	return r.store.Watch(func() {
		entries, err := r.Query(filter)
		if err != nil {
			r.logger.Error("activity subscription query failed", "error", err)
			return
		}
		fn(entries)
	})
}

// rangeCutoff maps a date-range bucket to its lower bound. "today" starts
// at local midnight; week and month are rolling windows.
func rangeCutoff(bucket string, now time.Time) (time.Time, bool) {
	switch bucket {
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case "week":
		return now.AddDate(0, 0, -7), true
	case "month":
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}
