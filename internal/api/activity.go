package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/greyfable/masterlist/internal/models"
)

func activityFilterFromQuery(r *http.Request) models.ActivityFilter {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return models.ActivityFilter{
		Action: q.Get("action"),
		Range:  q.Get("range"),
		Actor:  q.Get("actor"),
		Limit:  limit,
	}
}

// ActivityList returns a filtered, paginated page of the activity log,
// newest first.
func (h *Handlers) ActivityList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	entries, total, err := h.activity.QueryPage(activityFilterFromQuery(r), page, pageSize)
	if err != nil {
		h.logger.Error("activity query failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to load activity log")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"entries":   entries,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ActivityStream pushes the filtered result set to the client as
// server-sent events whenever the log changes. Closing the request
// unsubscribes.
func (h *Handlers) ActivityStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.respondError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	filter := activityFilterFromQuery(r)
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Initial snapshot, then one event per store change.
	entries, err := h.activity.Query(filter)
	if err != nil {
		h.logger.Error("activity query failed", "error", err)
		return
	}

	updates := make(chan []models.ActivityEntry, 8)
	unsubscribe := h.activity.Subscribe(filter, func(set []models.ActivityEntry) {
		select {
		case updates <- set:
		default:
			// Slow client: drop this update, the next one carries the
			// full current set anyway.
		}
	})
	defer unsubscribe()

	h.metrics.ActivitySubscribers.Inc()
	defer h.metrics.ActivitySubscribers.Dec()

	if !writeSSE(w, entries) {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case set := <-updates:
			if !writeSSE(w, set) {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, entries []models.ActivityEntry) bool {
	data, err := json.Marshal(entries)
	if err != nil {
		return false
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return false
	}
	if _, err := w.Write(data); err != nil {
		return false
	}
	_, err = w.Write([]byte("\n\n"))
	return err == nil
}
