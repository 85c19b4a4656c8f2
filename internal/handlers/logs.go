package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sentinel_cam/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errJournal = "failed to load journal"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// @Summary      List cycle journal
// @Description  Events recorded by the lifecycle, oldest first. Bounds accept RFC3339, 'YYYY-MM-DD HH:MM:SS' (UTC) or 'YYYY-MM-DD'; a date-only 'to' covers that whole day.
// @Tags         journal
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-08-01)
// @Param        to    query   string  false  "End of range, inclusive"  example(2025-08-31)
// @Param        type  query   string  false  "Event type"  Enums(STATE,SYNC,DECISION,HARDWARE,CAPTURE_ERROR,CONFIG_ERROR,FATAL)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	f, err := journalFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	switch {
	case errors.Is(err, service.ErrUnknownEventType), errors.Is(err, service.ErrInvalidTimeRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errJournal, "journal_list_failed", err,
			"from", f.From, "to", f.To, "type", f.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// journalFilter builds the query from the request. Type validation is left
// to the service, which owns the set of event types.
func journalFilter(c *gin.Context) (service.LogFilter, error) {
	f := service.LogFilter{Type: c.Query("type")}
	if qs := c.Query("from"); qs != "" {
		from, _, err := parseQueryTime(qs)
		if err != nil {
			return f, fmt.Errorf("from: %w", err)
		}
		f.From = from
	}
	if qs := c.Query("to"); qs != "" {
		to, dateOnly, err := parseQueryTime(qs)
		if err != nil {
			return f, fmt.Errorf("to: %w", err)
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = to
	}
	return f, nil
}

// parseQueryTime accepts RFC3339, "YYYY-MM-DD HH:MM:SS" or a bare date, the
// last two in UTC. The bool reports the bare date form.
func parseQueryTime(s string) (time.Time, bool, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), layout == layoutDate, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid time %q; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'", strings.TrimSpace(s))
}
