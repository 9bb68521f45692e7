package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/ths-gateway/internal/audit"
)

// handleListAuditLogs returns paginated audit entries, most recent first.
//
// Query parameters:
//   - action: filter by action (order, cancel)
//   - account: filter by account display name
//   - failed: "true" to list only rejected requests
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeFailure(w, http.StatusNotFound, msgAuditDisabled)
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:  q.Get("action"),
		Account: q.Get("account"),
	}

	if v := q.Get("failed"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.Failed = b
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		writeInternalError(w, "failed to list audit logs")
		return
	}

	writeData(w, result)
}
