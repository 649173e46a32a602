package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/engine"
	"github.com/mmynk/hearthledger/internal/middleware"
)

// Pattern is the ServeMux pattern the handler is mounted on.
const Pattern = "GET /households/{id}/export.xlsx"

// Handler streams a household report as an xlsx workbook. It expects the
// caller's user ID in the request context.
type Handler struct {
	engine *engine.Engine
}

// NewHandler creates a new export handler.
func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{engine: eng}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	householdID := r.PathValue("id")

	report, err := h.engine.HouseholdReport(r.Context(), userID, householdID)
	if err != nil {
		status := httpStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("Export failed", "household_id", householdID, "error", err)
			http.Error(w, "internal error", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	f, err := Workbook(report)
	if err != nil {
		slog.Error("Export failed", "household_id", householdID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"household_%s_%s.xlsx\"",
		householdID, time.Now().UTC().Format("20060102")))

	if err := f.Write(w); err != nil {
		slog.Error("Export write failed", "household_id", householdID, "error", err)
		return
	}

	slog.Info("Household exported", "household_id", householdID, "user_id", userID)
}

func httpStatus(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindPermission:
		return http.StatusForbidden
	case apperr.KindState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
