package employeeshandler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"empdir/internal/domain/employee"
)

// handleCard renders the employee's emergency contact card. The PDF is
// built in memory so a render failure can still produce a JSON 500.
func (h *Handler) handleCard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	agg, err := h.Store.GetByName(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := employee.RenderCard(&buf, *agg); err != nil {
		h.writeError(w, r, fmt.Errorf("render card %q: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name+"-card.pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
