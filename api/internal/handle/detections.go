package handle

import (
	"context"
	"fmt"
	"net/http"

	"shelf-scan/api/internal/pipeline"
)

// ListDetections — листинг детекций изображения со статусами.
func (h *Handle) ListDetections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "invalid_input", "GET only")
		return
	}
	imageID := r.URL.Query().Get("imageId")
	if imageID == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "imageId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), interactiveDeadline)
	defer cancel()

	rows, err := h.Detections.ListByImage(ctx, imageID)
	if err != nil {
		writeKindError(w, fmt.Errorf("%w: %v", pipeline.ErrPersistence, err))
		return
	}

	type item struct {
		Detection any    `json:"detection"`
		State     string `json:"state"`
	}
	items := make([]item, 0, len(rows))
	for _, d := range rows {
		items = append(items, item{Detection: d, State: h.Resolver.StateOf(d)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"detections": items})
}
