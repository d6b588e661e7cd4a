package handle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shelf-scan/api/internal/pipeline"
	"shelf-scan/api/internal/store"
)

const interactiveDeadline = 10 * time.Second

type CandidatesRequest struct {
	DetectionID string `json:"detectionId"`
}

// Candidates гоняет label детекции через каталог и паркует результат в
// рабочем наборе резолвера. Пустой список — валидный ответ (каталог ничего
// не нашёл), не ошибка.
func (h *Handle) Candidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid_input", "POST only")
		return
	}
	var req CandidatesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "bad json: "+err.Error())
		return
	}
	if req.DetectionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "detectionId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), interactiveDeadline)
	defer cancel()

	det, err := h.Detections.Get(ctx, req.DetectionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeKindError(w, fmt.Errorf("%w: detection %s", pipeline.ErrNotFound, req.DetectionID))
		} else {
			writeKindError(w, fmt.Errorf("%w: %v", pipeline.ErrPersistence, err))
		}
		return
	}

	cands, err := h.Matcher.FindCandidates(ctx, det.Label, nil)
	if err != nil {
		writeKindError(w, err)
		return
	}
	h.Resolver.Propose(det.ID, cands)

	writeJSON(w, http.StatusOK, map[string]any{
		"detectionId": det.ID,
		"state":       h.Resolver.StateOf(det),
		"candidates":  cands,
	})
}
