package handle

import (
	"context"
	"net/http"
)

type ResolveRequest struct {
	DetectionID string `json:"detectionId"`
	CandidateID string `json:"candidateId"`
}

// Resolve коммитит выбор оператора. Повтор с теми же аргументами безопасен;
// другой кандидат для уже решённой детекции перезаписывает выбор.
func (h *Handle) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid_input", "POST only")
		return
	}
	var req ResolveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "bad json: "+err.Error())
		return
	}
	if req.DetectionID == "" || req.CandidateID == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "detectionId and candidateId are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), interactiveDeadline)
	defer cancel()

	det, match, err := h.Resolver.Resolve(ctx, req.DetectionID, req.CandidateID)
	if err != nil {
		writeKindError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"detection":  det,
		"savedMatch": match,
	})
}
