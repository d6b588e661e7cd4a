package handle

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shelf-scan/api/internal/pipeline"
	"shelf-scan/api/internal/util"
)

// Детекция — самый долгий вызов конвейера (инференс модели), поэтому
// дефолтный дедлайн заметно больше, чем у persistence-ручек.
const detectDeadline = 90 * time.Second

type DetectRequest struct {
	ImageData string `json:"imageData"` // base64 или data:URL
	MimeType  string `json:"mimeType"`
}

type DetectResponse struct {
	ImageID    string `json:"imageId"`
	Detections any    `json:"detections"`
}

func (h *Handle) Detect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid_input", "POST only")
		return
	}
	var req DetectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "bad json: "+err.Error())
		return
	}
	if req.ImageData == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "imageData is required")
		return
	}

	img, mimeHint, err := util.DecodeBase64MaybeDataURL(req.ImageData)
	if err != nil || len(img) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "bad imageData base64")
		return
	}
	mime := util.PickMIME(req.MimeType, mimeHint, img)
	if !util.IsAcceptedImageMIME(mime) {
		writeError(w, http.StatusBadRequest, "invalid_input", fmt.Sprintf("unsupported mimeType %q", mime))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestDeadline(r, detectDeadline))
	defer cancel()

	dets, err := h.Engine.Detect(ctx, img, mime)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("%w: model timed out", pipeline.ErrDetectionUnavailable)
		}
		writeKindError(w, err)
		return
	}

	imgRef, err := h.Images.Insert(ctx, "sha256:"+util.SHA256Hex(img))
	if err != nil {
		writeKindError(w, fmt.Errorf("%w: %v", pipeline.ErrPersistence, err))
		return
	}
	rows, err := h.Detections.InsertBatch(ctx, imgRef.ID, dets)
	if err != nil {
		writeKindError(w, fmt.Errorf("%w: %v", pipeline.ErrPersistence, err))
		return
	}

	writeJSON(w, http.StatusOK, DetectResponse{ImageID: imgRef.ID, Detections: rows})
}

// requestDeadline — дефолт с возможностью переопределить заголовком или
// query-параметром (в секундах).
func requestDeadline(r *http.Request, def time.Duration) time.Duration {
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return time.Duration(v) * time.Second
		}
	}
	if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return time.Duration(v) * time.Second
		}
	}
	return def
}
