package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"shelf-scan/api/internal/catalog"
	"shelf-scan/api/internal/pipeline"
	"shelf-scan/api/internal/resolve"
	"shelf-scan/api/internal/store"
	"shelf-scan/api/internal/vision"
)

// ImageStore / DetectionStore — хранилище за интерфейсом, чтобы тесты
// подставляли фейки без Postgres.
type ImageStore interface {
	Insert(ctx context.Context, uri string) (store.Image, error)
}

type DetectionStore interface {
	InsertBatch(ctx context.Context, imageID string, dets []vision.Detection) ([]store.Detection, error)
	Get(ctx context.Context, id string) (store.Detection, error)
	ListByImage(ctx context.Context, imageID string) ([]store.Detection, error)
}

type Handle struct {
	Engine     vision.Engine
	Matcher    catalog.Matcher
	Images     ImageStore
	Detections DetectionStore
	Resolver   *resolve.Resolver
}

func New(engine vision.Engine, matcher catalog.Matcher, images ImageStore, detections DetectionStore, r *resolve.Resolver) *Handle {
	return &Handle{
		Engine:     engine,
		Matcher:    matcher,
		Images:     images,
		Detections: detections,
		Resolver:   r,
	}
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Тело любой ошибки: {error, details?}.
func writeError(w http.ResponseWriter, code int, kind, details string) {
	body := map[string]string{"error": kind}
	if details != "" {
		body["details"] = details
	}
	writeJSON(w, code, body)
}

// writeKindError маппит вид ошибки конвейера на HTTP-статус.
func writeKindError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, pipeline.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, pipeline.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, pipeline.ErrDetectionUnavailable):
		writeError(w, http.StatusBadGateway, "detection_unavailable", err.Error())
	case errors.Is(err, pipeline.ErrCatalogUnavailable):
		writeError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
	case errors.Is(err, pipeline.ErrPersistence):
		writeError(w, http.StatusInternalServerError, "persistence_error", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
