package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"shelf-scan/api/internal/catalog/openfoodfacts"
	"shelf-scan/api/internal/config"
	"shelf-scan/api/internal/handle"
	"shelf-scan/api/internal/middleware"
	"shelf-scan/api/internal/resolve"
	"shelf-scan/api/internal/store"
	"shelf-scan/api/internal/vision/gemini"
)

func main() {
	cfg := config.Load()

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}

	db, err := store.Open(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	log.Printf("db connected")

	images := store.NewImageRepo(db)
	detections := store.NewDetectionRepo(db)
	resolver := resolve.New(detections)

	engine := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	matcher := openfoodfacts.New(cfg.CatalogBaseURL, cfg.CatalogUserAgent)

	h := handle.New(engine, matcher, images, detections, resolver)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/v1/detect", h.Detect)
	mux.HandleFunc("/v1/candidates", h.Candidates)
	mux.HandleFunc("/v1/resolve", h.Resolve)
	mux.HandleFunc("/v1/detections", h.ListDetections)

	addr := ":" + cfg.Port
	log.Printf("shelf-scan listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.Auth(cfg.APITokens, mux)))
}
