package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Image struct {
	ID         string    `json:"id"`
	URI        string    `json:"uri"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type ImageRepo struct{ DB *sql.DB }

func NewImageRepo(db *sql.DB) *ImageRepo { return &ImageRepo{DB: db} }

func (r *ImageRepo) Insert(ctx context.Context, uri string) (Image, error) {
	img := Image{ID: uuid.NewString(), URI: uri}
	const q = `insert into images(id, uri) values ($1,$2) returning uploaded_at`
	if err := r.DB.QueryRowContext(ctx, q, img.ID, img.URI).Scan(&img.UploadedAt); err != nil {
		return Image{}, err
	}
	return img, nil
}

func (r *ImageRepo) Get(ctx context.Context, id string) (Image, error) {
	const q = `select id, uri, uploaded_at from images where id=$1`
	var img Image
	if err := r.DB.QueryRowContext(ctx, q, id).Scan(&img.ID, &img.URI, &img.UploadedAt); err != nil {
		return Image{}, err
	}
	return img, nil
}
