package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"shelf-scan/api/internal/vision"
)

// Detection — строка детекции. Поля selected_* заполняются единственным
// путём — SaveMatch; до резолва они NULL.
type Detection struct {
	ID        string             `json:"id"`
	ImageID   string             `json:"imageId"`
	Label     string             `json:"label"`
	Box       vision.BoundingBox `json:"boundingBox"`
	CreatedAt time.Time          `json:"createdAt"`

	SelectedGTIN        *string    `json:"selectedGtin,omitempty"`
	SelectedProductName *string    `json:"selectedProductName,omitempty"`
	SelectedBrandName   *string    `json:"selectedBrandName,omitempty"`
	SelectedCategory    *string    `json:"selectedCategory,omitempty"`
	SelectedImageURL    *string    `json:"selectedImageUrl,omitempty"`
	SelectedCandidateID *string    `json:"selectedCandidateId,omitempty"`
	FullyAnalyzed       bool       `json:"fullyAnalyzed"`
	AnalysisCompletedAt *time.Time `json:"analysisCompletedAt,omitempty"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// SelectedMatch — снимок выбранного кандидата, уходящий в строку детекции.
type SelectedMatch struct {
	CandidateID string
	GTIN        string
	ProductName string
	BrandName   string
	Category    string
	ImageURL    string
}

type DetectionRepo struct{ DB *sql.DB }

func NewDetectionRepo(db *sql.DB) *DetectionRepo { return &DetectionRepo{DB: db} }

const detectionCols = `id, image_id, label, y0, x0, y1, x1, created_at,
       selected_gtin, selected_product_name, selected_brand_name,
       selected_category, selected_image_url, selected_candidate_id,
       fully_analyzed, analysis_completed_at, updated_at`

func scanDetection(row interface{ Scan(...any) error }) (Detection, error) {
	var d Detection
	err := row.Scan(&d.ID, &d.ImageID, &d.Label,
		&d.Box.Y0, &d.Box.X0, &d.Box.Y1, &d.Box.X1, &d.CreatedAt,
		&d.SelectedGTIN, &d.SelectedProductName, &d.SelectedBrandName,
		&d.SelectedCategory, &d.SelectedImageURL, &d.SelectedCandidateID,
		&d.FullyAnalyzed, &d.AnalysisCompletedAt, &d.UpdatedAt)
	return d, err
}

// InsertBatch создаёт строки для детекций одного изображения в одной транзакции.
func (r *DetectionRepo) InsertBatch(ctx context.Context, imageID string, dets []vision.Detection) ([]Detection, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const q = `insert into detections(id, image_id, label, y0, x0, y1, x1)
               values ($1,$2,$3,$4,$5,$6,$7)
               returning created_at, updated_at`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows := make([]Detection, 0, len(dets))
	for _, det := range dets {
		d := Detection{
			ID:      uuid.NewString(),
			ImageID: imageID,
			Label:   det.Label,
			Box:     det.Box,
		}
		if err := stmt.QueryRowContext(ctx, d.ID, d.ImageID, d.Label,
			d.Box.Y0, d.Box.X0, d.Box.Y1, d.Box.X1).Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		rows = append(rows, d)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DetectionRepo) Get(ctx context.Context, id string) (Detection, error) {
	const q = `select ` + detectionCols + ` from detections where id=$1`
	return scanDetection(r.DB.QueryRowContext(ctx, q, id))
}

func (r *DetectionRepo) ListByImage(ctx context.Context, imageID string) ([]Detection, error) {
	const q = `select ` + detectionCols + ` from detections where image_id=$1 order by created_at`
	rows, err := r.DB.QueryContext(ctx, q, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Detection
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveMatch атомарно записывает все selected_* поля одним UPDATE.
// Повторный вызов перезаписывает выбор (last-write-wins, без версионирования).
func (r *DetectionRepo) SaveMatch(ctx context.Context, id string, m SelectedMatch, now time.Time) (Detection, error) {
	const q = `
update detections
set selected_gtin=$2,
    selected_product_name=$3,
    selected_brand_name=$4,
    selected_category=$5,
    selected_image_url=$6,
    selected_candidate_id=$7,
    fully_analyzed=true,
    analysis_completed_at=$8,
    updated_at=$8
where id=$1
returning ` + detectionCols
	return scanDetection(r.DB.QueryRowContext(ctx, q, id,
		m.GTIN, m.ProductName, m.BrandName, m.Category, m.ImageURL, m.CandidateID, now))
}
