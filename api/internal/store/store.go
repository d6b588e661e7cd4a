package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

var ErrNotFound = sql.ErrNoRows

// Open подключается к Postgres и настраивает пул (нагрузка до ~20 rps).
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
create table if not exists images (
  id          uuid primary key,
  uri         text not null,
  uploaded_at timestamptz not null default now()
);

create table if not exists detections (
  id                    uuid primary key,
  image_id              uuid not null references images(id),
  label                 text not null,
  y0 double precision not null,
  x0 double precision not null,
  y1 double precision not null,
  x1 double precision not null,
  created_at            timestamptz not null default now(),
  selected_gtin         text,
  selected_product_name text,
  selected_brand_name   text,
  selected_category     text,
  selected_image_url    text,
  selected_candidate_id text,
  fully_analyzed        boolean not null default false,
  analysis_completed_at timestamptz,
  updated_at            timestamptz not null default now()
);

create index if not exists detections_image_idx on detections(image_id);
`

// Migrate применяет схему. Идемпотентно.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
