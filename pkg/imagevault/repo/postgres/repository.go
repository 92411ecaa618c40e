// Package postgres provides a PostgreSQL metadata repository.
//
// Expected schema (see migrations/postgres):
//
//	CREATE TABLE images (
//	    id           UUID PRIMARY KEY,
//	    owner_id     TEXT NOT NULL,
//	    file_name    TEXT NOT NULL,
//	    content_type TEXT NOT NULL,
//	    file_size    BIGINT NOT NULL,
//	    uploaded_at  BIGINT NOT NULL,
//	    object_key   TEXT NOT NULL,
//	    description  TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX images_owner_uploaded_at ON images (owner_id, uploaded_at DESC);
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/image-vault/pkg/imagevault"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements imagevault.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with a connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const imageColumns = "id, owner_id, file_name, content_type, file_size, uploaded_at, object_key, description"

// PutIfAbsent relies on the primary key for the existence precondition: a
// concurrent insert of the same id surfaces as a unique violation, mapped
// to ErrImageExists.
func (r *Repository) PutIfAbsent(ctx context.Context, image *imagevault.Image) error {
	query := `
		INSERT INTO images (` + imageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		image.ID, image.OwnerID, image.FileName, image.ContentType,
		image.FileSize, image.UploadedAt, image.ObjectKey, image.Description)
	if err != nil {
		return mapError("put image", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*imagevault.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`

	image, err := scanImage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("get image", err)
	}
	return image, nil
}

// DeleteIfPresent deletes and returns the old row in one statement, so the
// existence check is atomic with the removal: of two concurrent deletes,
// exactly one sees the row.
func (r *Repository) DeleteIfPresent(ctx context.Context, id uuid.UUID) (*imagevault.Image, error) {
	query := `DELETE FROM images WHERE id = $1 RETURNING ` + imageColumns

	image, err := scanImage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("delete image", err)
	}
	return image, nil
}

func (r *Repository) QueryByOwner(ctx context.Context, ownerID string, limit int) ([]*imagevault.Image, error) {
	query := `
		SELECT ` + imageColumns + `
		FROM images
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC, id`

	args := []interface{}{ownerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("query by owner", err)
	}
	defer rows.Close()

	return collectImages(rows)
}

// EnumerateAll is a full table scan with no ordering guarantee. It is the
// expensive fallback for owner-less searches.
func (r *Repository) EnumerateAll(ctx context.Context) ([]*imagevault.Image, error) {
	rows, err := r.db.Query(ctx, `SELECT `+imageColumns+` FROM images`)
	if err != nil {
		return nil, mapError("enumerate images", err)
	}
	defer rows.Close()

	return collectImages(rows)
}

func scanImage(row pgx.Row) (*imagevault.Image, error) {
	var image imagevault.Image
	err := row.Scan(
		&image.ID, &image.OwnerID, &image.FileName, &image.ContentType,
		&image.FileSize, &image.UploadedAt, &image.ObjectKey, &image.Description)
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func collectImages(rows pgx.Rows) ([]*imagevault.Image, error) {
	var result []*imagevault.Image
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, mapError("scan image", err)
		}
		result = append(result, image)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("read images", err)
	}
	return result, nil
}

// mapError translates driver failures onto the library's error kinds.
func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return imagevault.ErrImageNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return imagevault.ErrImageExists
		case "23502", "23503", "22P02": // constraint and input violations
			return fmt.Errorf("%w: %s: %s", imagevault.ErrStoreRejected, op, pgErr.Message)
		}
	}

	return fmt.Errorf("%w: %s: %v", imagevault.ErrStoreUnavailable, op, err)
}
