package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-finance/internal/models"
)

type AssetRepository struct {
	db *pgxpool.Pool
}

// NewAssetRepository создает репозиторий активов.
func NewAssetRepository(db *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = `id, user_id, name, kind, value_cents, valued_on, created_at, updated_at`

func scanAsset(row pgx.Row) (models.Asset, error) {
	var asset models.Asset

	err := row.Scan(&asset.ID, &asset.UserID, &asset.Name, &asset.Kind, &asset.ValueCents,
		&asset.ValuedOn, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return asset, ErrNotFound
		}
		return asset, err
	}

	return asset, nil
}

// Create создает актив.
func (r *AssetRepository) Create(ctx context.Context, userID uuid.UUID, name, kind string, valueCents int64, valuedOn time.Time) (models.Asset, error) {
	return scanAsset(r.db.QueryRow(ctx,
		`INSERT INTO assets (user_id, name, kind, value_cents, valued_on)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+assetColumns,
		userID, name, kind, valueCents, valuedOn,
	))
}

// GetByID возвращает актив пользователя по идентификатору.
func (r *AssetRepository) GetByID(ctx context.Context, userID, assetID uuid.UUID) (models.Asset, error) {
	return scanAsset(r.db.QueryRow(ctx,
		`SELECT `+assetColumns+`
		 FROM assets
		 WHERE id = $1 AND user_id = $2`,
		assetID, userID,
	))
}

// ListByUser возвращает активы пользователя.
func (r *AssetRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Asset, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+assetColumns+`
		 FROM assets
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := make([]models.Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assets, nil
}

// Update обновляет актив и дату последней оценки.
func (r *AssetRepository) Update(ctx context.Context, userID, assetID uuid.UUID, name, kind string, valueCents int64, valuedOn time.Time) (models.Asset, error) {
	return scanAsset(r.db.QueryRow(ctx,
		`UPDATE assets
		 SET name = $3, kind = $4, value_cents = $5, valued_on = $6, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+assetColumns,
		assetID, userID, name, kind, valueCents, valuedOn,
	))
}

// Delete удаляет актив.
func (r *AssetRepository) Delete(ctx context.Context, userID, assetID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM assets
		 WHERE id = $1 AND user_id = $2`,
		assetID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
