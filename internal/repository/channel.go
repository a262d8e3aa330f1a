package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ytvault/archive-server-go/internal/database"
	"github.com/ytvault/archive-server-go/internal/model"
)

type ChannelRepository interface {
	FindByID(ctx context.Context, id string) (*model.Channel, error)
	List(ctx context.Context, query string, limit, offset int) ([]model.Channel, error)
	UpdateRecovered(ctx context.Context, id string, meta model.RecoveredMetadata) error
}

type channelRepo struct {
	db database.DBTX
}

func NewChannelRepository(db database.DBTX) ChannelRepository {
	return &channelRepo{db: db}
}

func (r *channelRepo) FindByID(ctx context.Context, id string) (*model.Channel, error) {
	var channel model.Channel
	err := r.db.GetContext(ctx, &channel, `
		SELECT * FROM channels WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *channelRepo) List(ctx context.Context, query string, limit, offset int) ([]model.Channel, error) {
	limit, offset = clampPage(limit, offset)

	channels := []model.Channel{}
	err := r.db.SelectContext(ctx, &channels, `
		SELECT * FROM channels
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		ORDER BY title ASC
		LIMIT $2 OFFSET $3
	`, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *channelRepo) UpdateRecovered(ctx context.Context, id string, meta model.RecoveredMetadata) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE channels SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			recovered_at = $4,
			updated_at = $4
		WHERE id = $1
	`, id, meta.Title, meta.Description, time.Now())
	return err
}
