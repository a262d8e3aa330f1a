package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ytvault/archive-server-go/internal/database"
	"github.com/ytvault/archive-server-go/internal/model"
)

type ListVideosParams struct {
	Query        string
	Availability model.Availability
	Limit        int
	Offset       int
}

type VideoRepository interface {
	FindByID(ctx context.Context, id string) (*model.Video, error)
	List(ctx context.Context, params ListVideosParams) ([]model.Video, error)
	ListByChannel(ctx context.Context, channelID string, limit, offset int) ([]model.Video, error)
	UpdateRecovered(ctx context.Context, id string, meta model.RecoveredMetadata) error
	FindTranscript(ctx context.Context, videoID string) (*model.Transcript, error)
}

type videoRepo struct {
	db database.DBTX
}

func NewVideoRepository(db database.DBTX) VideoRepository {
	return &videoRepo{db: db}
}

func (r *videoRepo) FindByID(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	err := r.db.GetContext(ctx, &video, `
		SELECT * FROM videos WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepo) List(ctx context.Context, params ListVideosParams) ([]model.Video, error) {
	limit, offset := clampPage(params.Limit, params.Offset)

	query := `
		SELECT * FROM videos
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		AND ($2 = '' OR availability = $2)
		ORDER BY published_at DESC NULLS LAST, created_at DESC
		LIMIT $3 OFFSET $4
	`
	videos := []model.Video{}
	err := r.db.SelectContext(ctx, &videos, query, params.Query, string(params.Availability), limit, offset)
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) ListByChannel(ctx context.Context, channelID string, limit, offset int) ([]model.Video, error) {
	limit, offset = clampPage(limit, offset)

	videos := []model.Video{}
	err := r.db.SelectContext(ctx, &videos, `
		SELECT * FROM videos
		WHERE channel_id = $1
		ORDER BY published_at DESC NULLS LAST
		LIMIT $2 OFFSET $3
	`, channelID, limit, offset)
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) UpdateRecovered(ctx context.Context, id string, meta model.RecoveredMetadata) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE videos SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			published_at = COALESCE($4, published_at),
			recovered_at = $5,
			updated_at = $5
		WHERE id = $1
	`, id, meta.Title, meta.Description, meta.PublishedAt, time.Now())
	return err
}

func (r *videoRepo) FindTranscript(ctx context.Context, videoID string) (*model.Transcript, error) {
	var transcript model.Transcript
	err := r.db.GetContext(ctx, &transcript, `
		SELECT * FROM transcripts WHERE video_id = $1
	`, videoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &transcript, nil
}
