package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ytvault/archive-server-go/internal/database"
	"github.com/ytvault/archive-server-go/internal/model"
)

type PlaylistRepository interface {
	FindByID(ctx context.Context, id string) (*model.Playlist, error)
	List(ctx context.Context, query string, limit, offset int) ([]model.Playlist, error)
	Items(ctx context.Context, playlistID string) ([]model.Video, error)
}

type playlistRepo struct {
	db database.DBTX
}

func NewPlaylistRepository(db database.DBTX) PlaylistRepository {
	return &playlistRepo{db: db}
}

func (r *playlistRepo) FindByID(ctx context.Context, id string) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.GetContext(ctx, &playlist, `
		SELECT * FROM playlists WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

func (r *playlistRepo) List(ctx context.Context, query string, limit, offset int) ([]model.Playlist, error) {
	limit, offset = clampPage(limit, offset)

	playlists := []model.Playlist{}
	err := r.db.SelectContext(ctx, &playlists, `
		SELECT * FROM playlists
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		ORDER BY title ASC
		LIMIT $2 OFFSET $3
	`, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return playlists, nil
}

func (r *playlistRepo) Items(ctx context.Context, playlistID string) ([]model.Video, error) {
	videos := []model.Video{}
	err := r.db.SelectContext(ctx, &videos, `
		SELECT v.* FROM videos v
		JOIN playlist_items pi ON pi.video_id = v.id
		WHERE pi.playlist_id = $1
		ORDER BY pi.position ASC
	`, playlistID)
	if err != nil {
		return nil, err
	}
	return videos, nil
}
