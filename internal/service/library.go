package service

import (
	"context"

	apperrors "github.com/ytvault/archive-server-go/internal/errors"
	"github.com/ytvault/archive-server-go/internal/model"
	"github.com/ytvault/archive-server-go/internal/repository"
)

// LibraryService serves browse, search, and transcript reads over the synced
// archive.
type LibraryService struct {
	videoRepo    repository.VideoRepository
	channelRepo  repository.ChannelRepository
	playlistRepo repository.PlaylistRepository
}

func NewLibraryService(
	videoRepo repository.VideoRepository,
	channelRepo repository.ChannelRepository,
	playlistRepo repository.PlaylistRepository,
) *LibraryService {
	return &LibraryService{
		videoRepo:    videoRepo,
		channelRepo:  channelRepo,
		playlistRepo: playlistRepo,
	}
}

func (s *LibraryService) ListVideos(ctx context.Context, params repository.ListVideosParams) ([]model.Video, error) {
	videos, err := s.videoRepo.List(ctx, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return videos, nil
}

func (s *LibraryService) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	video, err := s.videoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if video == nil {
		return nil, apperrors.NotFound("video")
	}
	return video, nil
}

func (s *LibraryService) GetTranscript(ctx context.Context, videoID string) (*model.Transcript, error) {
	video, err := s.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if video == nil {
		return nil, apperrors.NotFound("video")
	}

	transcript, err := s.videoRepo.FindTranscript(ctx, videoID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if transcript == nil {
		return nil, apperrors.NotFound("transcript")
	}
	return transcript, nil
}

func (s *LibraryService) ListChannels(ctx context.Context, query string, limit, offset int) ([]model.Channel, error) {
	channels, err := s.channelRepo.List(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return channels, nil
}

func (s *LibraryService) GetChannel(ctx context.Context, id string) (*model.Channel, error) {
	channel, err := s.channelRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if channel == nil {
		return nil, apperrors.NotFound("channel")
	}
	return channel, nil
}

func (s *LibraryService) ListChannelVideos(ctx context.Context, channelID string, limit, offset int) ([]model.Video, error) {
	channel, err := s.channelRepo.FindByID(ctx, channelID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if channel == nil {
		return nil, apperrors.NotFound("channel")
	}

	videos, err := s.videoRepo.ListByChannel(ctx, channelID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return videos, nil
}

func (s *LibraryService) ListPlaylists(ctx context.Context, query string, limit, offset int) ([]model.Playlist, error) {
	playlists, err := s.playlistRepo.List(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return playlists, nil
}

func (s *LibraryService) GetPlaylist(ctx context.Context, id string) (*model.Playlist, error) {
	playlist, err := s.playlistRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if playlist == nil {
		return nil, apperrors.NotFound("playlist")
	}
	return playlist, nil
}

func (s *LibraryService) ListPlaylistItems(ctx context.Context, playlistID string) ([]model.Video, error) {
	playlist, err := s.playlistRepo.FindByID(ctx, playlistID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if playlist == nil {
		return nil, apperrors.NotFound("playlist")
	}

	videos, err := s.playlistRepo.Items(ctx, playlistID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return videos, nil
}
