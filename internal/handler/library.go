package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ytvault/archive-server-go/internal/model"
	"github.com/ytvault/archive-server-go/internal/repository"
	"github.com/ytvault/archive-server-go/internal/service"
)

type LibraryHandler struct {
	libraryService *service.LibraryService
}

func NewLibraryHandler(libraryService *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

func (h *LibraryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/videos", h.ListVideos)
	r.Get("/videos/{videoID}", h.GetVideo)
	r.Get("/videos/{videoID}/transcript", h.GetTranscript)

	r.Get("/channels", h.ListChannels)
	r.Get("/channels/{channelID}", h.GetChannel)
	r.Get("/channels/{channelID}/videos", h.ListChannelVideos)

	r.Get("/playlists", h.ListPlaylists)
	r.Get("/playlists/{playlistID}", h.GetPlaylist)
	r.Get("/playlists/{playlistID}/items", h.ListPlaylistItems)

	return r
}

// GET /v1/videos?q=&availability=&limit=&offset=
func (h *LibraryHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	params := repository.ListVideosParams{
		Query:        r.URL.Query().Get("q"),
		Availability: model.Availability(r.URL.Query().Get("availability")),
		Limit:        limit,
		Offset:       offset,
	}

	videos, err := h.libraryService.ListVideos(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// GET /v1/videos/{videoID}
func (h *LibraryHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	video, err := h.libraryService.GetVideo(r.Context(), chi.URLParam(r, "videoID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

// GET /v1/videos/{videoID}/transcript
func (h *LibraryHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.libraryService.GetTranscript(r.Context(), chi.URLParam(r, "videoID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transcript)
}

// GET /v1/channels?q=&limit=&offset=
func (h *LibraryHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	channels, err := h.libraryService.ListChannels(r.Context(), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": channels})
}

// GET /v1/channels/{channelID}
func (h *LibraryHandler) GetChannel(w http.ResponseWriter, r *http.Request) {
	channel, err := h.libraryService.GetChannel(r.Context(), chi.URLParam(r, "channelID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channel)
}

// GET /v1/channels/{channelID}/videos
func (h *LibraryHandler) ListChannelVideos(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	videos, err := h.libraryService.ListChannelVideos(r.Context(), chi.URLParam(r, "channelID"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// GET /v1/playlists?q=&limit=&offset=
func (h *LibraryHandler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	playlists, err := h.libraryService.ListPlaylists(r.Context(), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

// GET /v1/playlists/{playlistID}
func (h *LibraryHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.libraryService.GetPlaylist(r.Context(), chi.URLParam(r, "playlistID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// GET /v1/playlists/{playlistID}/items
func (h *LibraryHandler) ListPlaylistItems(w http.ResponseWriter, r *http.Request) {
	videos, err := h.libraryService.ListPlaylistItems(r.Context(), chi.URLParam(r, "playlistID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}
