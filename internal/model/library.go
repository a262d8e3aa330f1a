package model

import "time"

type Channel struct {
	ID           string       `db:"id" json:"id"`
	YouTubeID    string       `db:"youtube_id" json:"youtubeId"`
	Title        string       `db:"title" json:"title"`
	Description  string       `db:"description" json:"description,omitempty"`
	Availability Availability `db:"availability" json:"availability"`
	VideoCount   int          `db:"video_count" json:"videoCount"`
	SyncedAt     *time.Time   `db:"synced_at" json:"syncedAt,omitempty"`
	RecoveredAt  *time.Time   `db:"recovered_at" json:"recoveredAt,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

type Video struct {
	ID            string       `db:"id" json:"id"`
	YouTubeID     string       `db:"youtube_id" json:"youtubeId"`
	ChannelID     *string      `db:"channel_id" json:"channelId,omitempty"`
	Title         string       `db:"title" json:"title"`
	Description   string       `db:"description" json:"description,omitempty"`
	PublishedAt   *time.Time   `db:"published_at" json:"publishedAt,omitempty"`
	DurationSecs  int          `db:"duration_secs" json:"durationSecs"`
	Availability  Availability `db:"availability" json:"availability"`
	HasTranscript bool         `db:"has_transcript" json:"hasTranscript"`
	RecoveredAt   *time.Time   `db:"recovered_at" json:"recoveredAt,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updatedAt"`
}

type Playlist struct {
	ID          string    `db:"id" json:"id"`
	YouTubeID   string    `db:"youtube_id" json:"youtubeId"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description,omitempty"`
	ItemCount   int       `db:"item_count" json:"itemCount"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type PlaylistItem struct {
	PlaylistID string `db:"playlist_id" json:"playlistId"`
	VideoID    string `db:"video_id" json:"videoId"`
	Position   int    `db:"position" json:"position"`
}

type Transcript struct {
	VideoID   string    `db:"video_id" json:"videoId"`
	Language  string    `db:"language" json:"language"`
	Content   string    `db:"content" json:"content"`
	Source    string    `db:"source" json:"source"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// RecoveredMetadata carries the fields written back into the library after a
// successful recovery. Only non-nil fields are applied.
type RecoveredMetadata struct {
	Title       *string
	Description *string
	PublishedAt *time.Time
}
