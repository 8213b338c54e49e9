package domain

import "time"

// MediaType classifies an uploaded asset.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// Valid reports whether t is a media type the server accepts.
func (t MediaType) Valid() bool {
	switch t {
	case MediaImage, MediaVideo, MediaAudio:
		return true
	}
	return false
}

// Media is an uploaded asset record. The binary itself is never updated in
// place; only the metadata is editable.
type Media struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        MediaType `json:"type"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	Uploader    string    `json:"uploader"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MediaUpload carries the metadata of a new upload; the asset bytes travel
// as the multipart "file" part.
type MediaUpload struct {
	Name        string
	Description string
	Type        MediaType
}

// MediaUpdate carries the editable metadata fields of an existing asset.
type MediaUpdate struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}
