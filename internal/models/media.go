package models

import "time"

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Media is the metadata document for one uploaded object. The blob itself
// lives in object storage under FileName; UserID is the partition/lookup key.
type Media struct {
	ID               string    `bson:"_id" json:"id"`
	UserID           string    `bson:"user_id" json:"userId"`
	FileName         string    `bson:"file_name" json:"fileName"`
	OriginalFileName string    `bson:"original_file_name" json:"originalFileName"`
	MediaType        string    `bson:"media_type" json:"mediaType"`
	FileSize         int64     `bson:"file_size" json:"fileSize"`
	MimeType         string    `bson:"mime_type" json:"mimeType"`
	BlobURL          string    `bson:"blob_url" json:"blobUrl"`
	ThumbnailURL     string    `bson:"thumbnail_url,omitempty" json:"thumbnailUrl,omitempty"`
	Description      string    `bson:"description,omitempty" json:"description,omitempty"`
	Tags             []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	UploadedAt       time.Time `bson:"uploaded_at" json:"uploadedAt"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updatedAt"`
}

// MediaPage is one page of a user's media listing.
type MediaPage struct {
	Items    []*Media `json:"items"`
	Total    int64    `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}
