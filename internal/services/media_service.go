package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/fathima-sithara/cloud-media-platform/internal/apperr"
	"github.com/fathima-sithara/cloud-media-platform/internal/models"
	"github.com/fathima-sithara/cloud-media-platform/internal/repository"
)

const urlCachePrefix = "media_url:"

// ObjectStore is the blob backend. Upload returns a public URL or "" when
// the bucket is private.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Cache holds presigned URLs between requests. May be nil.
type Cache interface {
	Set(ctx context.Context, key, val string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// MediaOptions carries the upload/pagination limits from config.
type MediaOptions struct {
	MaxUploadBytes  int64
	ImageTypes      []string
	VideoTypes      []string
	DefaultPageSize int
	MaxPageSize     int
	PresignTTL      time.Duration
}

type MediaService struct {
	repo  repository.MediaRepository
	store ObjectStore
	cache Cache
	log   *zap.SugaredLogger
	opts  MediaOptions
}

func NewMediaService(repo repository.MediaRepository, store ObjectStore, cache Cache, log *zap.SugaredLogger, opts MediaOptions) *MediaService {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 20
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	return &MediaService{repo: repo, store: store, cache: cache, log: log, opts: opts}
}

type UploadInput struct {
	FileName    string
	ContentType string
	Data        []byte
	Description string
	Tags        []string
}

type UpdateInput struct {
	Description *string
	Tags        *[]string
}

// Upload validates the file, stores the blob (plus a thumbnail for images)
// and writes the metadata document. Thumbnail failures are logged and the
// upload proceeds without one.
func (s *MediaService) Upload(ctx context.Context, userID string, in UploadInput) (*models.Media, error) {
	mediaType, err := s.classify(in.ContentType)
	if err != nil {
		return nil, err
	}
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", apperr.ErrValidation)
	}
	if int64(len(in.Data)) > s.opts.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", apperr.ErrPayloadTooLarge, s.opts.MaxUploadBytes)
	}

	// BlobURL stays empty for private buckets; DownloadURL presigns on
	// demand so links never outlive their TTL inside the document.
	key := blobKey(userID, in.FileName)
	blobURL, err := s.store.Upload(ctx, key, in.ContentType, in.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: upload blob: %v", apperr.ErrExternal, err)
	}

	thumbnailURL := ""
	if mediaType == models.MediaTypeImage {
		thumbnailURL = s.uploadThumbnail(ctx, key, in.Data)
	}

	media := &models.Media{
		ID:               uuid.NewString(),
		UserID:           userID,
		FileName:         key,
		OriginalFileName: in.FileName,
		MediaType:        mediaType,
		FileSize:         int64(len(in.Data)),
		MimeType:         in.ContentType,
		BlobURL:          blobURL,
		ThumbnailURL:     thumbnailURL,
		Description:      in.Description,
		Tags:             in.Tags,
		UploadedAt:       time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, media); err != nil {
		return nil, fmt.Errorf("%w: insert media: %v", apperr.ErrExternal, err)
	}
	return media, nil
}

func (s *MediaService) List(ctx context.Context, userID string, page, pageSize int, mediaType string) (*models.MediaPage, error) {
	if mediaType != "" && mediaType != models.MediaTypeImage && mediaType != models.MediaTypeVideo {
		return nil, fmt.Errorf("%w: mediaType must be image or video", apperr.ErrValidation)
	}
	page, pageSize = s.clamp(page, pageSize)
	items, total, err := s.repo.ListByUser(ctx, userID, mediaType, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: list media: %v", apperr.ErrExternal, err)
	}
	return &models.MediaPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *MediaService) Get(ctx context.Context, userID, mediaID string) (*models.Media, error) {
	m, err := s.repo.FindByID(ctx, userID, mediaID)
	if err != nil {
		return nil, wrapLookup(err)
	}
	return m, nil
}

func (s *MediaService) Update(ctx context.Context, userID, mediaID string, in UpdateInput) (*models.Media, error) {
	set := bson.M{}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Tags != nil {
		set["tags"] = *in.Tags
	}
	m, err := s.repo.Update(ctx, userID, mediaID, set)
	if err != nil {
		return nil, wrapLookup(err)
	}
	return m, nil
}

// Delete removes the blob, its thumbnail and the metadata record. A failed
// blob delete is logged and the metadata is removed anyway; the orphaned
// blob is an accepted inconsistency window.
func (s *MediaService) Delete(ctx context.Context, userID, mediaID string) error {
	m, err := s.repo.FindByID(ctx, userID, mediaID)
	if err != nil {
		return wrapLookup(err)
	}

	if err := s.store.Delete(ctx, m.FileName); err != nil {
		s.log.Warnw("delete blob failed", "key", m.FileName, "err", err)
	}
	// ThumbnailURL is empty for private buckets, so go by media type.
	if m.MediaType == models.MediaTypeImage {
		if err := s.store.Delete(ctx, thumbKey(m.FileName)); err != nil {
			s.log.Warnw("delete thumbnail failed", "key", thumbKey(m.FileName), "err", err)
		}
	}

	if err := s.repo.Delete(ctx, userID, mediaID); err != nil {
		return wrapLookup(err)
	}
	return nil
}

func (s *MediaService) Search(ctx context.Context, userID, query string, page, pageSize int) (*models.MediaPage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", apperr.ErrValidation)
	}
	page, pageSize = s.clamp(page, pageSize)
	items, total, err := s.repo.Search(ctx, userID, query, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: search media: %v", apperr.ErrExternal, err)
	}
	return &models.MediaPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// DownloadURL returns a retrievable URL for the original blob. Private
// buckets get a presigned URL, cached for the presign TTL.
func (s *MediaService) DownloadURL(ctx context.Context, userID, mediaID string) (string, error) {
	m, err := s.repo.FindByID(ctx, userID, mediaID)
	if err != nil {
		return "", wrapLookup(err)
	}
	if m.BlobURL != "" {
		return m.BlobURL, nil
	}

	cacheKey := urlCachePrefix + m.FileName
	if s.cache != nil {
		if url, err := s.cache.Get(ctx, cacheKey); err == nil && url != "" {
			return url, nil
		}
	}
	url, err := s.store.PresignGet(ctx, m.FileName, s.opts.PresignTTL)
	if err != nil {
		return "", fmt.Errorf("%w: presign url: %v", apperr.ErrExternal, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, url, s.opts.PresignTTL); err != nil {
			s.log.Debugw("cache presigned url failed", "key", cacheKey, "err", err)
		}
	}
	return url, nil
}

func (s *MediaService) uploadThumbnail(ctx context.Context, key string, data []byte) string {
	thumb, err := generateThumbnail(data)
	if err != nil {
		s.log.Warnw("thumbnail generation failed", "key", key, "err", err)
		return ""
	}
	tk := thumbKey(key)
	url, err := s.store.Upload(ctx, tk, "image/jpeg", thumb)
	if err != nil {
		s.log.Warnw("thumbnail upload failed", "key", tk, "err", err)
		return ""
	}
	// "" for private buckets; the blob is still there
	return url
}

func (s *MediaService) classify(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, t := range s.opts.ImageTypes {
		if ct == t {
			return models.MediaTypeImage, nil
		}
	}
	for _, t := range s.opts.VideoTypes {
		if ct == t {
			return models.MediaTypeVideo, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not allowed", apperr.ErrUnsupportedMediaType, contentType)
}

func (s *MediaService) clamp(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.opts.DefaultPageSize
	}
	if pageSize > s.opts.MaxPageSize {
		pageSize = s.opts.MaxPageSize
	}
	return page, pageSize
}

func wrapLookup(err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("%w: media not found", apperr.ErrNotFound)
	}
	return fmt.Errorf("%w: %v", apperr.ErrExternal, err)
}

func blobKey(userID, filename string) string {
	ext := path.Ext(filename)
	stamp := time.Now().UTC().Format("20060102150405")
	return fmt.Sprintf("%s/%s_%s%s", userID, stamp, uuid.NewString()[:8], ext)
}

func thumbKey(key string) string { return key + "_thumb.jpg" }
