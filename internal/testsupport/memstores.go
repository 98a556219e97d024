// Package testsupport provides in-memory stand-ins for the Mongo
// repositories, the object store and the URL cache. Test-only.
package testsupport

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/fathima-sithara/cloud-media-platform/internal/apperr"
	"github.com/fathima-sithara/cloud-media-platform/internal/models"
)

type MemUserRepo struct {
	mu    sync.Mutex
	Users map[string]*models.User
}

func NewMemUserRepo() *MemUserRepo {
	return &MemUserRepo{Users: map[string]*models.User{}}
}

func (r *MemUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Users {
		if e.Email == u.Email || e.Username == u.Username {
			return apperr.ErrConflict
		}
	}
	cp := *u
	r.Users[u.ID] = &cp
	return nil
}

func (r *MemUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.Users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperr.ErrNotFound
}

func (r *MemUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Email == email })
}

func (r *MemUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Username == username })
}

func (r *MemUserRepo) findBy(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

type MemMediaRepo struct {
	mu    sync.Mutex
	Items map[string]*models.Media

	LastSkip  int
	LastLimit int
}

func NewMemMediaRepo() *MemMediaRepo {
	return &MemMediaRepo{Items: map[string]*models.Media{}}
}

func (r *MemMediaRepo) Insert(_ context.Context, m *models.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.Items[m.ID] = &cp
	return nil
}

func (r *MemMediaRepo) FindByID(_ context.Context, userID, mediaID string) (*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.Items[mediaID]
	if !ok || m.UserID != userID {
		return nil, apperr.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *MemMediaRepo) ListByUser(_ context.Context, userID, mediaType string, skip, limit int) ([]*models.Media, int64, error) {
	r.mu.Lock()
	r.LastSkip, r.LastLimit = skip, limit
	r.mu.Unlock()
	return r.page(func(m *models.Media) bool {
		return m.UserID == userID && (mediaType == "" || m.MediaType == mediaType)
	}, skip, limit)
}

func (r *MemMediaRepo) Search(_ context.Context, userID, query string, skip, limit int) ([]*models.Media, int64, error) {
	q := strings.ToLower(query)
	return r.page(func(m *models.Media) bool {
		if m.UserID != userID {
			return false
		}
		if strings.Contains(strings.ToLower(m.OriginalFileName), q) ||
			strings.Contains(strings.ToLower(m.Description), q) {
			return true
		}
		for _, tag := range m.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	}, skip, limit)
}

func (r *MemMediaRepo) page(match func(*models.Media) bool, skip, limit int) ([]*models.Media, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.Media
	for _, m := range r.Items {
		if match(m) {
			cp := *m
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UploadedAt.After(all[j].UploadedAt) })
	total := int64(len(all))
	if skip >= len(all) {
		return nil, total, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *MemMediaRepo) Update(_ context.Context, userID, mediaID string, set bson.M) (*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.Items[mediaID]
	if !ok || m.UserID != userID {
		return nil, apperr.ErrNotFound
	}
	if v, ok := set["description"]; ok {
		m.Description = v.(string)
	}
	if v, ok := set["tags"]; ok {
		m.Tags = v.([]string)
	}
	m.UpdatedAt = time.Now().UTC()
	cp := *m
	return &cp, nil
}

func (r *MemMediaRepo) Delete(_ context.Context, userID, mediaID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.Items[mediaID]
	if !ok || m.UserID != userID {
		return apperr.ErrNotFound
	}
	delete(r.Items, mediaID)
	return nil
}

type MemObjectStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Public    bool
	UploadErr error
	DeleteErr error
}

func NewMemObjectStore(public bool) *MemObjectStore {
	return &MemObjectStore{Objects: map[string][]byte{}, Public: public}
}

func (s *MemObjectStore) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UploadErr != nil {
		return "", s.UploadErr
	}
	s.Objects[key] = data
	if s.Public {
		return "https://blobs.test/" + key, nil
	}
	return "", nil
}

func (s *MemObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.Objects[key]; !ok {
		return errors.New("no such key")
	}
	delete(s.Objects, key)
	return nil
}

func (s *MemObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://blobs.test/presigned/" + key, nil
}

type MemCache struct {
	mu     sync.Mutex
	Values map[string]string
	Sets   int
	Gets   int
}

func NewMemCache() *MemCache { return &MemCache{Values: map[string]string{}} }

func (c *MemCache) Set(_ context.Context, key, val string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sets++
	c.Values[key] = val
	return nil
}

func (c *MemCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Gets++
	if v, ok := c.Values[key]; ok {
		return v, nil
	}
	return "", errors.New("cache miss")
}
