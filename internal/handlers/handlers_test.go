package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fathima-sithara/cloud-media-platform/internal/auth"
	"github.com/fathima-sithara/cloud-media-platform/internal/models"
	service "github.com/fathima-sithara/cloud-media-platform/internal/services"
	"github.com/fathima-sithara/cloud-media-platform/internal/testsupport"
)

type testEnv struct {
	app   *fiber.App
	store *testsupport.MemObjectStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	store := testsupport.NewMemObjectStore(true)
	log := zap.NewNop().Sugar()

	authSvc := service.NewAuthService(testsupport.NewMemUserRepo(), tokens)
	mediaSvc := service.NewMediaService(testsupport.NewMemMediaRepo(), store, nil, log, service.MediaOptions{
		MaxUploadBytes:  1024 * 1024,
		ImageTypes:      []string{"image/jpeg", "image/png"},
		VideoTypes:      []string{"video/mp4"},
		DefaultPageSize: 20,
		MaxPageSize:     100,
		PresignTTL:      time.Hour,
	})

	app := fiber.New()
	RegisterRoutes(app, NewHandler(authSvc, mediaSvc, log), tokens)
	return &testEnv{app: app, store: store}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func jsonReq(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (e *testEnv) register(t *testing.T, username, email string) (token, userID string) {
	t.Helper()
	resp := e.do(t, jsonReq(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": username, "email": email, "password": "pw123456",
	}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var res struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(t, resp, &res)
	require.NotEmpty(t, res.Token)
	return res.Token, res.User.ID
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func multipartUpload(t *testing.T, filename, contentType string, data []byte, description, tags string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	if description != "" {
		require.NoError(t, w.WriteField("description", description))
	}
	if tags != "" {
		require.NoError(t, w.WriteField("tags", tags))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/media", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterConflict(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "john", "john@x.com")

	resp := e.do(t, jsonReq(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "johnny", "email": "john@x.com", "password": "pw123456",
	}))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "CONFLICT", body.Error.Code)
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, jsonReq(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "jo", "email": "john@x.com", "password": "pw123456",
	}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "john", "john@x.com")

	resp := e.do(t, jsonReq(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email": "john@x.com", "password": "pw123456",
	}))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, jsonReq(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email": "john@x.com", "password": "wrong",
	}))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMediaRequiresAuth(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, httptest.NewRequest(http.MethodGet, "/api/media", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/media", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	resp = e.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadListSearchDeleteFlow(t *testing.T) {
	e := newTestEnv(t)
	token, userID := e.register(t, "john", "john@x.com")

	// upload a PNG with a description and tags
	resp := e.do(t, withToken(multipartUpload(t, "beach.png", "image/png", smallPNG(t), "beach", `["summer","sea"]`), token))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var media models.Media
	decode(t, resp, &media)
	assert.Equal(t, userID, media.UserID)
	assert.NotEmpty(t, media.ThumbnailURL)
	assert.Equal(t, []string{"summer", "sea"}, media.Tags)

	// listed
	resp = e.do(t, withToken(httptest.NewRequest(http.MethodGet, "/api/media?page=1&pageSize=20", nil), token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page models.MediaPage
	decode(t, resp, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, media.ID, page.Items[0].ID)

	// searchable
	resp = e.do(t, withToken(httptest.NewRequest(http.MethodGet, "/api/media/search?query=beach", nil), token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &page)
	require.Len(t, page.Items, 1)

	// fetch by id
	resp = e.do(t, withToken(httptest.NewRequest(http.MethodGet, "/api/media/"+media.ID, nil), token))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// delete, then gone
	resp = e.do(t, withToken(httptest.NewRequest(http.MethodDelete, "/api/media/"+media.ID, nil), token))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, e.store.Objects, "blobs must be removed with the record")

	resp = e.do(t, withToken(httptest.NewRequest(http.MethodGet, "/api/media/"+media.ID, nil), token))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadRejections(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register(t, "john", "john@x.com")

	resp := e.do(t, withToken(multipartUpload(t, "notes.txt", "text/plain", []byte("hi"), "", ""), token))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp = e.do(t, withToken(multipartUpload(t, "big.mp4", "video/mp4", make([]byte, 2*1024*1024), "", ""), token))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp = e.do(t, withToken(multipartUpload(t, "beach.png", "image/png", smallPNG(t), "", "not-json"), token))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateMetadata(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register(t, "john", "john@x.com")

	resp := e.do(t, withToken(multipartUpload(t, "beach.png", "image/png", smallPNG(t), "old", `["a"]`), token))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var media models.Media
	decode(t, resp, &media)

	resp = e.do(t, withToken(jsonReq(t, http.MethodPut, "/api/media/"+media.ID, fiber.Map{
		"description": "new",
	}), token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Media
	decode(t, resp, &updated)
	assert.Equal(t, "new", updated.Description)
	assert.Equal(t, []string{"a"}, updated.Tags)
}

func TestForeignMediaIsNotFound(t *testing.T) {
	e := newTestEnv(t)
	ownerToken, _ := e.register(t, "john", "john@x.com")
	otherToken, _ := e.register(t, "jane", "jane@x.com")

	resp := e.do(t, withToken(multipartUpload(t, "beach.png", "image/png", smallPNG(t), "", ""), ownerToken))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var media models.Media
	decode(t, resp, &media)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/media/"+media.ID, nil),
		httptest.NewRequest(http.MethodDelete, "/api/media/"+media.ID, nil),
	} {
		resp := e.do(t, withToken(req, otherToken))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
}

func TestDownloadURL(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register(t, "john", "john@x.com")

	resp := e.do(t, withToken(multipartUpload(t, "beach.png", "image/png", smallPNG(t), "", ""), token))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var media models.Media
	decode(t, resp, &media)

	resp = e.do(t, withToken(httptest.NewRequest(http.MethodGet, "/api/media/"+media.ID+"/url", nil), token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		URL string `json:"url"`
	}
	decode(t, resp, &body)
	assert.Equal(t, media.BlobURL, body.URL)
}

