package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/app/models/dto"
	"github.com/linuxfest/backend/internal/app/repositories/memory"
	"github.com/linuxfest/backend/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testApp struct {
	router http.Handler
	deps   *Dependencies
	root   string
}

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Server.BasePath = "/api/v1"
	cfg.Server.MaxBodySize = 16 << 20
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.Issuer = "linuxfest"
	cfg.Storage.Root = t.TempDir()
	cfg.Storage.SiteVersion = "v1"
	cfg.Storage.MaxUploadSize = 5 << 20
	cfg.Workshops.MissingTeacherPolicy = config.MissingTeacherReject
	return cfg
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := testConfig(t)

	deps, err := BuildDependencies(cfg, MemoryStores(memory.NewStore()), nil, "test", zerolog.Nop())
	require.NoError(t, err)
	router, err := SetupRouter(cfg, deps, zerolog.Nop())
	require.NoError(t, err)

	return &testApp{router: router, deps: deps, root: cfg.Storage.Root}
}

func (a *testApp) do(t *testing.T, method, path, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) json(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return a.do(t, method, path, token, "application/json", body)
}

func (a *testApp) adminToken(t *testing.T, username string, role models.Role) string {
	t.Helper()
	ctx := context.Background()
	_, err := a.deps.AuthService.CreateAdmin(ctx, username, "correct-horse", role)
	require.NoError(t, err)
	token, _, err := a.deps.AuthService.IssueAdminToken(ctx, username)
	require.NoError(t, err)
	return token
}

func (a *testApp) userToken(t *testing.T, email string) (string, int64) {
	t.Helper()
	ctx := context.Background()
	rec := a.json(t, http.MethodPost, "/api/v1/users", a.adminToken(t, "creator-"+email, models.RoleSuperAdmin), map[string]string{
		"firstName": "Sara",
		"lastName":  "Ahmadi",
		"email":     email,
		"password":  "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var user dto.UserResponse
	decodeData(t, rec, &user)

	token, _, err := a.deps.AuthService.IssueUserToken(ctx, email)
	require.NoError(t, err)
	return token, user.ID
}

func (a *testApp) countFiles(t *testing.T) int {
	t.Helper()
	n := 0
	require.NoError(t, filepath.Walk(a.root, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			n++
		}
		return err
	}))
	return n
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	env := decode(t, rec)
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: 90, B: uint8(y * 8), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type formFile struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, field string, files ...formFile) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func createTeacher(t *testing.T, a *testApp, token, name string) dto.TeacherResponse {
	t.Helper()
	rec := a.json(t, http.MethodPost, "/api/v1/teachers", token, map[string]string{"fullName": name, "description": "Kernel hacker"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var teacher dto.TeacherResponse
	decodeData(t, rec, &teacher)
	return teacher
}

func createWorkshop(t *testing.T, a *testApp, token string, payload map[string]interface{}) dto.WorkshopResponse {
	t.Helper()
	rec := a.json(t, http.MethodPost, "/api/v1/workshops", token, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var workshop dto.WorkshopResponse
	decodeData(t, rec, &workshop)
	return workshop
}

func TestTeacherSnapshotSurvivesRename(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)

	teacher := createTeacher(t, app, token, "Ali Rezaei")
	workshop := createWorkshop(t, app, token, map[string]interface{}{
		"title":     "Bash Scripting",
		"capacity":  20,
		"isRegOpen": true,
		"teachers":  []map[string]int64{{"id": teacher.ID}},
		"times": []map[string]string{
			{"start": "2026-11-01T09:00:00Z", "end": "2026-11-01T12:00:00Z"},
		},
	})
	require.Len(t, workshop.Teachers, 1)
	assert.Equal(t, "Ali Rezaei", workshop.Teachers[0].Name)

	rec := app.json(t, http.MethodPatch, fmt.Sprintf("/api/v1/teachers/manage/%d", teacher.ID), token,
		map[string]string{"fullName": "Ali Rezaee"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.json(t, http.MethodGet, fmt.Sprintf("/api/v1/workshops/%d", workshop.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var details dto.WorkshopWithTeachersResponse
	decodeData(t, rec, &details)

	require.Len(t, details.Workshop.Teachers, 1)
	assert.Equal(t, teacher.ID, details.Workshop.Teachers[0].TeacherID)
	assert.Equal(t, "Ali Rezaei", details.Workshop.Teachers[0].Name)
	require.Len(t, details.Teachers, 1)
	assert.Equal(t, "Ali Rezaee", details.Teachers[0].FullName)
	require.Len(t, details.Workshop.Times, 1)

	rec = app.json(t, http.MethodGet, "/api/v1/teachers", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []dto.TeacherWithWorkshopsResponse
	decodeData(t, rec, &listed)
	require.Len(t, listed, 1)
	require.Len(t, listed[0].Workshops, 1)
	assert.Equal(t, workshop.ID, listed[0].Workshops[0].ID)
}

func TestCreateWorkshopUnknownTeacher(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)

	rec := app.json(t, http.MethodPost, "/api/v1/workshops", token, map[string]interface{}{
		"title":    "Containers",
		"teachers": []map[string]int64{{"id": 77}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, decode(t, rec).Error.Code)

	rec = app.json(t, http.MethodGet, "/api/v1/workshops", "", nil)
	var workshops []dto.WorkshopResponse
	decodeData(t, rec, &workshops)
	assert.Empty(t, workshops)
}

func TestPatchRejectsUnknownKeys(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)
	workshop := createWorkshop(t, app, token, map[string]interface{}{"title": "Networking 101", "capacity": 5})
	path := fmt.Sprintf("/api/v1/workshops/manage/%d", workshop.ID)

	rec := app.json(t, http.MethodPatch, path, token, map[string]interface{}{"title": "Hacked", "participants": []int{1}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, dto.ErrorCodeInvalidUpdates, env.Error.Code)

	rec = app.json(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details dto.ManagedWorkshopDetailResponse
	decodeData(t, rec, &details)
	assert.Equal(t, "Networking 101", details.Workshop.Title)
	assert.Equal(t, 5, details.Workshop.Capacity)

	rec = app.do(t, http.MethodPatch, path, token, "application/json", bytes.NewBufferString(`["title"]`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.json(t, http.MethodPatch, path, token, map[string]interface{}{"capacity": 8, "isRegOpen": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated dto.WorkshopResponse
	decodeData(t, rec, &updated)
	assert.Equal(t, 8, updated.Capacity)
	assert.True(t, updated.IsRegOpen)
	assert.Equal(t, "Networking 101", updated.Title)
}

func TestCreateValidation(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"teacher name with digits", "/api/v1/teachers", `{"fullName":"R2D2"}`},
		{"teacher without name", "/api/v1/teachers", `{"description":"x"}`},
		{"workshop without title", "/api/v1/workshops", `{"capacity":3}`},
		{"negative capacity", "/api/v1/workshops", `{"title":"x","capacity":-1}`},
		{"session ends before start", "/api/v1/workshops",
			`{"title":"x","times":[{"start":"2026-11-01T12:00:00Z","end":"2026-11-01T09:00:00Z"}]}`},
		{"user bad email", "/api/v1/users", `{"firstName":"Sara","email":"nope","password":"s3cret-pass"}`},
		{"malformed json", "/api/v1/teachers", `{"fullName":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, tt.path, token, "application/json", bytes.NewBufferString(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.False(t, decode(t, rec).Success)
		})
	}
}

func TestDuplicateTeacherConflict(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)
	createTeacher(t, app, token, "Ali Rezaei")

	rec := app.json(t, http.MethodPost, "/api/v1/teachers", token, map[string]string{"fullName": "Ali Rezaei"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, dto.ErrorCodeResourceAlreadyExists, decode(t, rec).Error.Code)
}

func TestAuthentication(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t, "root", models.RoleSuperAdmin)
	userToken, _ := app.userToken(t, "sara@example.com")

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"no token", "/api/v1/teachers", "", http.StatusUnauthorized},
		{"garbage token", "/api/v1/teachers", "not-a-jwt", http.StatusUnauthorized},
		{"participant on admin route", "/api/v1/teachers", userToken, http.StatusUnauthorized},
		{"admin on participant route", "/api/v1/users/me", adminToken, http.StatusUnauthorized},
		{"admin", "/api/v1/teachers", adminToken, http.StatusOK},
		{"participant", "/api/v1/users/me", userToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.json(t, http.MethodGet, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want == http.StatusUnauthorized {
				env := decode(t, rec)
				assert.Equal(t, "Authentication required", env.Error.Message)
			}
		})
	}
}

func TestRevokedTokenIsRejected(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)

	require.Equal(t, http.StatusOK, app.json(t, http.MethodGet, "/api/v1/teachers", token, nil).Code)
	require.NoError(t, app.deps.AuthService.RevokeToken(context.Background(), token))
	assert.Equal(t, http.StatusUnauthorized, app.json(t, http.MethodGet, "/api/v1/teachers", token, nil).Code)
}

func TestRolePermissions(t *testing.T) {
	app := newTestApp(t)
	root := app.adminToken(t, "root", models.RoleSuperAdmin)
	reporter := app.adminToken(t, "auditor", models.RoleReporter)
	workshopAdmin := app.adminToken(t, "organizer", models.RoleWorkshopAdmin)
	teacher := createTeacher(t, app, root, "Ali Rezaei")

	rec := app.json(t, http.MethodPost, "/api/v1/teachers", reporter, map[string]string{"fullName": "Maryam Karimi"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decode(t, rec).Error.Code)

	rec = app.json(t, http.MethodDelete, fmt.Sprintf("/api/v1/teachers/manage/%d", teacher.ID), workshopAdmin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, http.StatusOK, app.json(t, http.MethodGet, "/api/v1/teachers", reporter, nil).Code)
	assert.Equal(t, http.StatusCreated, app.json(t, http.MethodPost, "/api/v1/workshops", workshopAdmin,
		map[string]interface{}{"title": "Vim"}).Code)

	// the denied requests changed nothing
	rec = app.json(t, http.MethodGet, "/api/v1/teachers", root, nil)
	var listed []dto.TeacherWithWorkshopsResponse
	decodeData(t, rec, &listed)
	assert.Len(t, listed, 1)
}

func TestWorkshopPictureLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)
	workshop := createWorkshop(t, app, token, map[string]interface{}{"title": "GIMP"})
	picPath := fmt.Sprintf("/api/v1/workshops/pic/%d", workshop.ID)

	rec := app.do(t, http.MethodGet, picPath, "", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, decode(t, rec).Error.Code)

	body, contentType := multipartBody(t, "mainPic", formFile{"poster.png", pngBytes(t)})
	rec = app.do(t, http.MethodPost, picPath, token, contentType, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated dto.WorkshopResponse
	decodeData(t, rec, &updated)
	assert.Equal(t, picPath, updated.PicURL)

	rec = app.do(t, http.MethodGet, updated.PicURL, "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err := png.Decode(rec.Body)
	require.NoError(t, err)

	rec = app.do(t, http.MethodDelete, picPath, token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	updated = dto.WorkshopResponse{}
	decodeData(t, rec, &updated)
	assert.Empty(t, updated.PicURL)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, picPath, "", "", nil).Code)
	assert.Zero(t, app.countFiles(t))
}

func TestUploadRejectsNonImages(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)
	workshop := createWorkshop(t, app, token, map[string]interface{}{"title": "GIMP"})

	tests := []struct {
		name  string
		path  string
		field string
		files []formFile
	}{
		{"text file", fmt.Sprintf("/api/v1/workshops/pic/%d", workshop.ID), "mainPic",
			[]formFile{{"notes.txt", []byte("hello")}}},
		{"text disguised as png", fmt.Sprintf("/api/v1/workshops/pic/%d", workshop.ID), "mainPic",
			[]formFile{{"fake.png", []byte("definitely not a png")}}},
		{"album batch with one bad file", fmt.Sprintf("/api/v1/workshops/pic/album/%d", workshop.ID), "pictures",
			[]formFile{{"good.png", pngBytes(t)}, {"bad.exe", []byte("MZ")}}},
		{"wrong field", fmt.Sprintf("/api/v1/workshops/pic/%d", workshop.ID), "picture",
			[]formFile{{"poster.png", pngBytes(t)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.field, tt.files...)
			rec := app.do(t, http.MethodPost, tt.path, token, contentType, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Zero(t, app.countFiles(t))
		})
	}
}

func TestAlbumLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)
	workshop := createWorkshop(t, app, token, map[string]interface{}{"title": "Photography"})

	body, contentType := multipartBody(t, "pictures",
		formFile{"one.png", pngBytes(t)},
		formFile{"two.png", pngBytes(t)},
	)
	rec := app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/workshops/pic/album/%d", workshop.ID), token, contentType, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated dto.WorkshopResponse
	decodeData(t, rec, &updated)
	require.Len(t, updated.Album, 2)
	assert.Equal(t, 2, app.countFiles(t))

	first := updated.Album[0]
	assert.Equal(t, fmt.Sprintf("/api/v1/workshops/pic/%d/%s", workshop.ID, first.ID), first.URL)
	rec = app.do(t, http.MethodGet, first.URL, "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/workshops/pic/album/%d/%s", workshop.ID, first.ID), token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &updated)
	require.Len(t, updated.Album, 1)
	assert.NotEqual(t, first.ID, updated.Album[0].ID)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, first.URL, "", "", nil).Code)

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/workshops/pic/album/%d/%s", workshop.ID, first.ID), token, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeacherPicture(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)
	teacher := createTeacher(t, app, token, "Ali Rezaei")
	path := fmt.Sprintf("/api/v1/teachers/pic/%d", teacher.ID)

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, path, "", "", nil).Code)

	body, contentType := multipartBody(t, "mainPic", formFile{"me.png", pngBytes(t)})
	rec := app.do(t, http.MethodPost, path, token, contentType, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated dto.TeacherResponse
	decodeData(t, rec, &updated)
	assert.Equal(t, path, updated.PicURL)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, path, "", "", nil).Code)

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/teachers/manage/%d", teacher.ID), token, "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, path, "", "", nil).Code)
	assert.Zero(t, app.countFiles(t))
}

func TestEnrollment(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)
	userToken, userID := app.userToken(t, "sara@example.com")
	closed := createWorkshop(t, app, token, map[string]interface{}{"title": "Closed", "isRegOpen": false})
	open := createWorkshop(t, app, token, map[string]interface{}{"title": "Open", "isRegOpen": true, "capacity": 1})

	rec := app.json(t, http.MethodPut, fmt.Sprintf("/api/v1/workshops/manage/%d/user/%d", closed.ID, userID), token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, dto.ErrorCodeConflict, decode(t, rec).Error.Code)

	rec = app.json(t, http.MethodPut, fmt.Sprintf("/api/v1/users/me/workshops/%d", open.ID), userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var enrollment dto.EnrollmentResponse
	decodeData(t, rec, &enrollment)
	assert.Equal(t, dto.EnrollmentResponse{WorkshopID: open.ID, UserID: userID, Created: true}, enrollment)

	rec = app.json(t, http.MethodPut, fmt.Sprintf("/api/v1/workshops/manage/%d/user/%d", open.ID, userID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &enrollment)
	assert.False(t, enrollment.Created)

	_, otherID := app.userToken(t, "ali@example.com")
	rec = app.json(t, http.MethodPut, fmt.Sprintf("/api/v1/workshops/manage/%d/user/%d", open.ID, otherID), token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.json(t, http.MethodGet, fmt.Sprintf("/api/v1/workshops/manage/%d", open.ID), token, nil)
	var details dto.ManagedWorkshopDetailResponse
	decodeData(t, rec, &details)
	assert.Equal(t, 1, details.ParticipantsCount)
	require.Len(t, details.Participants, 1)
	assert.Equal(t, userID, details.Participants[0].ID)

	rec = app.json(t, http.MethodGet, "/api/v1/users/me", userToken, nil)
	var profile dto.UserWithWorkshopsResponse
	decodeData(t, rec, &profile)
	require.Len(t, profile.Workshops, 1)
	assert.Equal(t, open.ID, profile.Workshops[0].ID)

	rec = app.json(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/me/workshops/%d", open.ID), userToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.json(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/me/workshops/%d", open.ID), userToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.json(t, http.MethodPut, fmt.Sprintf("/api/v1/workshops/manage/%d/user/999", open.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestManagedListAndDelete(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)
	_, userID := app.userToken(t, "sara@example.com")
	workshop := createWorkshop(t, app, token, map[string]interface{}{"title": "Rust", "isRegOpen": true})

	rec := app.json(t, http.MethodPut, fmt.Sprintf("/api/v1/workshops/manage/%d/user/%d", workshop.ID, userID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.json(t, http.MethodGet, "/api/v1/workshops/manage", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var managed []dto.ManagedWorkshopResponse
	decodeData(t, rec, &managed)
	require.Len(t, managed, 1)
	assert.Equal(t, 1, managed[0].ParticipantsCount)

	rec = app.json(t, http.MethodDelete, fmt.Sprintf("/api/v1/workshops/manage/%d", workshop.ID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, app.json(t, http.MethodGet, fmt.Sprintf("/api/v1/workshops/%d", workshop.ID), "", nil).Code)

	rec = app.json(t, http.MethodGet, fmt.Sprintf("/api/v1/users/manage/%d", userID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user dto.UserWithWorkshopsResponse
	decodeData(t, rec, &user)
	assert.Empty(t, user.Workshops)
}

func TestUserAdministration(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)
	userToken, userID := app.userToken(t, "sara@example.com")
	path := fmt.Sprintf("/api/v1/users/manage/%d", userID)

	rec := app.json(t, http.MethodPatch, path, token, map[string]string{"password": "new-password"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.json(t, http.MethodPatch, path, token, map[string]string{"lastName": "Karimi"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated dto.UserResponse
	decodeData(t, rec, &updated)
	assert.Equal(t, "Karimi", updated.LastName)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = app.json(t, http.MethodGet, "/api/v1/users", token, nil)
	var users []dto.UserResponse
	decodeData(t, rec, &users)
	assert.Len(t, users, 1)

	rec = app.json(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, app.json(t, http.MethodGet, path, token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.json(t, http.MethodGet, "/api/v1/users/me", userToken, nil).Code)
}

func TestRoutingEdges(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken(t, "root", models.RoleSuperAdmin)

	rec := app.json(t, http.MethodGet, "/api/v1/workshops/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.json(t, http.MethodGet, "/api/v1/teachers/manage/0", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.json(t, http.MethodGet, "/api/v1/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decode(t, rec).Success)

	rec = app.json(t, http.MethodGet, "/api/v1/workshops/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, decode(t, rec).Error.Code)

	rec = app.json(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.json(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
