package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/app/repositories/memory"
	"github.com/linuxfest/backend/internal/pkg/auth"
	"github.com/linuxfest/backend/internal/pkg/filestorage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store     *memory.Store
	root      string
	pipeline  *filestorage.Pipeline
	teachers  TeacherService
	workshops WorkshopService
	users     UserService
	pictures  PictureService
	auth      *AuthService
}

func newTestEnv(t *testing.T, policy MissingTeacherPolicy) *testEnv {
	t.Helper()

	root := t.TempDir()
	ls, err := filestorage.NewLocalStorage(root, "v1")
	require.NoError(t, err)
	pipeline := filestorage.NewPipeline(ls, 0)

	store := memory.NewStore()
	log := zerolog.Nop()

	workshops := NewWorkshopService(store.Workshops, store.Teachers, store.Enrollments, store.Users, pipeline, policy, log)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "linuxfest",
	})

	return &testEnv{
		store:     store,
		root:      root,
		pipeline:  pipeline,
		teachers:  NewTeacherService(store.Teachers, store.Workshops, pipeline, log),
		workshops: workshops,
		users:     NewUserService(store.Users, store.Tokens, workshops, log),
		pictures:  NewPictureService(store.Workshops, store.Teachers, pipeline, log),
		auth:      NewAuthService(store.Admins, store.Users, store.Tokens, jwtService, log),
	}
}

func (e *testEnv) teacher(t *testing.T, name string) *models.Teacher {
	t.Helper()
	teacher, err := e.teachers.CreateTeacher(context.Background(), name, "")
	require.NoError(t, err)
	return teacher
}

// participants returns the number of users enrolled in the workshop
func (e *testEnv) participants(t *testing.T, workshopID int64) int {
	t.Helper()
	byWorkshop, err := e.store.Enrollments.ListParticipants(context.Background(), []int64{workshopID})
	require.NoError(t, err)
	return len(byWorkshop[workshopID])
}

func (e *testEnv) workshop(t *testing.T, input WorkshopInput) *models.Workshop {
	t.Helper()
	if input.Title == "" {
		input.Title = "Linux Basics"
	}
	workshop, err := e.workshops.CreateWorkshop(context.Background(), input)
	require.NoError(t, err)
	return workshop
}

func (e *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := e.users.CreateUser(context.Background(), UserInput{
		FirstName: "Sara",
		LastName:  "Ahmadi",
		Email:     email,
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) countFiles(t *testing.T) int {
	t.Helper()
	n := 0
	require.NoError(t, filepath.Walk(e.root, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			n++
		}
		return err
	}))
	return n
}

func pngUpload(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for x := 0; x < 32; x++ {
		for y := 0; y < 24; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return upload(t, name, buf.Bytes())
}

func upload(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("pictures", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["pictures"][0]
}

func ptr[T any](v T) *T {
	return &v
}
