package services

import (
	"context"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWorkshopSnapshotsTeacherNames(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)

	ali := env.teacher(t, "Ali Rezaei")
	maryam := env.teacher(t, "Maryam Karimi")
	start := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)

	w := env.workshop(t, WorkshopInput{
		Title:      "  Linux Kernel  ",
		Capacity:   20,
		Price:      150000,
		IsRegOpen:  true,
		Times:      []models.TimeRange{{Start: start, End: start.Add(2 * time.Hour)}},
		TeacherIDs: []int64{maryam.ID, ali.ID, maryam.ID},
	})

	assert.Equal(t, "Linux Kernel", w.Title)
	assert.Equal(t, []models.TeacherRef{
		{TeacherID: maryam.ID, Name: "Maryam Karimi"},
		{TeacherID: ali.ID, Name: "Ali Rezaei"},
	}, w.Teachers)
	assert.NotNil(t, w.Album)
	assert.Len(t, w.Times, 1)
}

func TestCreateWorkshopMissingTeacher(t *testing.T) {
	t.Run("reject", func(t *testing.T) {
		env := newTestEnv(t, RejectMissingTeacher)
		ali := env.teacher(t, "Ali Rezaei")

		_, err := env.workshops.CreateWorkshop(context.Background(), WorkshopInput{
			Title:      "Bash",
			TeacherIDs: []int64{ali.ID, 77},
		})
		assert.ErrorIs(t, err, apperrors.ErrTeacherNotFound)
		assert.Equal(t, "teacher 77 not found", apperrors.Message(err))

		all, err := env.workshops.ListWorkshops(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("allow", func(t *testing.T) {
		env := newTestEnv(t, AllowMissingTeacher)

		w, err := env.workshops.CreateWorkshop(context.Background(), WorkshopInput{
			Title:      "Bash",
			TeacherIDs: []int64{77},
		})
		require.NoError(t, err)
		assert.Equal(t, []models.TeacherRef{{TeacherID: 77, Name: ""}}, w.Teachers)
	})
}

func TestCreateWorkshopValidation(t *testing.T) {
	start := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		input WorkshopInput
	}{
		{"blank title", WorkshopInput{Title: "  "}},
		{"negative capacity", WorkshopInput{Title: "Bash", Capacity: -1}},
		{"negative price", WorkshopInput{Title: "Bash", Price: -5}},
		{"end before start", WorkshopInput{Title: "Bash", Times: []models.TimeRange{{Start: start, End: start.Add(-time.Hour)}}}},
		{"zero time", WorkshopInput{Title: "Bash", Times: []models.TimeRange{{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, RejectMissingTeacher)
			_, err := env.workshops.CreateWorkshop(context.Background(), tt.input)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestUpdateWorkshop(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	ali := env.teacher(t, "Ali Rezaei")
	maryam := env.teacher(t, "Maryam Karimi")
	w := env.workshop(t, WorkshopInput{Title: "Bash", Capacity: 10, TeacherIDs: []int64{ali.ID}})

	updated, err := env.workshops.UpdateWorkshop(ctx, w.ID, WorkshopPatch{
		Capacity:   ptr(30),
		IsRegOpen:  ptr(true),
		TeacherIDs: &[]int64{maryam.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bash", updated.Title)
	assert.Equal(t, 30, updated.Capacity)
	assert.True(t, updated.IsRegOpen)
	assert.Equal(t, []models.TeacherRef{{TeacherID: maryam.ID, Name: "Maryam Karimi"}}, updated.Teachers)

	_, err = env.workshops.UpdateWorkshop(ctx, w.ID, WorkshopPatch{Title: ptr("Zsh"), TeacherIDs: &[]int64{999}})
	assert.ErrorIs(t, err, apperrors.ErrTeacherNotFound)

	stored, err := env.workshops.GetWorkshop(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bash", stored.Workshop.Title)
	assert.Equal(t, maryam.ID, stored.Workshop.Teachers[0].TeacherID)

	_, err = env.workshops.UpdateWorkshop(ctx, 404, WorkshopPatch{Title: ptr("Zsh")})
	assert.ErrorIs(t, err, apperrors.ErrWorkshopNotFound)
}

func TestEnrollRegistrationClosed(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	w := env.workshop(t, WorkshopInput{Title: "Bash", IsRegOpen: false})
	u := env.user(t, "sara@example.com")

	created, err := env.workshops.Enroll(ctx, w.ID, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrRegistrationClosed)
	assert.False(t, created)

	assert.Zero(t, env.participants(t, w.ID))
	ids, err := env.store.Enrollments.ListWorkshopIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEnrollCapacity(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	w := env.workshop(t, WorkshopInput{Title: "Bash", IsRegOpen: true, Capacity: 1})
	first := env.user(t, "first@example.com")
	second := env.user(t, "second@example.com")

	created, err := env.workshops.Enroll(ctx, w.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, created)

	_, err = env.workshops.Enroll(ctx, w.ID, second.ID)
	assert.ErrorIs(t, err, apperrors.ErrWorkshopFull)

	assert.Equal(t, 1, env.participants(t, w.ID))
}

func TestEnrollUnlimitedCapacity(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	w := env.workshop(t, WorkshopInput{Title: "Bash", IsRegOpen: true, Capacity: 0})
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		u := env.user(t, email)
		_, err := env.workshops.Enroll(ctx, w.ID, u.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, env.participants(t, w.ID))
}

func TestEnrollConcurrentRespectsCapacity(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	w := env.workshop(t, WorkshopInput{Title: "Bash", IsRegOpen: true, Capacity: 3})
	users := make([]*models.User, 10)
	for i := range users {
		users[i] = env.user(t, string(rune('a'+i))+"@example.com")
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _ = env.workshops.Enroll(ctx, w.ID, id)
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, 3, env.participants(t, w.ID))
}

func TestEnrollIsIdempotent(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	w := env.workshop(t, WorkshopInput{Title: "Bash", IsRegOpen: true})
	u := env.user(t, "sara@example.com")

	created, err := env.workshops.Enroll(ctx, w.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.workshops.Enroll(ctx, w.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, created)

	details, err := env.workshops.GetManagedWorkshop(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, details.ParticipantsCount)
}

func TestEnrollUnknownWorkshopOrUser(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	w := env.workshop(t, WorkshopInput{Title: "Bash", IsRegOpen: true})
	u := env.user(t, "sara@example.com")

	_, err := env.workshops.Enroll(ctx, 999, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrWorkshopNotFound)

	_, err = env.workshops.Enroll(ctx, w.ID, 999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUnenrollRemovesOnlyThatUser(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	w := env.workshop(t, WorkshopInput{Title: "Bash", IsRegOpen: true})
	a := env.user(t, "a@example.com")
	b := env.user(t, "b@example.com")
	c := env.user(t, "c@example.com")
	for _, u := range []*models.User{a, b, c} {
		_, err := env.workshops.Enroll(ctx, w.ID, u.ID)
		require.NoError(t, err)
	}

	require.NoError(t, env.workshops.Unenroll(ctx, w.ID, b.ID))

	details, err := env.workshops.GetManagedWorkshop(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, details.ParticipantsCount)
	ids := []int64{details.Participants[0].ID, details.Participants[1].ID}
	assert.ElementsMatch(t, []int64{a.ID, c.ID}, ids)

	assert.ErrorIs(t, env.workshops.Unenroll(ctx, w.ID, b.ID), apperrors.ErrNotEnrolled)
	assert.ErrorIs(t, env.workshops.Unenroll(ctx, 999, a.ID), apperrors.ErrWorkshopNotFound)
}

func TestListManagedWorkshops(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	w1 := env.workshop(t, WorkshopInput{Title: "Bash", IsRegOpen: true})
	w2 := env.workshop(t, WorkshopInput{Title: "Vim", IsRegOpen: true})
	u := env.user(t, "sara@example.com")
	_, err := env.workshops.Enroll(ctx, w1.ID, u.ID)
	require.NoError(t, err)

	list, err := env.workshops.ListManagedWorkshops(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, w1.ID, list[0].Workshop.ID)
	assert.Equal(t, 1, list[0].ParticipantsCount)
	assert.Equal(t, w2.ID, list[1].Workshop.ID)
	assert.Equal(t, 0, list[1].ParticipantsCount)
	assert.NotNil(t, list[1].Participants)
}

func TestDeleteWorkshopCascades(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	w := env.workshop(t, WorkshopInput{Title: "Bash", IsRegOpen: true})
	u := env.user(t, "sara@example.com")
	_, err := env.workshops.Enroll(ctx, w.ID, u.ID)
	require.NoError(t, err)
	_, err = env.pictures.SetWorkshopPicture(ctx, w.ID, pngUpload(t, "poster.png"))
	require.NoError(t, err)
	_, err = env.pictures.AddAlbumPictures(ctx, w.ID, []*multipart.FileHeader{pngUpload(t, "hall.png")})
	require.NoError(t, err)
	require.Equal(t, 2, env.countFiles(t))

	require.NoError(t, env.workshops.DeleteWorkshop(ctx, w.ID))

	assert.Zero(t, env.participants(t, w.ID))
	assert.Zero(t, env.countFiles(t))

	mine, err := env.workshops.ListUserWorkshops(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = env.workshops.GetWorkshop(ctx, w.ID)
	assert.ErrorIs(t, err, apperrors.ErrWorkshopNotFound)
	assert.ErrorIs(t, env.workshops.DeleteWorkshop(ctx, w.ID), apperrors.ErrWorkshopNotFound)
}

func TestListUserWorkshops(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	w1 := env.workshop(t, WorkshopInput{Title: "Bash", IsRegOpen: true})
	env.workshop(t, WorkshopInput{Title: "Vim", IsRegOpen: true})
	u := env.user(t, "sara@example.com")
	_, err := env.workshops.Enroll(ctx, w1.ID, u.ID)
	require.NoError(t, err)

	mine, err := env.workshops.ListUserWorkshops(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, w1.ID, mine[0].ID)
}
