package services

import (
	"context"
	"testing"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTeacherNameRule(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"latin", "Ali Rezaei", "Ali Rezaei", false},
		{"extra spaces collapsed", "  Ali   Rezaei ", "Ali Rezaei", false},
		{"persian with zwnj", "محمد\u200cرضا کریمی", "محمد\u200cرضا کریمی", false},
		{"digits", "Ali2 Rezaei", "", true},
		{"punctuation", "Ali-Rezaei!", "", true},
		{"too short", "A", "", true},
		{"empty", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, RejectMissingTeacher)

			teacher, err := env.teachers.CreateTeacher(context.Background(), tt.input, "desc")
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
				assert.ErrorIs(t, err, apperrors.ErrInvalidTeacherName)
				all, _ := env.store.Teachers.GetAll(context.Background())
				assert.Empty(t, all)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, teacher.FullName)
			assert.NotZero(t, teacher.ID)
		})
	}
}

func TestCreateTeacherDuplicateName(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	env.teacher(t, "Ali Rezaei")

	_, err := env.teachers.CreateTeacher(context.Background(), "Ali Rezaei", "")
	assert.ErrorIs(t, err, apperrors.ErrTeacherAlreadyExists)
}

func TestGetTeacherWithWorkshops(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	ali := env.teacher(t, "Ali Rezaei")
	other := env.teacher(t, "Maryam Karimi")
	w1 := env.workshop(t, WorkshopInput{Title: "Bash", TeacherIDs: []int64{ali.ID}})
	env.workshop(t, WorkshopInput{Title: "Vim", TeacherIDs: []int64{other.ID}})
	w3 := env.workshop(t, WorkshopInput{Title: "Kernel", TeacherIDs: []int64{other.ID, ali.ID}})

	details, err := env.teachers.GetTeacher(ctx, ali.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ali Rezaei", details.Teacher.FullName)
	require.Len(t, details.Workshops, 2)
	assert.Equal(t, w1.ID, details.Workshops[0].ID)
	assert.Equal(t, w3.ID, details.Workshops[1].ID)

	_, err = env.teachers.GetTeacher(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrTeacherNotFound)
}

func TestListTeachersGroupsWorkshops(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)

	ali := env.teacher(t, "Ali Rezaei")
	idle := env.teacher(t, "Maryam Karimi")
	env.workshop(t, WorkshopInput{Title: "Bash", TeacherIDs: []int64{ali.ID, ali.ID}})

	list, err := env.teachers.ListTeachers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, ali.ID, list[0].Teacher.ID)
	assert.Len(t, list[0].Workshops, 1)
	assert.Equal(t, idle.ID, list[1].Teacher.ID)
	assert.NotNil(t, list[1].Workshops)
	assert.Empty(t, list[1].Workshops)
}

func TestUpdateTeacher(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()
	ali := env.teacher(t, "Ali Rezaei")

	updated, err := env.teachers.UpdateTeacher(ctx, ali.ID, models.TeacherUpdate{Description: ptr("  Kernel hacker ")})
	require.NoError(t, err)
	assert.Equal(t, "Ali Rezaei", updated.FullName)
	assert.Equal(t, "Kernel hacker", updated.Description)

	_, err = env.teachers.UpdateTeacher(ctx, ali.ID, models.TeacherUpdate{FullName: ptr("R00t")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTeacherName)

	_, err = env.teachers.UpdateTeacher(ctx, 404, models.TeacherUpdate{Description: ptr("x")})
	assert.ErrorIs(t, err, apperrors.ErrTeacherNotFound)
}

func TestRenameKeepsWorkshopSnapshot(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	ali := env.teacher(t, "Ali Rezaei")
	w := env.workshop(t, WorkshopInput{Title: "Bash", TeacherIDs: []int64{ali.ID}})

	_, err := env.teachers.UpdateTeacher(ctx, ali.ID, models.TeacherUpdate{FullName: ptr("Ali Rezaei Moghadam")})
	require.NoError(t, err)

	details, err := env.workshops.GetWorkshop(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, details.Workshop.Teachers, 1)
	assert.Equal(t, "Ali Rezaei", details.Workshop.Teachers[0].Name)
	require.Len(t, details.Teachers, 1)
	assert.Equal(t, "Ali Rezaei Moghadam", details.Teachers[0].FullName)
}

func TestDeleteTeacher(t *testing.T) {
	env := newTestEnv(t, RejectMissingTeacher)
	ctx := context.Background()

	ali := env.teacher(t, "Ali Rezaei")
	w := env.workshop(t, WorkshopInput{Title: "Bash", TeacherIDs: []int64{ali.ID}})
	_, err := env.pictures.SetTeacherPicture(ctx, ali.ID, pngUpload(t, "ali.png"))
	require.NoError(t, err)
	require.Equal(t, 1, env.countFiles(t))

	require.NoError(t, env.teachers.DeleteTeacher(ctx, ali.ID))
	assert.Zero(t, env.countFiles(t))

	_, err = env.teachers.GetTeacher(ctx, ali.ID)
	assert.ErrorIs(t, err, apperrors.ErrTeacherNotFound)

	details, err := env.workshops.GetWorkshop(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, details.Workshop.Teachers, 1)
	assert.Equal(t, "Ali Rezaei", details.Workshop.Teachers[0].Name)
	assert.Empty(t, details.Teachers)

	assert.ErrorIs(t, env.teachers.DeleteTeacher(ctx, ali.ID), apperrors.ErrTeacherNotFound)
}
