package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("with instructor link", func(t *testing.T) {
		instructor := env.signupInstructor(t, "coach@example.com")
		code := env.instructorCode(t, instructor)
		student := env.signupStudent(t, "linked@example.com", &code)

		profile, err := env.student.GetProfile(ctx, student)
		require.NoError(t, err)
		assert.Equal(t, student.ID, profile.ID)
		require.NotNil(t, profile.Instructor)
		assert.Equal(t, instructor.ID, profile.Instructor.ID)
	})

	t.Run("without instructor link", func(t *testing.T) {
		student := env.signupStudent(t, "solo@example.com", nil)

		profile, err := env.student.GetProfile(ctx, student)
		require.NoError(t, err)
		assert.Nil(t, profile.Instructor)
	})

	t.Run("instructor role forbidden", func(t *testing.T) {
		instructor := env.signupInstructor(t, "coach2@example.com")
		_, err := env.student.GetProfile(ctx, instructor)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestStudentListRoutines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	code := env.instructorCode(t, instructor)
	student := env.signupStudent(t, "student@example.com", &code)

	assigned := env.createRoutine(t, instructor, "Assigned", 10, 20)
	env.createRoutine(t, instructor, "Unassigned", 30)

	_, err := env.instructor.UpdateStudentRoutines(ctx, instructor, student.ID, &UpdateStudentRoutinesRequest{
		RoutineIDs: []uint{assigned.ID},
	})
	require.NoError(t, err)

	list, err := env.student.ListRoutines(ctx, student)
	require.NoError(t, err)
	require.Len(t, list, 1, "only assigned routines are visible")
	assert.Equal(t, "Assigned", list[0].Name)
	assert.Equal(t, 30, list[0].TotalDuration)
}

func TestStudentGetRoutine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	code := env.instructorCode(t, instructor)
	student := env.signupStudent(t, "student@example.com", &code)

	routine := env.createRoutine(t, instructor, "Plan", 10, 20, 5)
	_, err := env.instructor.UpdateStudentRoutines(ctx, instructor, student.ID, &UpdateStudentRoutinesRequest{
		RoutineIDs: []uint{routine.ID},
	})
	require.NoError(t, err)

	detail, err := env.student.GetRoutine(ctx, student, routine.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, detail.TotalDuration)
	require.Len(t, detail.Segments, 3)
	for i, seg := range detail.Segments {
		assert.Equal(t, i+1, seg.Position)
	}
	assert.Nil(t, detail.Students, "students never see the roster")
}

func TestStudentGetRoutineUnassigned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	code := env.instructorCode(t, instructor)
	student := env.signupStudent(t, "student@example.com", &code)

	routine := env.createRoutine(t, instructor, "Private", 10)

	// An existing but unassigned routine and an unknown id read the same.
	_, err := env.student.GetRoutine(ctx, student, routine.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.student.GetRoutine(ctx, student, 424242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportInstructorWorkbook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	code := env.instructorCode(t, instructor)
	env.signupStudent(t, "student@example.com", &code)
	env.createRoutine(t, instructor, "Exported", 10, 20)

	f, err := env.export.ExportInstructorWorkbook(ctx, instructor)
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Routines", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Exported", name)

	total, err := f.GetCellValue("Routines", "E2")
	require.NoError(t, err)
	assert.Equal(t, "30", total)

	email, err := f.GetCellValue("Students", "D2")
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", email)
}

func TestExportRequiresInstructor(t *testing.T) {
	env := newTestEnv(t)
	student := env.signupStudent(t, "student@example.com", nil)

	_, err := env.export.ExportInstructorWorkbook(context.Background(), student)
	assert.ErrorIs(t, err, ErrForbidden)
}
