package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsync/routine-service/internal/events"
	"github.com/fitsync/routine-service/internal/models"
)

// ===== INSTRUCTOR CODE =====

func TestGetCodeCreatesOnFirstAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")

	first, err := env.instructor.GetCode(ctx, instructor)
	require.NoError(t, err)
	assert.Len(t, first.Code, models.CodeLength)
	assert.Equal(t, strings.ToUpper(first.Code), first.Code, "codes are stored uppercase")

	// Repeated reads return the same active code.
	second, err := env.instructor.GetCode(ctx, instructor)
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
}

func TestRegenerateCodeInvalidatesOldValue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")

	old := env.instructorCode(t, instructor)

	fresh, err := env.instructor.RegenerateCode(ctx, instructor)
	require.NoError(t, err)
	assert.NotEqual(t, old, fresh.Code)
	assert.Len(t, fresh.Code, models.CodeLength)

	oldCheck, err := env.instructor.CheckCode(ctx, &CodeCheckRequest{Code: old})
	require.NoError(t, err)
	assert.False(t, oldCheck.Valid, "old value must stop resolving")

	newCheck, err := env.instructor.CheckCode(ctx, &CodeCheckRequest{Code: fresh.Code})
	require.NoError(t, err)
	assert.True(t, newCheck.Valid)
	require.NotNil(t, newCheck.User)
	assert.Equal(t, instructor.ID, newCheck.User.ID)

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventCodeRegenerated, published[0].Type)
}

func TestCheckCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	code := env.instructorCode(t, instructor)

	t.Run("case insensitive match", func(t *testing.T) {
		resp, err := env.instructor.CheckCode(ctx, &CodeCheckRequest{Code: strings.ToLower(code)})
		require.NoError(t, err)
		assert.True(t, resp.Valid)
	})

	t.Run("unknown code is a negative answer, not an error", func(t *testing.T) {
		resp, err := env.instructor.CheckCode(ctx, &CodeCheckRequest{Code: "ZZZZZZ"})
		require.NoError(t, err)
		assert.False(t, resp.Valid)
		assert.Nil(t, resp.User)
	})

	t.Run("malformed code fails validation", func(t *testing.T) {
		_, err := env.instructor.CheckCode(ctx, &CodeCheckRequest{Code: "AB1"})
		assert.True(t, IsValidation(err), "expected validation error, got %v", err)
	})
}

func TestCodeOperationsRequireInstructor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	code := env.instructorCode(t, instructor)
	student := env.signupStudent(t, "student@example.com", &code)

	_, err := env.instructor.GetCode(ctx, student)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.instructor.RegenerateCode(ctx, student)
	assert.ErrorIs(t, err, ErrForbidden)
}

// ===== ROUTINES =====

func TestCreateRoutine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")

	detail, err := env.instructor.CreateRoutine(ctx, instructor, &RoutineCreateRequest{
		Name: "Morning Intervals",
		Segments: []RoutineSegmentRequest{
			{Name: "Warmup", Duration: 10},
			{Name: "Main set", Duration: 25},
			{Name: "Cooldown", Duration: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Morning Intervals", detail.Name)
	assert.Equal(t, 40, detail.TotalDuration)
	require.Len(t, detail.Segments, 3)
	for i, seg := range detail.Segments {
		assert.Equal(t, i+1, seg.Position, "segments keep authoring order")
	}
	assert.Equal(t, "Warmup", detail.Segments[0].Name)
	assert.Equal(t, "Cooldown", detail.Segments[2].Name)
}

func TestCreateRoutineWithoutSegments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")

	detail, err := env.instructor.CreateRoutine(ctx, instructor, &RoutineCreateRequest{Name: "Empty shell"})
	require.NoError(t, err)
	assert.Empty(t, detail.Segments)
	assert.Equal(t, 0, detail.TotalDuration, "no segments means zero total")
}

func TestCreateRoutineValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")

	t.Run("missing name", func(t *testing.T) {
		_, err := env.instructor.CreateRoutine(ctx, instructor, &RoutineCreateRequest{
			Segments: []RoutineSegmentRequest{{Duration: 10}},
		})
		assert.True(t, IsValidation(err), "expected validation error, got %v", err)
	})

	t.Run("zero duration segment", func(t *testing.T) {
		_, err := env.instructor.CreateRoutine(ctx, instructor, &RoutineCreateRequest{
			Name:     "Bad",
			Segments: []RoutineSegmentRequest{{Duration: 0}},
		})
		assert.True(t, IsValidation(err), "expected validation error, got %v", err)
	})

	t.Run("student role forbidden", func(t *testing.T) {
		_, err := env.instructor.CreateRoutine(ctx, Actor{ID: 99, Role: models.RoleStudent}, &RoutineCreateRequest{Name: "X"})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestListRoutinesNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")

	env.createRoutine(t, instructor, "First", 10)
	time.Sleep(10 * time.Millisecond)
	env.createRoutine(t, instructor, "Second", 20)

	list, err := env.instructor.ListRoutines(ctx, instructor)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Name)
	assert.Equal(t, "First", list[1].Name)
}

func TestGetRoutineHidesForeignRoutines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.signupInstructor(t, "owner@example.com")
	other := env.signupInstructor(t, "other@example.com")

	routine := env.createRoutine(t, owner, "Private", 30)

	_, err := env.instructor.GetRoutine(ctx, other, routine.ID)
	assert.ErrorIs(t, err, ErrNotFound, "foreign routines read as not found, never forbidden")

	name := "Taken over"
	_, err = env.instructor.UpdateRoutine(ctx, other, routine.ID, &RoutineUpdateRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.instructor.GetRoutine(ctx, owner, 424242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRoutineReplacesSegments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")

	routine := env.createRoutine(t, instructor, "Original", 10, 20)

	name := "Renamed"
	updated, err := env.instructor.UpdateRoutine(ctx, instructor, routine.ID, &RoutineUpdateRequest{
		Name: &name,
		Segments: &[]RoutineSegmentRequest{
			{Name: "Only block", Duration: 45},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 45, updated.TotalDuration)
	require.Len(t, updated.Segments, 1)
	assert.Equal(t, 1, updated.Segments[0].Position)
}

func TestUpdateRoutineKeepsSegmentsWhenOmitted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")

	routine := env.createRoutine(t, instructor, "Original", 10, 20)

	name := "Renamed"
	updated, err := env.instructor.UpdateRoutine(ctx, instructor, routine.ID, &RoutineUpdateRequest{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Len(t, updated.Segments, 2, "nil segment slice leaves the set untouched")
	assert.Equal(t, 30, updated.TotalDuration)
}

// ===== STUDENTS AND ASSIGNMENTS =====

func TestUpdateStudentRoutinesFullReplace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	code := env.instructorCode(t, instructor)
	student := env.signupStudent(t, "student@example.com", &code)

	a := env.createRoutine(t, instructor, "A", 10)
	b := env.createRoutine(t, instructor, "B", 20)
	c := env.createRoutine(t, instructor, "C", 30)

	_, err := env.instructor.UpdateStudentRoutines(ctx, instructor, student.ID, &UpdateStudentRoutinesRequest{
		RoutineIDs: []uint{a.ID, b.ID},
	})
	require.NoError(t, err)
	env.publisher.ClearEvents()

	// Replacing with {B, C} drops A and adds C; B stays untouched.
	result, err := env.instructor.UpdateStudentRoutines(ctx, instructor, student.ID, &UpdateStudentRoutinesRequest{
		RoutineIDs: []uint{b.ID, c.ID},
	})
	require.NoError(t, err)
	require.Len(t, result, 2)

	assigned, err := env.student.ListRoutines(ctx, student)
	require.NoError(t, err)
	names := []string{assigned[0].Name, assigned[1].Name}
	assert.ElementsMatch(t, []string{"B", "C"}, names)

	var assignedEvents, unassignedEvents int
	for _, ev := range env.publisher.GetPublishedEvents() {
		switch ev.Type {
		case events.EventRoutineAssigned:
			assignedEvents++
		case events.EventRoutineUnassigned:
			unassignedEvents++
		}
	}
	assert.Equal(t, 1, assignedEvents, "only C is newly assigned")
	assert.Equal(t, 1, unassignedEvents, "only A is removed")
}

func TestUpdateStudentRoutinesRejectsForeignRoutine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	other := env.signupInstructor(t, "other@example.com")
	code := env.instructorCode(t, instructor)
	student := env.signupStudent(t, "student@example.com", &code)

	mine := env.createRoutine(t, instructor, "Mine", 10)
	foreign := env.createRoutine(t, other, "Foreign", 10)

	_, err := env.instructor.UpdateStudentRoutines(ctx, instructor, student.ID, &UpdateStudentRoutinesRequest{
		RoutineIDs: []uint{mine.ID},
	})
	require.NoError(t, err)

	// One foreign id fails the whole request; the previous set survives intact.
	_, err = env.instructor.UpdateStudentRoutines(ctx, instructor, student.ID, &UpdateStudentRoutinesRequest{
		RoutineIDs: []uint{mine.ID, foreign.ID},
	})
	assert.True(t, IsValidation(err), "expected validation error, got %v", err)

	assigned, err := env.student.ListRoutines(ctx, student)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Mine", assigned[0].Name)
}

func TestUpdateStudentRoutinesClearsWithEmptySet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	code := env.instructorCode(t, instructor)
	student := env.signupStudent(t, "student@example.com", &code)

	a := env.createRoutine(t, instructor, "A", 10)
	_, err := env.instructor.UpdateStudentRoutines(ctx, instructor, student.ID, &UpdateStudentRoutinesRequest{
		RoutineIDs: []uint{a.ID},
	})
	require.NoError(t, err)

	result, err := env.instructor.UpdateStudentRoutines(ctx, instructor, student.ID, &UpdateStudentRoutinesRequest{
		RoutineIDs: []uint{},
	})
	require.NoError(t, err)
	assert.Empty(t, result)

	assigned, err := env.student.ListRoutines(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, assigned)
}

func TestUpdateStudentRoutinesUnknownStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	a := env.createRoutine(t, instructor, "A", 10)

	_, err := env.instructor.UpdateStudentRoutines(ctx, instructor, 424242, &UpdateStudentRoutinesRequest{
		RoutineIDs: []uint{a.ID},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetStudentDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	code := env.instructorCode(t, instructor)
	student := env.signupStudent(t, "student@example.com", &code)

	a := env.createRoutine(t, instructor, "A", 10, 20)
	_, err := env.instructor.UpdateStudentRoutines(ctx, instructor, student.ID, &UpdateStudentRoutinesRequest{
		RoutineIDs: []uint{a.ID},
	})
	require.NoError(t, err)

	detail, err := env.instructor.GetStudent(ctx, instructor, student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, detail.ID)
	require.Len(t, detail.Routines, 1)
	assert.Equal(t, "A", detail.Routines[0].Name)
	assert.Equal(t, 30, detail.Routines[0].TotalDuration)
}

func TestGetStudentOutsideRoster(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	stranger := env.signupStudent(t, "stranger@example.com", nil)

	_, err := env.instructor.GetStudent(ctx, instructor, stranger.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Assigning a routine to several students must not inflate its total duration;
// the sum always runs over the distinct segment set.
func TestTotalDurationUnaffectedByAssignments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	instructor := env.signupInstructor(t, "coach@example.com")
	code := env.instructorCode(t, instructor)
	s1 := env.signupStudent(t, "s1@example.com", &code)
	s2 := env.signupStudent(t, "s2@example.com", &code)

	routine := env.createRoutine(t, instructor, "Shared", 15, 25)

	for _, st := range []Actor{s1, s2} {
		_, err := env.instructor.UpdateStudentRoutines(ctx, instructor, st.ID, &UpdateStudentRoutinesRequest{
			RoutineIDs: []uint{routine.ID},
		})
		require.NoError(t, err)
	}

	detail, err := env.instructor.GetRoutine(ctx, instructor, routine.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, detail.TotalDuration)
	assert.Len(t, detail.Students, 2)

	list, err := env.instructor.ListRoutines(ctx, instructor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 40, list[0].TotalDuration)
}
