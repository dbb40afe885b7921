package services

import (
	"github.com/fitsync/routine-service/internal/models"
)

// Actor is the validated identity behind a request, threaded explicitly into every
// service operation. There is no implicit "current user" anywhere below the
// transport layer.
type Actor struct {
	ID   uint
	Role models.UserRole
}

func (a Actor) IsInstructor() bool { return a.Role == models.RoleInstructor }
func (a Actor) IsStudent() bool    { return a.Role == models.RoleStudent }

// ===== ACCESS PREDICATES =====
//
// One predicate per guarded condition, called at the top of each service operation.
// They are plain functions over in-memory values so they can be tested without any
// transport or database.

// RequireInstructor gates instructor-only operations.
func RequireInstructor(actor Actor) error {
	if actor.ID == 0 {
		return ErrUnauthorized
	}
	if !actor.IsInstructor() {
		return ErrForbidden
	}
	return nil
}

// RequireStudent gates student-only operations.
func RequireStudent(actor Actor) error {
	if actor.ID == 0 {
		return ErrUnauthorized
	}
	if !actor.IsStudent() {
		return ErrForbidden
	}
	return nil
}

// RequireRoutineOwner decides whether the actor may read or mutate the routine.
// A foreign routine yields ErrNotFound rather than ErrForbidden so the response
// never confirms the routine exists.
func RequireRoutineOwner(actor Actor, routine *models.Routine) error {
	if routine == nil || routine.InstructorID != actor.ID {
		return ErrNotFound
	}
	return nil
}

// RequireRoutinesOwned rejects an assignment list wholesale when any routine in it
// does not belong to the actor; no partial assignment may survive.
func RequireRoutinesOwned(actor Actor, requested []uint, ownedCount int64) error {
	if int64(len(requested)) != ownedCount {
		return NewValidationError("routine_ids", "contains routines that do not belong to the instructor", requested)
	}
	return nil
}
