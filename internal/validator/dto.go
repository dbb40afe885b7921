package validator

import "gorm.io/datatypes"

// SignupRequest represents the request structure for account creation.
// InstructorCode only makes sense for student signups and links the new student to
// the code's owner in the same transaction.
type SignupRequest struct {
	FirstName      string  `json:"first_name" validate:"required,max=100"`
	LastName       string  `json:"last_name" validate:"required,max=100"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=8,max=72"`
	Role           string  `json:"role" validate:"required,user_role"`
	InstructorCode *string `json:"instructor_code" validate:"omitempty,instructor_code"`
}

// LoginRequest represents the request structure for credential login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CodeCheckRequest carries the code a prospective student typed in.
type CodeCheckRequest struct {
	Code string `json:"code" validate:"required,instructor_code"`
}

// RoutineSegmentRequest is one segment in authoring order. The slice index is the
// position; the read path preserves it.
type RoutineSegmentRequest struct {
	Name     string         `json:"name" validate:"max=200"`
	Duration int            `json:"duration" validate:"required,min=1"`
	Effort   datatypes.JSON `json:"effort"`
}

// RoutineCreateRequest represents the request structure for creating routines
type RoutineCreateRequest struct {
	Name        string                  `json:"name" validate:"required,min=1,max=200"`
	Description *string                 `json:"description" validate:"omitempty,max=1000"`
	Segments    []RoutineSegmentRequest `json:"segments" validate:"omitempty,dive"`
}

// RoutineUpdateRequest represents the request structure for updating routines.
// A non-nil Segments slice replaces the whole segment set in the given order.
type RoutineUpdateRequest struct {
	Name        *string                  `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string                  `json:"description" validate:"omitempty,max=1000"`
	Segments    *[]RoutineSegmentRequest `json:"segments" validate:"omitempty,dive"`
}

// UpdateStudentRoutinesRequest is the declarative full assignment set for one student.
type UpdateStudentRoutinesRequest struct {
	RoutineIDs []uint `json:"routine_ids" validate:"required"`
}
