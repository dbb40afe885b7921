package services

import (
	"context"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/fitsync/routine-service/internal/models"
	"github.com/fitsync/routine-service/internal/validator"
)

// ===== REQUEST TYPES =====

// Requests are validated by the shared validator package; services alias them so
// handlers depend on a single surface.
type SignupRequest = validator.SignupRequest
type LoginRequest = validator.LoginRequest
type CodeCheckRequest = validator.CodeCheckRequest
type RoutineCreateRequest = validator.RoutineCreateRequest
type RoutineUpdateRequest = validator.RoutineUpdateRequest
type RoutineSegmentRequest = validator.RoutineSegmentRequest
type UpdateStudentRoutinesRequest = validator.UpdateStudentRoutinesRequest

// ===== RESPONSE TYPES =====

// AuthResponse is the signup/login payload: the caller's own profile plus a signed
// access token.
type AuthResponse struct {
	User  models.PublicUser `json:"user"`
	Role  models.UserRole   `json:"role"`
	Token string            `json:"token"`
}

// CodeResponse carries an instructor's current join code.
type CodeResponse struct {
	Code string `json:"code"`
}

// CodeCheckResponse reports whether a typed code resolves, and to whom. User is
// only present when Valid is true.
type CodeCheckResponse struct {
	Valid bool               `json:"valid"`
	User  *models.PublicUser `json:"user,omitempty"`
}

// SegmentResponse is one segment of a routine in authoring order.
type SegmentResponse struct {
	ID       uint           `json:"id"`
	Position int            `json:"position"`
	Name     string         `json:"name,omitempty"`
	Duration int            `json:"duration"`
	Effort   datatypes.JSON `json:"effort,omitempty"`
}

// RoutineSummary is the list projection of a routine. TotalDuration is derived
// from the segment set at read time, never stored.
type RoutineSummary struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	SegmentCount  int     `json:"segment_count"`
	TotalDuration int     `json:"total_duration"`
	CreatedAt     string  `json:"created_at"`
}

// RoutineDetail is the full projection. Students is only populated on instructor
// reads; student reads never see the roster.
type RoutineDetail struct {
	ID            uint                `json:"id"`
	Name          string              `json:"name"`
	Description   *string             `json:"description,omitempty"`
	TotalDuration int                 `json:"total_duration"`
	Segments      []SegmentResponse   `json:"segments"`
	Students      []models.PublicUser `json:"students,omitempty"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
}

// StudentDetail is one student of the instructor's roster together with the
// routines that instructor currently has assigned to them.
type StudentDetail struct {
	models.PublicUser
	Routines []RoutineSummary `json:"routines"`
}

// StudentProfile is the student's own view: their account plus the instructor they
// joined under, when any.
type StudentProfile struct {
	models.PublicUser
	Role       models.UserRole    `json:"role"`
	Instructor *models.PublicUser `json:"instructor,omitempty"`
}

// ===== SERVICE INTERFACES =====

// AuthService handles account creation, credential login and token lifecycle.
type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)

	// ParseToken validates a bearer token and returns the actor it identifies.
	ParseToken(token string) (Actor, error)
}

// InstructorService covers everything behind the instructor role: the join code,
// routine authoring and the student roster with its assignments.
type InstructorService interface {
	GetCode(ctx context.Context, actor Actor) (*CodeResponse, error)
	RegenerateCode(ctx context.Context, actor Actor) (*CodeResponse, error)

	// CheckCode is the only unauthenticated operation; it resolves a typed code to
	// its owner without leaking anything beyond the public profile.
	CheckCode(ctx context.Context, req *CodeCheckRequest) (*CodeCheckResponse, error)

	CreateRoutine(ctx context.Context, actor Actor, req *RoutineCreateRequest) (*RoutineDetail, error)
	ListRoutines(ctx context.Context, actor Actor) ([]RoutineSummary, error)
	GetRoutine(ctx context.Context, actor Actor, routineID uint) (*RoutineDetail, error)
	UpdateRoutine(ctx context.Context, actor Actor, routineID uint, req *RoutineUpdateRequest) (*RoutineDetail, error)

	ListStudents(ctx context.Context, actor Actor) ([]models.PublicUser, error)
	GetStudent(ctx context.Context, actor Actor, studentID uint) (*StudentDetail, error)

	// UpdateStudentRoutines replaces the student's assignment set from this
	// instructor with exactly the given routines, in one transaction.
	UpdateStudentRoutines(ctx context.Context, actor Actor, studentID uint, req *UpdateStudentRoutinesRequest) ([]RoutineSummary, error)
}

// StudentService covers the student-facing read surface.
type StudentService interface {
	GetProfile(ctx context.Context, actor Actor) (*StudentProfile, error)
	ListRoutines(ctx context.Context, actor Actor) ([]RoutineSummary, error)
	GetRoutine(ctx context.Context, actor Actor, routineID uint) (*RoutineDetail, error)
}

// ExportService builds spreadsheet exports of an instructor's data.
type ExportService interface {
	ExportInstructorWorkbook(ctx context.Context, actor Actor) (*excelize.File, error)
}

// ServiceManager wires and owns all services.
type ServiceManager interface {
	Auth() AuthService
	Instructor() InstructorService
	Student() StudentService
	Export() ExportService
	Shutdown(ctx context.Context) error
}
