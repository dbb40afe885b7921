package repositories

import (
	"context"

	"github.com/fitsync/routine-service/internal/models"
)

// UserRepository handles user persistence. Users are created at signup and never
// deleted in the observed flows.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// InstructorCodeRepository handles the single active join code per instructor.
type InstructorCodeRepository interface {
	Create(ctx context.Context, code *models.InstructorCode) error
	GetByInstructor(ctx context.Context, instructorID uint) (*models.InstructorCode, error)

	// GetByValue resolves a code to its row with the owning instructor preloaded.
	// Lookup is exact; callers normalize case before calling.
	GetByValue(ctx context.Context, value string) (*models.InstructorCode, error)

	// UpdateValue rewrites the instructor's code in place so the old value stops
	// resolving in the same statement the new one starts.
	UpdateValue(ctx context.Context, instructorID uint, value string) error
}

// RoutineRepository handles routines and their segment collections. Every read
// preloads the distinct segment set ordered by authoring position; duration totals
// are summed in memory over that set, never via SQL aggregates across joins.
type RoutineRepository interface {
	Create(ctx context.Context, routine *models.Routine) error
	Update(ctx context.Context, routine *models.Routine) error

	// GetOwned returns the routine only when it belongs to the instructor, with
	// segments and assigned students preloaded.
	GetOwned(ctx context.Context, instructorID, routineID uint) (*models.Routine, error)

	// GetAssigned returns the routine only when an assignment links the student to
	// it, with segments preloaded and no roster.
	GetAssigned(ctx context.Context, studentID, routineID uint) (*models.Routine, error)

	ListByInstructor(ctx context.Context, instructorID uint) ([]*models.Routine, error)
	ListByStudent(ctx context.Context, studentID uint) ([]*models.Routine, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*models.Routine, error)

	// CountOwned reports how many of the given routine ids belong to the instructor.
	CountOwned(ctx context.Context, instructorID uint, ids []uint) (int64, error)

	// ReplaceSegments swaps the routine's whole segment set in the given order.
	ReplaceSegments(ctx context.Context, routineID uint, segments []models.RoutineSegment) error
}

// AssignmentRepository handles routine assignments and the instructor-student link
// created at signup.
type AssignmentRepository interface {
	CreateBatch(ctx context.Context, assignments []models.RoutineAssignment) error
	DeleteForStudentByInstructor(ctx context.Context, instructorID, studentID uint) error
	ListRoutineIDsForStudentByInstructor(ctx context.Context, instructorID, studentID uint) ([]uint, error)

	// LinkStudent records the durable instructor<->student relationship; linking the
	// same pair twice is a no-op.
	LinkStudent(ctx context.Context, instructorID, studentID uint) error

	// GetInstructorForStudent returns the instructor the student is linked to.
	GetInstructorForStudent(ctx context.Context, studentID uint) (*models.User, error)

	// ListStudentsForInstructor returns students reachable via the signup link or via
	// any assignment on the instructor's routines, newest first.
	ListStudentsForInstructor(ctx context.Context, instructorID uint) ([]*models.User, error)

	// IsStudentOfInstructor reports whether either linkage path reaches the student.
	IsStudentOfInstructor(ctx context.Context, instructorID, studentID uint) (bool, error)
}
