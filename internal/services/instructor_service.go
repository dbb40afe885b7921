package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"gorm.io/gorm"

	"github.com/fitsync/routine-service/internal/events"
	"github.com/fitsync/routine-service/internal/models"
	"github.com/fitsync/routine-service/internal/repositories"
	"github.com/fitsync/routine-service/internal/validator"
)

// codeAlphabet is the character set instructor codes are drawn from. Codes are
// stored and compared uppercase; lookups normalize first.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxCodeAttempts bounds the retry loop on value collisions. With 36^6 possible
// codes a collision is already rare; two in a row effectively never happens.
const maxCodeAttempts = 5

// DefaultInstructorService implements InstructorService.
type DefaultInstructorService struct {
	repo      repositories.Repository
	validator *validator.Validator
	publisher events.EventPublisher
	logger    *slog.Logger
}

// NewDefaultInstructorService creates a new instructor service
func NewDefaultInstructorService(
	repo repositories.Repository,
	validator *validator.Validator,
	publisher events.EventPublisher,
	logger *slog.Logger,
) *DefaultInstructorService {
	return &DefaultInstructorService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		logger:    logger,
	}
}

// ===== INSTRUCTOR CODE =====

// GetCode returns the instructor's active code, creating one on first access.
func (s *DefaultInstructorService) GetCode(ctx context.Context, actor Actor) (*CodeResponse, error) {
	if err := RequireInstructor(actor); err != nil {
		return nil, err
	}

	code, err := s.repo.InstructorCode().GetByInstructor(ctx, actor.ID)
	if err == nil {
		return &CodeResponse{Code: code.Value}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: failed to load instructor code: %v", ErrInternalError, err)
	}

	value, err := s.writeFreshCode(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &CodeResponse{Code: value}, nil
}

// RegenerateCode replaces the instructor's code with a fresh value. The old value
// stops resolving the moment the rewrite commits.
func (s *DefaultInstructorService) RegenerateCode(ctx context.Context, actor Actor) (*CodeResponse, error) {
	if err := RequireInstructor(actor); err != nil {
		return nil, err
	}

	value, err := s.writeFreshCode(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	event := events.NewDomainEvent(events.EventCodeRegenerated, events.CodeRegeneratedEvent{
		InstructorID: actor.ID,
	})
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish code regenerated event",
			"instructor_id", actor.ID,
			"error", err)
	}

	s.logger.Info("Instructor code regenerated", "instructor_id", actor.ID)

	return &CodeResponse{Code: value}, nil
}

// CheckCode resolves a typed code to its owner. Unknown codes are a valid=false
// answer, not an error; only malformed input fails validation.
func (s *DefaultInstructorService) CheckCode(ctx context.Context, req *CodeCheckRequest) (*CodeCheckResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	value := strings.ToUpper(strings.TrimSpace(req.Code))

	code, err := s.repo.InstructorCode().GetByValue(ctx, value)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CodeCheckResponse{Valid: false}, nil
		}
		return nil, fmt.Errorf("%w: failed to resolve code: %v", ErrInternalError, err)
	}

	owner := code.Instructor.Public()
	return &CodeCheckResponse{Valid: true, User: &owner}, nil
}

// writeFreshCode generates a new code and writes it as the instructor's single
// active value, retrying on the unique-index collision.
func (s *DefaultInstructorService) writeFreshCode(ctx context.Context, instructorID uint) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		value, err := generateCode()
		if err != nil {
			return "", fmt.Errorf("%w: failed to generate code: %v", ErrInternalError, err)
		}
		err = s.repo.InstructorCode().UpdateValue(ctx, instructorID, value)
		if err == nil {
			return value, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return "", fmt.Errorf("%w: failed to store code: %v", ErrInternalError, err)
	}
	return "", fmt.Errorf("%w: could not allocate a unique code", ErrInternalError)
}

func generateCode() (string, error) {
	buf := make([]byte, models.CodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// ===== ROUTINES =====

// CreateRoutine stores a routine with its segments in authoring order.
func (s *DefaultInstructorService) CreateRoutine(ctx context.Context, actor Actor, req *RoutineCreateRequest) (*RoutineDetail, error) {
	if err := RequireInstructor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	routine := &models.Routine{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		InstructorID: actor.ID,
		Segments:     buildSegments(req.Segments),
	}

	if err := s.repo.Routine().Create(ctx, routine); err != nil {
		return nil, fmt.Errorf("%w: failed to create routine: %v", ErrInternalError, err)
	}

	s.logger.Info("Routine created",
		"routine_id", routine.ID,
		"instructor_id", actor.ID,
		"segments", len(routine.Segments))

	return s.loadOwnedDetail(ctx, actor, routine.ID)
}

// ListRoutines returns the instructor's routines, newest first.
func (s *DefaultInstructorService) ListRoutines(ctx context.Context, actor Actor) ([]RoutineSummary, error) {
	if err := RequireInstructor(actor); err != nil {
		return nil, err
	}

	routines, err := s.repo.Routine().ListByInstructor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list routines: %v", ErrInternalError, err)
	}
	return toRoutineSummaries(routines), nil
}

// GetRoutine returns one owned routine with segments and roster.
func (s *DefaultInstructorService) GetRoutine(ctx context.Context, actor Actor, routineID uint) (*RoutineDetail, error) {
	if err := RequireInstructor(actor); err != nil {
		return nil, err
	}
	return s.loadOwnedDetail(ctx, actor, routineID)
}

// UpdateRoutine applies partial field updates; a non-nil segment slice replaces
// the whole segment set in the given order.
func (s *DefaultInstructorService) UpdateRoutine(ctx context.Context, actor Actor, routineID uint, req *RoutineUpdateRequest) (*RoutineDetail, error) {
	if err := RequireInstructor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	routine, err := s.getOwned(ctx, actor, routineID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		routine.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		routine.Description = req.Description
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Routine().Update(ctx, routine); err != nil {
			return err
		}
		if req.Segments != nil {
			if err := tx.Routine().ReplaceSegments(ctx, routine.ID, buildSegments(*req.Segments)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to update routine: %v", ErrInternalError, err)
	}

	s.logger.Info("Routine updated",
		"routine_id", routine.ID,
		"instructor_id", actor.ID)

	return s.loadOwnedDetail(ctx, actor, routineID)
}

func (s *DefaultInstructorService) getOwned(ctx context.Context, actor Actor, routineID uint) (*models.Routine, error) {
	routine, err := s.repo.Routine().GetOwned(ctx, actor.ID, routineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: routine not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to load routine: %v", ErrInternalError, err)
	}
	if err := RequireRoutineOwner(actor, routine); err != nil {
		return nil, err
	}
	return routine, nil
}

func (s *DefaultInstructorService) loadOwnedDetail(ctx context.Context, actor Actor, routineID uint) (*RoutineDetail, error) {
	routine, err := s.getOwned(ctx, actor, routineID)
	if err != nil {
		return nil, err
	}
	return toRoutineDetail(routine, true), nil
}

func buildSegments(reqs []RoutineSegmentRequest) []models.RoutineSegment {
	segments := make([]models.RoutineSegment, 0, len(reqs))
	for i, seg := range reqs {
		segments = append(segments, models.RoutineSegment{
			Position: i + 1,
			Name:     strings.TrimSpace(seg.Name),
			Duration: seg.Duration,
			Effort:   seg.Effort,
		})
	}
	return segments
}

// ===== STUDENTS =====

// ListStudents returns the instructor's roster: students linked at signup plus
// students holding any assignment on the instructor's routines.
func (s *DefaultInstructorService) ListStudents(ctx context.Context, actor Actor) ([]models.PublicUser, error) {
	if err := RequireInstructor(actor); err != nil {
		return nil, err
	}

	students, err := s.repo.Assignment().ListStudentsForInstructor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list students: %v", ErrInternalError, err)
	}

	out := make([]models.PublicUser, 0, len(students))
	for _, st := range students {
		out = append(out, st.Public())
	}
	return out, nil
}

// GetStudent returns one roster student with the routines this instructor has
// assigned to them. A student outside the roster is not found, full stop.
func (s *DefaultInstructorService) GetStudent(ctx context.Context, actor Actor, studentID uint) (*StudentDetail, error) {
	if err := RequireInstructor(actor); err != nil {
		return nil, err
	}

	if err := s.requireRosterStudent(ctx, actor, studentID); err != nil {
		return nil, err
	}

	student, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: student not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to load student: %v", ErrInternalError, err)
	}

	ids, err := s.repo.Assignment().ListRoutineIDsForStudentByInstructor(ctx, actor.ID, studentID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load assignments: %v", ErrInternalError, err)
	}

	routines, err := s.repo.Routine().ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load routines: %v", ErrInternalError, err)
	}

	return &StudentDetail{
		PublicUser: student.Public(),
		Routines:   toRoutineSummaries(routines),
	}, nil
}

// UpdateStudentRoutines replaces the student's assignment set from this instructor
// with exactly the requested routines. The request is declarative: omitted
// routines are unassigned, listed ones are assigned, and any foreign routine id
// fails the whole request with nothing persisted.
func (s *DefaultInstructorService) UpdateStudentRoutines(ctx context.Context, actor Actor, studentID uint, req *UpdateStudentRoutinesRequest) ([]RoutineSummary, error) {
	if err := RequireInstructor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	if err := s.requireRosterStudent(ctx, actor, studentID); err != nil {
		return nil, err
	}

	requested := dedupeIDs(req.RoutineIDs)

	ownedCount, err := s.repo.Routine().CountOwned(ctx, actor.ID, requested)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to verify routine ownership: %v", ErrInternalError, err)
	}
	if err := RequireRoutinesOwned(actor, requested, ownedCount); err != nil {
		return nil, err
	}

	var previous []uint
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		previous, err = tx.Assignment().ListRoutineIDsForStudentByInstructor(ctx, actor.ID, studentID)
		if err != nil {
			return err
		}
		if err := tx.Assignment().DeleteForStudentByInstructor(ctx, actor.ID, studentID); err != nil {
			return err
		}
		assignments := make([]models.RoutineAssignment, 0, len(requested))
		for _, id := range requested {
			assignments = append(assignments, models.RoutineAssignment{
				RoutineID: id,
				StudentID: studentID,
			})
		}
		return tx.Assignment().CreateBatch(ctx, assignments)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to replace assignments: %v", ErrInternalError, err)
	}

	routines, err := s.repo.Routine().ListByIDs(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load routines: %v", ErrInternalError, err)
	}

	s.publishAssignmentDiff(ctx, actor, studentID, previous, routines)

	s.logger.Info("Student routines replaced",
		"instructor_id", actor.ID,
		"student_id", studentID,
		"count", len(requested))

	return toRoutineSummaries(routines), nil
}

func (s *DefaultInstructorService) requireRosterStudent(ctx context.Context, actor Actor, studentID uint) error {
	ok, err := s.repo.Assignment().IsStudentOfInstructor(ctx, actor.ID, studentID)
	if err != nil {
		return fmt.Errorf("%w: failed to check roster: %v", ErrInternalError, err)
	}
	if !ok {
		return fmt.Errorf("%w: student not found", ErrNotFound)
	}
	return nil
}

// publishAssignmentDiff emits one event per routine added or removed by a
// replacement. Event failures are logged, never surfaced; the assignment state
// already committed.
func (s *DefaultInstructorService) publishAssignmentDiff(ctx context.Context, actor Actor, studentID uint, previous []uint, current []*models.Routine) {
	prevSet := make(map[uint]bool, len(previous))
	for _, id := range previous {
		prevSet[id] = true
	}
	currSet := make(map[uint]bool, len(current))

	for _, r := range current {
		currSet[r.ID] = true
		if prevSet[r.ID] {
			continue
		}
		event := events.NewDomainEvent(events.EventRoutineAssigned, events.RoutineAssignedEvent{
			RoutineID:    r.ID,
			RoutineName:  r.Name,
			InstructorID: actor.ID,
			StudentID:    studentID,
		})
		if err := s.publisher.PublishEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish routine assigned event",
				"routine_id", r.ID,
				"error", err)
		}
	}

	for _, id := range previous {
		if currSet[id] {
			continue
		}
		event := events.NewDomainEvent(events.EventRoutineUnassigned, events.RoutineUnassignedEvent{
			RoutineID:    id,
			InstructorID: actor.ID,
			StudentID:    studentID,
		})
		if err := s.publisher.PublishEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish routine unassigned event",
				"routine_id", id,
				"error", err)
		}
	}
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
