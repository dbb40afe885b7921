package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/fitsync/routine-service/internal/cache"
	"github.com/fitsync/routine-service/internal/repositories"
)

// DefaultStudentService implements StudentService. Profile reads go through the
// cache; routine reads always hit the database so assignment changes are visible
// immediately.
type DefaultStudentService struct {
	repo         repositories.Repository
	profileCache *cache.CacheHelper
	logger       *slog.Logger
}

// NewDefaultStudentService creates a new student service
func NewDefaultStudentService(repo repositories.Repository, redisClient *redis.Client, logger *slog.Logger) *DefaultStudentService {
	return &DefaultStudentService{
		repo:         repo,
		profileCache: cache.NewCacheHelper(redisClient, cache.ProfileCacheConfig.Prefix),
		logger:       logger,
	}
}

// GetProfile returns the student's own account plus the instructor they joined
// under, when any.
func (s *DefaultStudentService) GetProfile(ctx context.Context, actor Actor) (*StudentProfile, error) {
	if err := RequireStudent(actor); err != nil {
		return nil, err
	}

	cacheKey := strconv.FormatUint(uint64(actor.ID), 10)

	var cached StudentProfile
	if err := s.profileCache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	user, err := s.repo.User().GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to load profile: %v", ErrInternalError, err)
	}

	profile := &StudentProfile{
		PublicUser: user.Public(),
		Role:       user.Role,
	}

	instructor, err := s.repo.Assignment().GetInstructorForStudent(ctx, actor.ID)
	if err == nil {
		pub := instructor.Public()
		profile.Instructor = &pub
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: failed to load instructor: %v", ErrInternalError, err)
	}

	if err := s.profileCache.Set(ctx, cacheKey, profile, cache.ProfileCacheConfig.TTL); err != nil {
		s.logger.Warn("Failed to cache student profile",
			"student_id", actor.ID,
			"error", err)
	}

	return profile, nil
}

// ListRoutines returns the routines currently assigned to the student, newest
// first, with segments in authoring order.
func (s *DefaultStudentService) ListRoutines(ctx context.Context, actor Actor) ([]RoutineSummary, error) {
	if err := RequireStudent(actor); err != nil {
		return nil, err
	}

	routines, err := s.repo.Routine().ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list assigned routines: %v", ErrInternalError, err)
	}
	return toRoutineSummaries(routines), nil
}

// GetRoutine returns one assigned routine. An unassigned or unknown routine is
// not found either way; the response never exposes the roster.
func (s *DefaultStudentService) GetRoutine(ctx context.Context, actor Actor, routineID uint) (*RoutineDetail, error) {
	if err := RequireStudent(actor); err != nil {
		return nil, err
	}

	routine, err := s.repo.Routine().GetAssigned(ctx, actor.ID, routineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: routine not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to load routine: %v", ErrInternalError, err)
	}

	return toRoutineDetail(routine, false), nil
}
