package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fitsync/routine-service/internal/models"
	"github.com/fitsync/routine-service/internal/repositories"
)

type RoutinePostgreSQL struct {
	db *gorm.DB
}

func NewRoutinePostgreSQL(db *gorm.DB) repositories.RoutineRepository {
	return &RoutinePostgreSQL{db: db}
}

// segmentOrder keeps segments in authoring order on every read path; nothing ever
// re-sorts them by duration or name.
func segmentOrder(db *gorm.DB) *gorm.DB {
	return db.Order("routine_segments.position ASC")
}

func (r *RoutinePostgreSQL) Create(ctx context.Context, routine *models.Routine) error {
	if err := r.db.WithContext(ctx).Create(routine).Error; err != nil {
		return fmt.Errorf("failed to create routine: %w", err)
	}
	return nil
}

func (r *RoutinePostgreSQL) Update(ctx context.Context, routine *models.Routine) error {
	err := r.db.WithContext(ctx).
		Model(&models.Routine{}).
		Where("id = ?", routine.ID).
		Updates(map[string]interface{}{
			"name":        routine.Name,
			"description": routine.Description,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update routine: %w", err)
	}
	return nil
}

func (r *RoutinePostgreSQL) GetOwned(ctx context.Context, instructorID, routineID uint) (*models.Routine, error) {
	var routine models.Routine
	err := r.db.WithContext(ctx).
		Preload("Segments", segmentOrder).
		Preload("Assignments.Student").
		Where("id = ? AND instructor_id = ?", routineID, instructorID).
		First(&routine).Error
	if err != nil {
		return nil, err
	}
	return &routine, nil
}

func (r *RoutinePostgreSQL) GetAssigned(ctx context.Context, studentID, routineID uint) (*models.Routine, error) {
	var routine models.Routine
	err := r.db.WithContext(ctx).
		Preload("Segments", segmentOrder).
		Where("routines.id = ?", routineID).
		Where("EXISTS (SELECT 1 FROM routine_assignments ra WHERE ra.routine_id = routines.id AND ra.student_id = ?)", studentID).
		First(&routine).Error
	if err != nil {
		return nil, err
	}
	return &routine, nil
}

func (r *RoutinePostgreSQL) ListByInstructor(ctx context.Context, instructorID uint) ([]*models.Routine, error) {
	var routines []*models.Routine
	err := r.db.WithContext(ctx).
		Preload("Segments", segmentOrder).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&routines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}
	return routines, nil
}

func (r *RoutinePostgreSQL) ListByStudent(ctx context.Context, studentID uint) ([]*models.Routine, error) {
	var routines []*models.Routine
	err := r.db.WithContext(ctx).
		Preload("Segments", segmentOrder).
		Where("EXISTS (SELECT 1 FROM routine_assignments ra WHERE ra.routine_id = routines.id AND ra.student_id = ?)", studentID).
		Order("created_at DESC").
		Find(&routines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned routines: %w", err)
	}
	return routines, nil
}

func (r *RoutinePostgreSQL) ListByIDs(ctx context.Context, ids []uint) ([]*models.Routine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var routines []*models.Routine
	err := r.db.WithContext(ctx).
		Preload("Segments", segmentOrder).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&routines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list routines by ids: %w", err)
	}
	return routines, nil
}

func (r *RoutinePostgreSQL) CountOwned(ctx context.Context, instructorID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Routine{}).
		Where("instructor_id = ? AND id IN ?", instructorID, ids).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count owned routines: %w", err)
	}
	return count, nil
}

func (r *RoutinePostgreSQL) ReplaceSegments(ctx context.Context, routineID uint, segments []models.RoutineSegment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("routine_id = ?", routineID).Delete(&models.RoutineSegment{}).Error; err != nil {
			return fmt.Errorf("failed to clear segments: %w", err)
		}
		if len(segments) == 0 {
			return nil
		}
		for i := range segments {
			segments[i].ID = 0
			segments[i].RoutineID = routineID
			segments[i].Position = i + 1
		}
		if err := tx.Create(&segments).Error; err != nil {
			return fmt.Errorf("failed to insert segments: %w", err)
		}
		return nil
	})
}
