package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fitsync/routine-service/internal/models"
	"github.com/fitsync/routine-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

func (r *AssignmentPostgreSQL) CreateBatch(ctx context.Context, assignments []models.RoutineAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&assignments).Error; err != nil {
		return fmt.Errorf("failed to create assignments: %w", err)
	}
	return nil
}

func (r *AssignmentPostgreSQL) DeleteForStudentByInstructor(ctx context.Context, instructorID, studentID uint) error {
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("routine_id IN (?)", r.db.Model(&models.Routine{}).Select("id").Where("instructor_id = ?", instructorID)).
		Delete(&models.RoutineAssignment{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete assignments: %w", err)
	}
	return nil
}

func (r *AssignmentPostgreSQL) ListRoutineIDsForStudentByInstructor(ctx context.Context, instructorID, studentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.RoutineAssignment{}).
		Joins("JOIN routines ON routines.id = routine_assignments.routine_id").
		Where("routine_assignments.student_id = ?", studentID).
		Where("routines.instructor_id = ?", instructorID).
		Pluck("routine_assignments.routine_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment routine ids: %w", err)
	}
	return ids, nil
}

func (r *AssignmentPostgreSQL) LinkStudent(ctx context.Context, instructorID, studentID uint) error {
	link := models.InstructorStudent{
		InstructorID: instructorID,
		StudentID:    studentID,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
	if err != nil {
		return fmt.Errorf("failed to link student: %w", err)
	}
	return nil
}

func (r *AssignmentPostgreSQL) GetInstructorForStudent(ctx context.Context, studentID uint) (*models.User, error) {
	var instructor models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN instructor_students ON instructor_students.instructor_id = users.id").
		Where("instructor_students.student_id = ?", studentID).
		First(&instructor).Error
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *AssignmentPostgreSQL) ListStudentsForInstructor(ctx context.Context, instructorID uint) ([]*models.User, error) {
	linked := r.db.Model(&models.InstructorStudent{}).
		Select("student_id").
		Where("instructor_id = ?", instructorID)
	assigned := r.db.Model(&models.RoutineAssignment{}).
		Select("routine_assignments.student_id").
		Joins("JOIN routines ON routines.id = routine_assignments.routine_id").
		Where("routines.instructor_id = ?", instructorID)

	var students []*models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", models.RoleStudent).
		Where("id IN (?) OR id IN (?)", linked, assigned).
		Order("created_at DESC").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (r *AssignmentPostgreSQL) IsStudentOfInstructor(ctx context.Context, instructorID, studentID uint) (bool, error) {
	linked := r.db.Model(&models.InstructorStudent{}).
		Select("student_id").
		Where("instructor_id = ?", instructorID)
	assigned := r.db.Model(&models.RoutineAssignment{}).
		Select("routine_assignments.student_id").
		Joins("JOIN routines ON routines.id = routine_assignments.routine_id").
		Where("routines.instructor_id = ?", instructorID)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", studentID, models.RoleStudent).
		Where("id IN (?) OR id IN (?)", linked, assigned).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check student linkage: %w", err)
	}
	return count > 0, nil
}
