package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/fitsync/routine-service/internal/cache"
	"github.com/fitsync/routine-service/internal/models"
	"github.com/fitsync/routine-service/internal/repositories"
)

type InstructorCodePostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewInstructorCodePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.InstructorCodeRepository {
	return &InstructorCodePostgreSQL{
		db:    db,
		cache: cache.NewCacheHelper(redisClient, cache.CodeCacheConfig.Prefix),
	}
}

func (r *InstructorCodePostgreSQL) Create(ctx context.Context, code *models.InstructorCode) error {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return fmt.Errorf("failed to create instructor code: %w", err)
	}
	return nil
}

func (r *InstructorCodePostgreSQL) GetByInstructor(ctx context.Context, instructorID uint) (*models.InstructorCode, error) {
	var code models.InstructorCode
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// cachedCode carries the code row plus the owner explicitly; the model's
// Instructor association is excluded from JSON and would not survive the cache
// round trip on its own.
type cachedCode struct {
	ID           uint              `json:"id"`
	InstructorID uint              `json:"instructor_id"`
	Value        string            `json:"value"`
	Instructor   models.PublicUser `json:"instructor"`
}

func (r *InstructorCodePostgreSQL) GetByValue(ctx context.Context, value string) (*models.InstructorCode, error) {
	cacheKey := fmt.Sprintf("value:%s", value)

	var cached cachedCode
	if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &models.InstructorCode{
			ID:           cached.ID,
			InstructorID: cached.InstructorID,
			Value:        cached.Value,
			Instructor: models.User{
				ID:        cached.Instructor.ID,
				FirstName: cached.Instructor.FirstName,
				LastName:  cached.Instructor.LastName,
				Email:     cached.Instructor.Email,
				Role:      models.RoleInstructor,
			},
		}, nil
	}

	var code models.InstructorCode
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("value = ?", value).
		First(&code).Error
	if err != nil {
		return nil, err
	}

	// A regenerate invalidates this key explicitly; TTL is the backstop.
	_ = r.cache.Set(ctx, cacheKey, &cachedCode{
		ID:           code.ID,
		InstructorID: code.InstructorID,
		Value:        code.Value,
		Instructor:   code.Instructor.Public(),
	}, cache.CodeCacheConfig.TTL)

	return &code, nil
}

func (r *InstructorCodePostgreSQL) UpdateValue(ctx context.Context, instructorID uint, value string) error {
	var current models.InstructorCode
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		First(&current).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to load instructor code: %w", err)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.Create(ctx, &models.InstructorCode{InstructorID: instructorID, Value: value})
	}

	res := r.db.WithContext(ctx).
		Model(&models.InstructorCode{}).
		Where("instructor_id = ?", instructorID).
		Update("value", value)
	if res.Error != nil {
		return fmt.Errorf("failed to update instructor code: %w", res.Error)
	}

	// The old value must stop resolving the instant the new one is live.
	_ = r.cache.Delete(ctx,
		fmt.Sprintf("value:%s", current.Value),
		fmt.Sprintf("value:%s", value),
	)

	return nil
}
