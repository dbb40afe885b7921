package services

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/fitsync/routine-service/internal/events"
	"github.com/fitsync/routine-service/internal/repositories"
	"github.com/fitsync/routine-service/internal/validator"
)

// ServiceManagerConfig holds everything the services need.
type ServiceManagerConfig struct {
	Repo        repositories.Repository
	RedisClient *redis.Client
	Validator   *validator.Validator
	Publisher   events.EventPublisher
	Logger      *slog.Logger
	Tokens      TokenConfig
}

// DefaultServiceManager wires and owns all services.
type DefaultServiceManager struct {
	auth       AuthService
	instructor InstructorService
	student    StudentService
	export     ExportService
	publisher  events.EventPublisher
}

// NewDefaultServiceManager creates all services with shared dependencies
func NewDefaultServiceManager(config ServiceManagerConfig) *DefaultServiceManager {
	return &DefaultServiceManager{
		auth:       NewDefaultAuthService(config.Repo, config.Validator, config.Publisher, config.Logger, config.Tokens),
		instructor: NewDefaultInstructorService(config.Repo, config.Validator, config.Publisher, config.Logger),
		student:    NewDefaultStudentService(config.Repo, config.RedisClient, config.Logger),
		export:     NewDefaultExportService(config.Repo, config.Logger),
		publisher:  config.Publisher,
	}
}

func (m *DefaultServiceManager) Auth() AuthService             { return m.auth }
func (m *DefaultServiceManager) Instructor() InstructorService { return m.instructor }
func (m *DefaultServiceManager) Student() StudentService       { return m.student }
func (m *DefaultServiceManager) Export() ExportService         { return m.export }

// Shutdown releases service-owned resources; repositories are closed by their own
// manager.
func (m *DefaultServiceManager) Shutdown(ctx context.Context) error {
	if m.publisher != nil {
		return m.publisher.Close()
	}
	return nil
}
