package repositories

import "context"

// Repository bundles all repository interfaces behind one handle.
type Repository interface {
	User() UserRepository
	InstructorCode() InstructorCodeRepository
	Routine() RoutineRepository
	Assignment() AssignmentRepository

	// WithTransaction runs fn against a Repository bound to a single transaction;
	// any error rolls the whole transaction back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
