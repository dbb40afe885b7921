package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fitsync/routine-service/internal/events"
	"github.com/fitsync/routine-service/internal/models"
	"github.com/fitsync/routine-service/internal/repositories"
	"github.com/fitsync/routine-service/internal/repositories/postgres"
	"github.com/fitsync/routine-service/internal/validator"
)

// testEnv wires the real services over an in-memory database so tests exercise
// the same SQL paths production uses, with a mock publisher capturing events.
type testEnv struct {
	repo       repositories.Repository
	publisher  *events.MockEventPublisher
	auth       *DefaultAuthService
	instructor *DefaultInstructorService
	student    *DefaultStudentService
	export     *DefaultExportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.InstructorStudent{},
		&models.InstructorCode{},
		&models.Routine{},
		&models.RoutineSegment{},
		&models.RoutineAssignment{},
	)
	require.NoError(t, err)

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(logger)
	v := validator.New()
	tokens := TokenConfig{Secret: "test-secret", Issuer: "routine-service-test", TTL: time.Hour}

	return &testEnv{
		repo:       repo,
		publisher:  publisher,
		auth:       NewDefaultAuthService(repo, v, publisher, logger, tokens),
		instructor: NewDefaultInstructorService(repo, v, publisher, logger),
		student:    NewDefaultStudentService(repo, nil, logger),
		export:     NewDefaultExportService(repo, logger),
	}
}

func (e *testEnv) signupInstructor(t *testing.T, email string) Actor {
	t.Helper()
	resp, err := e.auth.Signup(context.Background(), &SignupRequest{
		FirstName: "Ida",
		LastName:  "Coach",
		Email:     email,
		Password:  "password123",
		Role:      string(models.RoleInstructor),
	})
	require.NoError(t, err)
	return Actor{ID: resp.User.ID, Role: models.RoleInstructor}
}

func (e *testEnv) signupStudent(t *testing.T, email string, code *string) Actor {
	t.Helper()
	resp, err := e.auth.Signup(context.Background(), &SignupRequest{
		FirstName:      "Sam",
		LastName:       "Trainee",
		Email:          email,
		Password:       "password123",
		Role:           string(models.RoleStudent),
		InstructorCode: code,
	})
	require.NoError(t, err)
	return Actor{ID: resp.User.ID, Role: models.RoleStudent}
}

func (e *testEnv) instructorCode(t *testing.T, actor Actor) string {
	t.Helper()
	resp, err := e.instructor.GetCode(context.Background(), actor)
	require.NoError(t, err)
	return resp.Code
}

func (e *testEnv) createRoutine(t *testing.T, actor Actor, name string, durations ...int) *RoutineDetail {
	t.Helper()
	segments := make([]RoutineSegmentRequest, 0, len(durations))
	for i, d := range durations {
		segments = append(segments, RoutineSegmentRequest{
			Name:     fmt.Sprintf("Segment %d", i+1),
			Duration: d,
		})
	}
	detail, err := e.instructor.CreateRoutine(context.Background(), actor, &RoutineCreateRequest{
		Name:     name,
		Segments: segments,
	})
	require.NoError(t, err)
	return detail
}
