package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fitsync/routine-service/internal/events"
	"github.com/fitsync/routine-service/internal/models"
	"github.com/fitsync/routine-service/internal/repositories"
	"github.com/fitsync/routine-service/internal/validator"
)

// TokenConfig holds the signing parameters for access tokens.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// TokenClaims is the JWT claim set issued at signup/login. Subject carries the
// user id, Role the immutable account role.
type TokenClaims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// DefaultAuthService implements AuthService with bcrypt password hashing and
// HS256-signed tokens.
type DefaultAuthService struct {
	repo      repositories.Repository
	validator *validator.Validator
	publisher events.EventPublisher
	logger    *slog.Logger
	tokens    TokenConfig
}

// NewDefaultAuthService creates a new authentication service
func NewDefaultAuthService(
	repo repositories.Repository,
	validator *validator.Validator,
	publisher events.EventPublisher,
	logger *slog.Logger,
	tokens TokenConfig,
) *DefaultAuthService {
	return &DefaultAuthService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		logger:    logger,
		tokens:    tokens,
	}
}

// Signup creates an account and, for students carrying a valid instructor code,
// links them to the code's owner in the same transaction.
func (s *DefaultAuthService) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	role := models.UserRole(req.Role)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.User().ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to check email: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	if req.InstructorCode != nil && role != models.RoleStudent {
		return nil, NewValidationError("instructor_code", "only student signups may carry an instructor code", *req.InstructorCode)
	}

	// Resolve the code before opening the transaction; a bad code fails the whole
	// signup, it never creates an unlinked account.
	var instructor *models.User
	if role == models.RoleStudent && req.InstructorCode != nil {
		value := strings.ToUpper(strings.TrimSpace(*req.InstructorCode))
		code, err := s.repo.InstructorCode().GetByValue(ctx, value)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewValidationError("instructor_code", "code does not match any instructor", value)
			}
			return nil, fmt.Errorf("%w: failed to resolve instructor code: %v", ErrInternalError, err)
		}
		instructor = &code.Instructor
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password: %v", ErrInternalError, err)
	}

	user := &models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Password:  string(hash),
		Role:      role,
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.User().Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if instructor != nil {
			if err := tx.Assignment().LinkStudent(ctx, instructor.ID, user.ID); err != nil {
				return fmt.Errorf("failed to link student: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		// Covers the race where the same email signs up twice between the
		// existence check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("%w: signup failed: %v", ErrInternalError, err)
	}

	if instructor != nil {
		event := events.NewDomainEvent(events.EventStudentLinked, events.StudentLinkedEvent{
			InstructorID: instructor.ID,
			StudentID:    user.ID,
		})
		if err := s.publisher.PublishEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish student linked event",
				"student_id", user.ID,
				"error", err)
		}
	}

	s.logger.Info("User signed up",
		"user_id", user.ID,
		"role", user.Role)

	return s.buildAuthResponse(user)
}

// Login verifies credentials. A missing account and a wrong password are
// indistinguishable to the caller.
func (s *DefaultAuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.User().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: failed to load user: %v", ErrInternalError, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	s.logger.Info("User logged in",
		"user_id", user.ID,
		"role", user.Role)

	return s.buildAuthResponse(user)
}

// ParseToken validates a bearer token and extracts the actor behind it.
func (s *DefaultAuthService) ParseToken(token string) (Actor, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.tokens.Secret), nil
	}, jwt.WithIssuer(s.tokens.Issuer))
	if err != nil || !parsed.Valid {
		return Actor{}, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Actor{}, fmt.Errorf("%w: invalid token subject", ErrUnauthorized)
	}
	if !claims.Role.Valid() {
		return Actor{}, fmt.Errorf("%w: invalid token role", ErrUnauthorized)
	}

	return Actor{ID: uint(id), Role: claims.Role}, nil
}

func (s *DefaultAuthService) buildAuthResponse(user *models.User) (*AuthResponse, error) {
	token, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to issue token: %v", ErrInternalError, err)
	}
	return &AuthResponse{
		User:  user.Public(),
		Role:  user.Role,
		Token: token,
	}, nil
}

func (s *DefaultAuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.tokens.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokens.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.tokens.Secret))
}
