package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/visitordesk/visitor-service/internal/auth"
	"github.com/visitordesk/visitor-service/internal/domain"
	"github.com/visitordesk/visitor-service/internal/events"
	"github.com/visitordesk/visitor-service/internal/repository"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

// User rule violation codes.
const (
	CodeInvalidUserRole        = "INVALID_USER_ROLE"
	CodeUsernameExists         = "USERNAME_EXISTS"
	CodeSelfDeletionNotAllowed = "SELF_DELETION_NOT_ALLOWED"
	CodeUnauthorizedDeletion   = "UNAUTHORIZED_DELETION"
)

// UserService manages operator accounts.
type UserService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CreateUserInput carries a new account.
type CreateUserInput struct {
	Username string
	Password string
	Role     domain.Role
	Email    *string
}

func NewUserService(users repository.UserRepository, hasher *auth.PasswordHasher, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, hasher: hasher, dispatcher: dispatcher, logger: logger}
}

// Create stores a new account whose role must equal required.
func (s *UserService) Create(ctx context.Context, input CreateUserInput, required domain.Role) (*domain.User, error) {
	if input.Role != required {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("User's role must be %s!", required), CodeInvalidUserRole)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewBadRequest("Username already exists!", CodeUsernameExists)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Get returns an account regardless of its active flag.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "User", id)
	}
	return user, nil
}

// List returns accounts, newest first.
func (s *UserService) List(ctx context.Context, includeInactive bool) ([]domain.User, error) {
	users, err := s.users.List(ctx, repository.UserFilter{IncludeInactive: includeInactive})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// ChangeOwnPassword replaces the caller's password after checking the current one.
func (s *UserService) ChangeOwnPassword(ctx context.Context, userID int64, current, next string) (*domain.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok, err := s.hasher.Matches(user.PasswordHash, current)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, apperrors.NewBadRequest("Current password is incorrect!", "")
	}
	return s.setPassword(ctx, user, next)
}

// ResetPassword sets another account's password and notifies its owner.
func (s *UserService) ResetPassword(ctx context.Context, actor *auth.Identity, userID int64, next string) (*domain.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err = s.setPassword(ctx, user, next)
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		ev := events.NewEvent(events.EventUserPasswordReset, actorOf(actor), events.UserPasswordResetPayload{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			ResetBy:  actorOf(actor).Username,
		})
		if err := s.dispatcher.Publish(ctx, ev); err != nil {
			s.logger.Warn("publish password reset event", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}

func (s *UserService) setPassword(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapRepoError(err, "User", user.ID)
	}
	return user, nil
}

// UpdateProfile renames an account and optionally replaces its email.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, username string, email *string) (*domain.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if username != user.Username {
		existing, err := s.users.GetByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != userID:
			return nil, apperrors.NewBadRequest("Username already exists!", CodeUsernameExists)
		case err != nil && !repository.IsNotFound(err):
			return nil, apperrors.NewInternalError(err)
		}
	}

	user.Username = username
	if email != nil {
		user.Email = email
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewBadRequest("Username already exists!", CodeUsernameExists)
		}
		return nil, mapRepoError(err, "User", userID)
	}
	return user, nil
}

// Deactivate soft deletes an account. Operators cannot remove themselves and
// only a superadmin may remove another superadmin.
func (s *UserService) Deactivate(ctx context.Context, actor *auth.Identity, userID int64) (*domain.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actor != nil && actor.SubjectID == userID {
		return nil, apperrors.NewBadRequest("Cannot delete your own account!", CodeSelfDeletionNotAllowed)
	}
	if user.Role == domain.RoleSuperAdmin && (actor == nil || actor.Role != domain.RoleSuperAdmin) {
		return nil, apperrors.NewBadRequest("Only SUPERADMIN can delete another SUPERADMIN!", CodeUnauthorizedDeletion)
	}

	user, err = s.users.SetActive(ctx, userID, false)
	if err != nil {
		return nil, mapRepoError(err, "User", userID)
	}
	return user, nil
}

// Restore reactivates a soft deleted account.
func (s *UserService) Restore(ctx context.Context, userID int64) (*domain.User, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	user, err := s.users.SetActive(ctx, userID, true)
	if err != nil {
		return nil, mapRepoError(err, "User", userID)
	}
	return user, nil
}

func actorOf(identity *auth.Identity) events.Actor {
	if identity == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: identity.SubjectID, Username: identity.Username}
}
