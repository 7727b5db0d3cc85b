package services

import (
	"context"
	"errors"
	"strings"

	"talent2income_backend/internal/auth"
	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories"
	"talent2income_backend/internal/services/dto"
	"talent2income_backend/pkg/apperrors"
)

type UserService interface {
	// Auth
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)

	// Profile
	Me(ctx context.Context, userID uint64) (*models.User, error)
	GetUser(ctx context.Context, userID uint64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateProfileRequest) (*models.User, error)

	// Blocks
	Block(ctx context.Context, blockerID, blockedID uint64) error
	Unblock(ctx context.Context, blockerID, blockedID uint64) error

	// Admin
	SetStatus(ctx context.Context, adminID, userID uint64, req *dto.UpdateUserStatusRequest) (*models.User, error)
}

type userService struct {
	deps       Deps
	tokens     *auth.TokenManager
	autoVerify bool
}

func NewUserService(deps Deps, tokens *auth.TokenManager, autoVerify bool) UserService {
	return &userService{deps: deps, tokens: tokens, autoVerify: autoVerify}
}

// ---------------- Auth ----------------

func (s *userService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ValidationError(map[string]string{"password": err.Error()})
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := s.deps.now()
	user := &models.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         models.UserRoleUser,
		Status:       models.UserStatusActive,
		IsVerified:   s.autoVerify,
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	err = s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		_, err := tx.Users().GetByEmail(ctx, user.Email)
		if err == nil {
			return apperrors.ErrEmailAlreadyExists
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.ErrEmailAlreadyExists
			}
			return err
		}
		rec.Mutated(events.UserMutation(events.OpCreated, user))
		rec.Emit(events.UserRegistered{UserID: user.ID, Email: user.Email, Name: user.Name})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.authResponse(user)
}

func (s *userService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.deps.Store.Users().GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, mapStoreError(err)
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status == models.UserStatusSuspended || user.Status == models.UserStatusBanned {
		return nil, apperrors.ErrAccountInactive
	}
	return s.authResponse(user)
}

func (s *userService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        user,
	}, nil
}

// ---------------- Profile ----------------

func (s *userService) Me(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := loadActor(ctx, s.deps.Store, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := loadUser(ctx, s.deps.Store, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateProfileRequest) (*models.User, error) {
	var result *models.User
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		user, err := loadActor(ctx, tx, userID)
		if err != nil {
			return err
		}
		var changed []string
		if req.Name != nil {
			user.Name = strings.TrimSpace(*req.Name)
			changed = append(changed, "name")
		}
		if req.Bio != nil {
			user.Bio = *req.Bio
			changed = append(changed, "bio")
		}
		if len(changed) > 0 {
			user.UpdatedAt = s.deps.now()
			if err := tx.Users().Update(ctx, user); err != nil {
				return err
			}
			rec.Mutated(events.UserMutation(events.OpUpdated, user, changed...))
		}
		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ---------------- Blocks ----------------

func (s *userService) Block(ctx context.Context, blockerID, blockedID uint64) error {
	if blockerID == blockedID {
		return apperrors.ValidationError(map[string]string{"user_id": "Cannot block yourself"})
	}
	return s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		if _, err := loadActor(ctx, tx, blockerID); err != nil {
			return err
		}
		if _, err := loadUser(ctx, tx, blockedID); err != nil {
			return err
		}
		return tx.Blocks().Block(ctx, blockerID, blockedID)
	})
}

func (s *userService) Unblock(ctx context.Context, blockerID, blockedID uint64) error {
	return s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		if _, err := loadActor(ctx, tx, blockerID); err != nil {
			return err
		}
		return tx.Blocks().Unblock(ctx, blockerID, blockedID)
	})
}

// ---------------- Admin ----------------

func (s *userService) SetStatus(ctx context.Context, adminID, userID uint64, req *dto.UpdateUserStatusRequest) (*models.User, error) {
	var result *models.User
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		admin, err := loadActor(ctx, tx, adminID)
		if err != nil {
			return err
		}
		if !admin.IsAdmin() {
			return apperrors.ErrPermissionDenied
		}
		user, err := loadUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		changed := []string{"status"}
		user.Status = req.Status
		if req.IsVerified != nil {
			user.IsVerified = *req.IsVerified
			changed = append(changed, "is_verified")
		}
		user.UpdatedAt = s.deps.now()
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		rec.Mutated(events.UserMutation(events.OpUpdated, user, changed...))
		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
