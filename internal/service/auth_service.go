package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prohmpiriya/eventhub/internal/domain"
	"github.com/prohmpiriya/eventhub/internal/dto"
	"github.com/prohmpiriya/eventhub/internal/repository"
	"github.com/prohmpiriya/eventhub/pkg/logger"
	"github.com/prohmpiriya/eventhub/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	JWTSecret         string
	Issuer            string
	AccessTokenExpiry time.Duration
	ResetTokenExpiry  time.Duration
	BcryptCost        int
}

// AuthService defines the interface for authentication and profile operations
type AuthService interface {
	// Register creates an account, or upgrades an existing guest account
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	// Login authenticates a user and issues an access token
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	// RequestPasswordReset issues a reset token; unknown emails are ignored
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, req *dto.ConfirmResetPasswordRequest) error
	// ValidateToken validates an access token and returns claims
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

type authService struct {
	userRepo       repository.UserRepository
	invitationRepo repository.InvitationRepository
	resetTokens    repository.ResetTokenRepository
	publisher      EventPublisher
	config         *AuthServiceConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	invitationRepo repository.InvitationRepository,
	resetTokens repository.ResetTokenRepository,
	publisher EventPublisher,
	config *AuthServiceConfig,
) AuthService {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.AccessTokenExpiry == 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	if config.ResetTokenExpiry == 0 {
		config.ResetTokenExpiry = 30 * time.Minute
	}
	if config.Issuer == "" {
		config.Issuer = "eventhub"
	}
	return &authService{
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		resetTokens:    resetTokens,
		publisher:      publisher,
		config:         config,
	}
}

type accessClaims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Register registers a new user
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	email := domain.NormalizeEmail(req.Email)
	role := domain.Role(req.Role)
	span.SetAttributes(attribute.String("email", email), attribute.String("role", req.Role))

	if !role.CanSelfRegister() {
		return nil, domain.ErrInvalidRole
	}

	password := req.Password
	if role == domain.RoleGuest {
		if password == "" {
			password = unusablePassword()
		}
	} else if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, telemetry.RecordError(span, fmt.Errorf("failed to hash password: %w", err))
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, telemetry.RecordError(span, err)
	}

	var user *domain.User
	switch {
	case existing == nil:
		user, err = s.createUser(ctx, email, string(hash), req, role)
	case existing.IsGuest() && role != domain.RoleGuest:
		user, err = s.upgradeGuest(ctx, existing, string(hash), req, role)
	default:
		return nil, domain.ErrUserAlreadyExists
	}
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	if err := s.invitationRepo.LinkUser(ctx, email, user.ID); err != nil {
		logger.WithContext(ctx).Warn("failed to link invitations", zap.String("user_id", user.ID), zap.Error(err))
	}

	span.SetAttributes(attribute.String("user_id", user.ID))

	resp := &dto.AuthResponse{User: dto.NewUserResponse(user)}
	if user.IsGuest() {
		return resp, nil
	}

	token, expiresIn, err := s.generateAccessToken(user)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	resp.AccessToken = token
	resp.TokenType = "Bearer"
	resp.ExpiresIn = expiresIn
	return resp, nil
}

func (s *authService) createUser(ctx context.Context, email, hash string, req *dto.RegisterRequest, role domain.Role) (*domain.User, error) {
	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &domain.UserProfile{UserID: user.ID, Phone: req.Phone, UpdatedAt: now}

	if err := s.userRepo.Create(ctx, user, profile); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) upgradeGuest(ctx context.Context, guest *domain.User, hash string, req *dto.RegisterRequest, role domain.Role) (*domain.User, error) {
	guest.PasswordHash = hash
	guest.Name = req.Name
	guest.Role = role
	guest.IsActive = true
	if err := s.userRepo.Update(ctx, guest); err != nil {
		return nil, err
	}

	if req.Phone != "" {
		profile, err := s.userRepo.GetProfile(ctx, guest.ID)
		if err != nil {
			return nil, err
		}
		profile.Phone = req.Phone
		if err := s.userRepo.UpsertProfile(ctx, profile); err != nil {
			return nil, err
		}
	}
	return guest, nil
}

// Login authenticates a user
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	email := domain.NormalizeEmail(req.Email)
	span.SetAttributes(attribute.String("email", email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, telemetry.RecordError(span, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.IsGuest() {
		return nil, domain.ErrGuestLogin
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	token, expiresIn, err := s.generateAccessToken(user)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		User:        dto.NewUserResponse(user),
	}, nil
}

// ChangePassword verifies the old password before replacing it
func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.change_password")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return telemetry.RecordError(span, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return domain.ErrWrongPassword
	}
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	return telemetry.RecordError(span, s.setPassword(ctx, user.ID, req.NewPassword))
}

// RequestPasswordReset stores a reset token and publishes it for delivery
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.reset_password")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return telemetry.RecordError(span, err)
	}
	if !user.IsActive {
		return nil
	}

	token, err := randomToken(32)
	if err != nil {
		return telemetry.RecordError(span, err)
	}
	if err := s.resetTokens.Save(ctx, token, user.ID, s.config.ResetTokenExpiry); err != nil {
		return telemetry.RecordError(span, err)
	}

	msg := &domain.PasswordResetMessage{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(s.config.ResetTokenExpiry).UTC(),
	}
	if err := s.publisher.PublishPasswordReset(ctx, msg); err != nil {
		return telemetry.RecordError(span, err)
	}
	return nil
}

// ConfirmPasswordReset consumes the token and sets the new password
func (s *authService) ConfirmPasswordReset(ctx context.Context, req *dto.ConfirmResetPasswordRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.confirm_reset_password")
	defer span.End()

	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	userID, err := s.resetTokens.Consume(ctx, req.Token)
	if err != nil {
		return telemetry.RecordError(span, err)
	}
	if userID == "" {
		return domain.ErrInvalidResetToken
	}
	return telemetry.RecordError(span, s.setPassword(ctx, userID, req.NewPassword))
}

func (s *authService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

// ValidateToken validates an access token and returns claims
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Claims{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// GetProfile returns the user and profile
func (s *authService) GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.get_profile")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	return &dto.ProfileResponse{User: dto.NewUserResponse(user), Profile: profile}, nil
}

// UpdateProfile applies the provided fields
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.update_profile")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	if req.Name != nil && *req.Name != user.Name {
		user.Name = *req.Name
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, telemetry.RecordError(span, err)
		}
	}

	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, telemetry.RecordError(span, err)
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.City != nil {
		profile.City = *req.City
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if err := s.userRepo.UpsertProfile(ctx, profile); err != nil {
		return nil, telemetry.RecordError(span, err)
	}

	return &dto.ProfileResponse{User: dto.NewUserResponse(user), Profile: profile}, nil
}

func (s *authService) generateAccessToken(user *domain.User) (string, int64, error) {
	now := time.Now()
	claims := accessClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenExpiry)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, int64(s.config.AccessTokenExpiry.Seconds()), nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// unusablePassword returns a random secret that is never shown to anyone
func unusablePassword() string {
	token, err := randomToken(24)
	if err != nil {
		return uuid.New().String() + uuid.New().String()
	}
	return token
}
