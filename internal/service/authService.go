package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ds124wfegd/eventhub/internal/database"
	"github.com/ds124wfegd/eventhub/internal/entity"
	"github.com/ds124wfegd/eventhub/pkg/hash"
	"github.com/ds124wfegd/eventhub/pkg/jwt"
	"github.com/ds124wfegd/eventhub/pkg/mail"
	"github.com/ds124wfegd/eventhub/pkg/metrics"

	"github.com/sirupsen/logrus"
)

type RegisterRequest struct {
	Name        string       `json:"name" binding:"required,min=1,max=255"`
	DateOfBirth *entity.Date `json:"dob"`
	Email       string       `json:"email" binding:"required,email"`
	Password    string       `json:"password" binding:"required,min=6,max=72"`
}

type VerifyEmailResult struct {
	Email           string `json:"email"`
	AlreadyVerified bool   `json:"already_verified"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Otp   string `json:"otp" binding:"required"`
}

// Session is handed out once a user reaches LOGGED_IN.
type Session struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

type SocialLoginRequest struct {
	Provider  string `json:"provider" binding:"required"`
	SocialID  string `json:"social_id" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type LinkSocialRequest struct {
	Provider string `json:"provider" binding:"required"`
	SocialID string `json:"social_id" binding:"required"`
}

type UpdateProfileRequest struct {
	Name            string       `json:"name" binding:"max=255"`
	DateOfBirth     *entity.Date `json:"dob"`
	PhoneNumber     string       `json:"phone_number" binding:"max=32"`
	ProfileImageURL string       `json:"profile_image_url"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

type authService struct {
	users       database.UserRepository
	tokens      database.TokenRepository
	issuer      TokenIssuer
	mailer      Mailer
	sessions    *jwt.Manager
	frontendURL string
}

func NewAuthService(
	repos *database.Repositories,
	issuer TokenIssuer,
	mailer Mailer,
	sessions *jwt.Manager,
	frontendURL string,
) AuthService {
	return &authService{
		users:       repos.Users,
		tokens:      repos.Tokens,
		issuer:      issuer,
		mailer:      mailer,
		sessions:    sessions,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	email := normalizeEmail(req.Email)

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, entity.ErrEmailTaken
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, entity.NewInvalidInput("Password is required")
	}

	user := &entity.User{
		Name:         strings.TrimSpace(req.Name),
		DateOfBirth:  req.DateOfBirth,
		Email:        email,
		PasswordHash: passwordHash,
		LoginStatus:  entity.LoginStatusLoggedOut,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issuer.IssueVerificationToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue verification token: %w", err)
	}

	// the account stays; resend-verification recovers a lost mail
	if err := s.sendVerification(ctx, user.Email, token.Token); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"error":   err,
		}).Error("Failed to send verification email")
	}

	metrics.RecordAuthEvent("register")
	logrus.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

func (s *authService) sendVerification(ctx context.Context, to, token string) error {
	return s.mailer.Send(ctx, mail.Message{
		To:      to,
		Subject: "Verify Your Email",
		Body:    "Click to verify: " + s.frontendURL + "/verify-email?token=" + token,
	})
}

func (s *authService) sendOtp(ctx context.Context, to, code string) error {
	return s.mailer.Send(ctx, mail.Message{
		To:      to,
		Subject: "Login OTP",
		Body:    "Your OTP is: " + code,
	})
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*VerifyEmailResult, error) {
	_, user, err := s.issuer.ValidateVerificationToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if user.Verified {
		return &VerifyEmailResult{Email: user.Email, AlreadyVerified: true}, nil
	}

	applied, err := s.tokens.MarkVerified(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if !applied {
		// a concurrent request consumed the token first
		user, err = s.users.GetByID(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if !user.Verified {
			return nil, entity.ErrTokenUsed
		}
		return &VerifyEmailResult{Email: user.Email, AlreadyVerified: true}, nil
	}

	metrics.RecordAuthEvent("email_verified")
	logrus.WithField("user_id", user.ID).Info("Email verified")
	return &VerifyEmailResult{Email: user.Email}, nil
}

func (s *authService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user.Verified {
		return entity.ErrAlreadyVerified
	}

	token, err := s.issuer.IssueVerificationToken(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}
	return s.sendVerification(ctx, user.Email, token.Token)
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (int64, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return 0, entity.ErrInvalidCredentials
		}
		return 0, err
	}
	if !user.Verified {
		return 0, entity.ErrEmailNotVerified
	}
	if !hash.VerifyPassword(req.Password, user.PasswordHash) {
		metrics.RecordAuthEvent("login_failed")
		return 0, entity.ErrInvalidCredentials
	}

	if err := s.issuer.PurgeOtps(ctx, user.ID); err != nil {
		return 0, err
	}
	otp, err := s.issuer.IssueOtp(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	if err := s.users.UpdateLoginStatus(ctx, user.ID, entity.LoginStatusOtpPending); err != nil {
		return 0, err
	}

	if err := s.sendOtp(ctx, user.Email, otp.Code); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"error":   err,
		}).Error("Failed to send login OTP")
	}

	metrics.RecordAuthEvent("otp_issued")
	logrus.WithField("user_id", user.ID).Info("Login OTP issued")
	return user.ID, nil
}

func (s *authService) VerifyOtp(ctx context.Context, req *VerifyOtpRequest) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, entity.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Verified {
		return nil, entity.ErrEmailNotVerified
	}

	// only a password check moves a user to OTP_PENDING
	if user.LoginStatus != entity.LoginStatusOtpPending {
		metrics.RecordAuthEvent("otp_failed")
		return nil, entity.ErrNoLoginPending
	}

	if err := s.issuer.ConsumeOtp(ctx, user.ID, strings.TrimSpace(req.Otp)); err != nil {
		metrics.RecordAuthEvent("otp_failed")
		return nil, err
	}
	if err := s.users.UpdateLoginStatus(ctx, user.ID, entity.LoginStatusLoggedIn); err != nil {
		return nil, err
	}
	user.LoginStatus = entity.LoginStatusLoggedIn

	metrics.RecordAuthEvent("login")
	logrus.WithField("user_id", user.ID).Info("User logged in")
	return s.newSession(user)
}

func (s *authService) newSession(user *entity.User) (*Session, error) {
	token, err := s.sessions.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

func (s *authService) ResendOtp(ctx context.Context, email string) error {
	user, err := s.users.GetVerifiedByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user.LoginStatus != entity.LoginStatusOtpPending {
		return entity.ErrOtpNotFound
	}

	otp, err := s.issuer.ReissueOtp(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := s.sendOtp(ctx, user.Email, otp.Code); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}

	metrics.RecordAuthEvent("otp_resent")
	return nil
}

func (s *authService) Logout(ctx context.Context, userID int64) error {
	if err := s.users.UpdateLoginStatus(ctx, userID, entity.LoginStatusLoggedOut); err != nil {
		return err
	}
	if err := s.issuer.PurgeOtps(ctx, userID); err != nil {
		return err
	}
	metrics.RecordAuthEvent("logout")
	logrus.WithField("user_id", userID).Info("User logged out")
	return nil
}

func (s *authService) SocialLogin(ctx context.Context, req *SocialLoginRequest) (*Session, error) {
	provider, err := entity.ParseProvider(req.Provider)
	if err != nil {
		return nil, err
	}
	socialID := strings.TrimSpace(req.SocialID)

	user, err := s.users.GetBySocialID(ctx, provider, socialID)
	switch {
	case err == nil:
		user.LoginStatus = entity.LoginStatusLoggedIn
		if req.AvatarURL != "" {
			user.ProfileImageURL = req.AvatarURL
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	case errors.Is(err, entity.ErrNotFound):
		user, err = s.createSocialUser(ctx, provider, socialID, req)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	metrics.RecordAuthEvent("social_login")
	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"provider": provider,
	}).Info("Social login")
	return s.newSession(user)
}

func (s *authService) createSocialUser(ctx context.Context, provider entity.SocialProvider, socialID string, req *SocialLoginRequest) (*entity.User, error) {
	email := normalizeEmail(req.Email)

	// an existing password account has to link the provider explicitly
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, entity.ErrEmailTaken
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		Name:            name,
		Email:           email,
		Verified:        true,
		LoginStatus:     entity.LoginStatusLoggedIn,
		ProfileImageURL: req.AvatarURL,
	}
	if provider == entity.ProviderGoogle {
		user.GoogleID = socialID
	} else {
		user.FacebookID = socialID
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) LinkSocialAccount(ctx context.Context, userID int64, req *LinkSocialRequest) error {
	provider, err := entity.ParseProvider(req.Provider)
	if err != nil {
		return err
	}
	return s.users.LinkSocial(ctx, userID, provider, strings.TrimSpace(req.SocialID))
}

func (s *authService) CheckVerificationStatus(ctx context.Context, email string) (*entity.VerificationStatus, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return &entity.VerificationStatus{Email: user.Email, Verified: user.Verified}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID int64) (*entity.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *authService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*entity.User, error) {
	user, err := s.users.GetVerifiedByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.DateOfBirth != nil {
		user.DateOfBirth = req.DateOfBirth
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	}
	if req.ProfileImageURL != "" {
		user.ProfileImageURL = req.ProfileImageURL
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, req *ChangePasswordRequest) error {
	user, err := s.users.GetVerifiedByID(ctx, userID)
	if err != nil {
		return err
	}
	if !hash.VerifyPassword(req.OldPassword, user.PasswordHash) {
		return entity.ErrOldPasswordMismatch
	}

	passwordHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return entity.NewInvalidInput("New password is required")
	}
	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return err
	}

	logrus.WithField("user_id", userID).Info("Password changed")
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.sessions.ValidateToken(token)
	if err != nil {
		return nil, entity.ErrInvalidSession
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, entity.ErrInvalidSession
		}
		return nil, err
	}
	if user.LoginStatus != entity.LoginStatusLoggedIn {
		return nil, entity.ErrNotLoggedIn
	}
	return user, nil
}
