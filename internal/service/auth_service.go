package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cletusgizo/ZapPay-Global/internal/config"
	"github.com/cletusgizo/ZapPay-Global/internal/events"
	"github.com/cletusgizo/ZapPay-Global/internal/hashing"
	"github.com/cletusgizo/ZapPay-Global/internal/mail"
	"github.com/cletusgizo/ZapPay-Global/internal/model"
	"github.com/cletusgizo/ZapPay-Global/internal/otp"
	"github.com/cletusgizo/ZapPay-Global/internal/repository"
	"github.com/cletusgizo/ZapPay-Global/internal/token"
	"github.com/cletusgizo/ZapPay-Global/internal/util"
)

var (
	ErrEmailRequired        = errors.New("email is required")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrVerificationRequired = errors.New("please verify your account, a new OTP has been sent to your email")
	ErrAlreadyVerified      = errors.New("user is already verified")
	ErrNoEmailOnFile        = errors.New("no email address found for this user")
	ErrOTPNotFound          = errors.New("no OTP found, please request a new one")
	ErrOTPExpired           = errors.New("OTP has expired, please request a new one")
	ErrOTPInvalid           = errors.New("invalid OTP")
	ErrOTPDeliveryFailed    = errors.New("failed to send verification email")
	ErrResetTokenInvalid    = errors.New("invalid or expired reset token")
	ErrRefreshTokenInvalid  = errors.New("invalid refresh token")
	ErrResetDeliveryFailed  = errors.New("failed to process password reset request")
)

// ForgotPasswordMessage is returned whether or not the email is on file, so
// the endpoint cannot be used to enumerate accounts.
const ForgotPasswordMessage = "If an account with this email exists, a password reset link has been sent."

// AuthService enforces the rules that move an account between states and
// gates issuance of credentials and tokens.
type AuthService struct {
	users  repository.UserRepository
	hasher *hashing.Hasher
	signer *token.Signer
	mailer mail.Mailer
	events events.Publisher
	otpCfg config.OTPConfig
	logger *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	hasher *hashing.Hasher,
	signer *token.Signer,
	mailer mail.Mailer,
	publisher events.Publisher,
	otpCfg config.OTPConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		signer: signer,
		mailer: mailer,
		events: publisher,
		otpCfg: otpCfg,
		logger: logger,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
}

type RegisterResult struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
}

type TokenPair struct {
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	User         *model.PublicUser `json:"user"`
	Message      string            `json:"message"`
}

// Register creates an unverified account and issues the first OTP challenge.
// If OTP delivery fails the account is deleted again so registration never
// leaves an unreachable unverified account behind.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	req.Email = util.NormalizeEmail(req.Email)
	req.Phone = util.NormalizePhone(req.Phone)
	if req.Email == "" {
		return nil, ErrEmailRequired
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, repository.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	user := &model.User{
		Email:      req.Email,
		Phone:      req.Phone,
		IsVerified: false,
	}
	if req.Password != "" {
		hash, err := s.hasher.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, user.ID, user.Email); err != nil {
		// Compensating rollback: the account must not linger unreachable.
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("Failed to roll back user after OTP delivery failure",
				util.String("user_id", user.ID),
				util.ErrorField(delErr))
		}
		s.logger.Warn("Registration rolled back, OTP delivery failed",
			util.String("user_id", user.ID),
			util.ErrorField(err))
		return nil, ErrOTPDeliveryFailed
	}

	s.events.Publish(ctx, events.EventUserRegistered, user.ID, user.Email)

	s.logger.Info("User registered, OTP sent",
		util.String("user_id", user.ID))

	return &RegisterResult{
		UserID:  user.ID,
		Message: "User registered successfully. Please check your email for OTP verification.",
	}, nil
}

// Login authenticates by email or phone. Unknown identity and wrong password
// both collapse to ErrInvalidCredentials so the response never reveals which
// factor failed. Unverified accounts get a fresh OTP instead of tokens.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	var (
		user *model.User
		err  error
	)
	switch {
	case req.Email != "":
		user, err = s.users.GetByEmail(ctx, util.NormalizeEmail(req.Email))
	case req.Phone != "":
		user, err = s.users.GetByPhone(ctx, util.NormalizePhone(req.Phone))
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsVerified {
		if user.Email != "" {
			if err := s.issueOTP(ctx, user.ID, user.Email); err != nil {
				s.logger.Warn("Failed to deliver OTP on unverified login",
					util.String("user_id", user.ID),
					util.ErrorField(err))
			}
		}
		return nil, ErrVerificationRequired
	}

	if req.Password != "" {
		if user.PasswordHash == "" {
			return nil, ErrInvalidCredentials
		}
		if err := s.hasher.ComparePassword(user.PasswordHash, req.Password); err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	pair, err := s.mintTokenPair(user)
	if err != nil {
		return nil, err
	}
	pair.Message = "Login successful"

	s.events.Publish(ctx, events.EventUserLogin, user.ID, user.Email)

	s.logger.Info("User logged in",
		util.String("user_id", user.ID))

	return pair, nil
}

// VerifyOTP consumes an outstanding challenge. An expired code is cleared as
// a side effect; the caller must request a new one.
func (s *AuthService) VerifyOTP(ctx context.Context, userID, code string) (*TokenPair, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.HasPendingOTP() {
		return nil, ErrOTPNotFound
	}

	if otp.Expired(user.OTPExpiresAt) {
		if err := s.users.ClearOTP(ctx, userID); err != nil {
			s.logger.Error("Failed to clear expired OTP",
				util.String("user_id", userID),
				util.ErrorField(err))
		}
		return nil, ErrOTPExpired
	}

	if user.OTP != code {
		return nil, ErrOTPInvalid
	}

	if err := s.users.MarkVerified(ctx, userID); err != nil {
		return nil, err
	}
	user.IsVerified = true
	user.OTP = ""
	user.OTPExpiresAt = nil

	// Welcome notice is best-effort; the verification stands either way.
	if user.Email != "" {
		if err := s.mailer.SendWelcome(ctx, user.Email); err != nil {
			s.logger.Warn("Failed to send welcome email",
				util.String("user_id", userID),
				util.ErrorField(err))
		}
	}

	pair, err := s.mintTokenPair(user)
	if err != nil {
		return nil, err
	}
	pair.Message = "Account verified successfully"

	s.events.Publish(ctx, events.EventUserVerified, user.ID, user.Email)

	s.logger.Info("User verified",
		util.String("user_id", userID))

	return pair, nil
}

// ResendOTP regenerates and redelivers the challenge, invalidating any prior
// code.
func (s *AuthService) ResendOTP(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if user.Email == "" {
		return "", ErrNoEmailOnFile
	}
	if user.IsVerified {
		return "", ErrAlreadyVerified
	}

	if err := s.issueOTP(ctx, user.ID, user.Email); err != nil {
		s.logger.Warn("Failed to resend OTP",
			util.String("user_id", userID),
			util.ErrorField(err))
		return "", ErrOTPDeliveryFailed
	}

	return "OTP sent successfully", nil
}

// ForgotPassword returns the same generic message whether or not the email
// is on file.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, util.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ForgotPasswordMessage, nil
		}
		return "", err
	}

	resetToken, err := s.signer.Sign(user.ID, user.Email, token.KindReset)
	if err != nil {
		return "", err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetToken); err != nil {
		s.logger.Warn("Failed to deliver password reset email",
			util.String("user_id", user.ID),
			util.ErrorField(err))
		return "", ErrResetDeliveryFailed
	}

	s.logger.Info("Password reset link sent",
		util.String("user_id", user.ID))

	return ForgotPasswordMessage, nil
}

// ResetPassword verifies a reset token and persists the new password. The
// token must verify against the reset secret and carry the reset-type
// discriminator; the signer does not interpret claim semantics, so the type
// check happens here.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error) {
	claims, err := s.signer.Verify(resetToken, token.KindReset)
	if err != nil {
		return "", ErrResetTokenInvalid
	}
	if claims.Type != token.TypePasswordReset {
		return "", ErrResetTokenInvalid
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdatePassword(ctx, claims.Subject, hash); err != nil {
		return "", err
	}

	s.logger.Info("Password reset",
		util.String("user_id", claims.Subject))

	return "Password reset successfully", nil
}

// RefreshToken exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.signer.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return "", ErrRefreshTokenInvalid
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil || !user.IsVerified {
		return "", ErrRefreshTokenInvalid
	}

	return s.signer.Sign(user.ID, user.Email, token.KindAccess)
}

// Logout is advisory only: tokens are stateless and remain valid until
// natural expiry.
func (s *AuthService) Logout(ctx context.Context, userID string) string {
	s.logger.Info("User logged out",
		util.String("user_id", userID))
	return "Logged out successfully"
}

// Profile returns the redacted account view for the given subject.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.PublicUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// issueOTP overwrites any outstanding challenge and delivers the new code.
func (s *AuthService) issueOTP(ctx context.Context, userID, email string) error {
	code, expiresAt, err := otp.Generate(s.otpCfg.Length, s.otpCfg.TTL)
	if err != nil {
		return err
	}
	if err := s.users.SetOTP(ctx, userID, code, expiresAt); err != nil {
		return err
	}
	return s.mailer.SendOTP(ctx, email, code)
}

func (s *AuthService) mintTokenPair(user *model.User) (*TokenPair, error) {
	access, err := s.signer.Sign(user.ID, user.Email, token.KindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signer.Sign(user.ID, user.Email, token.KindRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Public(),
	}, nil
}
