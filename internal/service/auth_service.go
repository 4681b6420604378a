package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/otpauth/internal/metrics"
	"github.com/xxxsen/otpauth/internal/model"
	appErr "github.com/xxxsen/otpauth/internal/pkg/errors"
	"github.com/xxxsen/otpauth/internal/pkg/otp"
	"github.com/xxxsen/otpauth/internal/pkg/password"
	"github.com/xxxsen/otpauth/internal/session"
)

const (
	DefaultOTPTTL      = 5 * time.Minute
	DefaultMailTimeout = 10 * time.Second

	otpMailSubject = "Verify Your Email - OTP"

	msgFieldsRequired      = "All fields are required"
	msgUserExists          = "User already exists"
	msgPendingExists       = "A verification code has already been sent. Please check your email."
	msgOTPFieldsRequired   = "Email and OTP are required"
	msgOTPNotFound         = "OTP not found. Please sign up again."
	msgOTPExpired          = "OTP expired. Please sign up again."
	msgOTPInvalid          = "Invalid OTP. Please try again."
	msgInvalidCredentials  = "Invalid email or password"
	msgUnauthorizedSession = "Unauthorized"
)

type AccountStore interface {
	Create(ctx context.Context, account *model.Account) error
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByID(ctx context.Context, id string) (*model.Account, error)
}

type PendingRegistrationStore interface {
	Create(ctx context.Context, item *model.PendingRegistration) error
	FindByEmail(ctx context.Context, email string) (*model.PendingRegistration, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type AuthOptions struct {
	OTPTTL      time.Duration
	MailTimeout time.Duration
}

type AuthService struct {
	accounts    AccountStore
	pending     PendingRegistrationStore
	sender      EmailSender
	issuer      *session.Issuer
	otpGen      otp.Generator
	otpTTL      time.Duration
	mailTimeout time.Duration
	now         func() time.Time
	newID       func() string
}

func NewAuthService(accounts AccountStore, pending PendingRegistrationStore, sender EmailSender, issuer *session.Issuer, otpGen otp.Generator, opts AuthOptions) *AuthService {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = DefaultOTPTTL
	}
	if opts.MailTimeout <= 0 {
		opts.MailTimeout = DefaultMailTimeout
	}
	return &AuthService{
		accounts:    accounts,
		pending:     pending,
		sender:      sender,
		issuer:      issuer,
		otpGen:      otpGen,
		otpTTL:      opts.OTPTTL,
		mailTimeout: opts.MailTimeout,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Signup stores an unverified registration and mails its OTP. No account
// exists until VerifyOTP succeeds.
func (s *AuthService) Signup(ctx context.Context, name, email, plainPassword string) (err error) {
	defer func() { metrics.RecordOutcome(metrics.OpSignup, outcome(err)) }()

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || plainPassword == "" {
		return appErr.WithMessage(appErr.ErrInvalid, msgFieldsRequired)
	}
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return appErr.WithMessage(appErr.ErrConflict, msgUserExists)
	} else if !appErr.IsNotFound(err) {
		return fmt.Errorf("find account: %w", err)
	}

	now := s.now().Unix()
	existing, err := s.pending.FindByEmail(ctx, email)
	switch {
	case err == nil && !existing.IsExpired(now):
		return appErr.WithMessage(appErr.ErrConflict, msgPendingExists)
	case err == nil:
		if err := s.pending.DeleteByEmail(ctx, email); err != nil {
			return fmt.Errorf("replace expired registration: %w", err)
		}
	case !appErr.IsNotFound(err):
		return fmt.Errorf("find pending registration: %w", err)
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	code, err := s.otpGen.Generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	item := &model.PendingRegistration{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		OTPCode:      code,
		ExpiresAt:    now + int64(s.otpTTL/time.Second),
		Ctime:        now,
	}
	if err := s.pending.Create(ctx, item); err != nil {
		if appErr.IsConflict(err) {
			return appErr.WithMessage(appErr.ErrConflict, msgPendingExists)
		}
		return fmt.Errorf("create pending registration: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()
	body := fmt.Sprintf("Your OTP code is %d. It is valid for %d minutes.", code, int(s.otpTTL/time.Minute))
	if err := s.sender.Send(sendCtx, email, otpMailSubject, body); err != nil {
		metrics.RecordMailFailure()
		// an undelivered code must not block the next signup
		if delErr := s.pending.DeleteByEmail(context.WithoutCancel(ctx), email); delErr != nil {
			logutil.GetLogger(ctx).Error("rollback pending registration failed",
				zap.String("email", email), zap.Error(delErr))
		}
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// VerifyOTP consumes the pending registration for email and creates the
// account. A wrong code keeps the registration so the user can retry until
// it expires.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (_ *model.Account, err error) {
	defer func() { metrics.RecordOutcome(metrics.OpVerifyOTP, outcome(err)) }()

	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, appErr.WithMessage(appErr.ErrInvalid, msgOTPFieldsRequired)
	}
	item, err := s.pending.FindByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.WithMessage(appErr.ErrNotFound, msgOTPNotFound)
		}
		return nil, fmt.Errorf("find pending registration: %w", err)
	}
	now := s.now().Unix()
	if item.IsExpired(now) {
		if err := s.pending.DeleteByEmail(ctx, email); err != nil {
			return nil, fmt.Errorf("delete expired registration: %w", err)
		}
		return nil, appErr.WithMessage(appErr.ErrExpired, msgOTPExpired)
	}
	submitted, ok := otp.Parse(code)
	if !ok || submitted != item.OTPCode {
		return nil, appErr.WithMessage(appErr.ErrInvalidOTP, msgOTPInvalid)
	}

	account := &model.Account{
		ID:           s.newID(),
		Name:         item.Name,
		Email:        item.Email,
		PasswordHash: item.PasswordHash,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if appErr.IsConflict(err) {
			_ = s.pending.DeleteByEmail(ctx, email)
			return nil, appErr.WithMessage(appErr.ErrConflict, msgUserExists)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	if err := s.pending.DeleteByEmail(ctx, email); err != nil {
		// the account exists; a leftover row is removed by the sweeper
		logutil.GetLogger(ctx).Error("delete consumed registration failed",
			zap.String("email", email), zap.Error(err))
	}
	return account, nil
}

// Signin checks credentials and issues a session token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Signin(ctx context.Context, email, plainPassword string) (_ *model.Account, _ string, err error) {
	defer func() { metrics.RecordOutcome(metrics.OpSignin, outcome(err)) }()

	unauthorized := appErr.WithMessage(appErr.ErrUnauthorized, msgInvalidCredentials)
	account, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, "", unauthorized
		}
		return nil, "", fmt.Errorf("find account: %w", err)
	}
	ok, err := password.Verify(plainPassword, account.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, "", unauthorized
	}
	token, err := s.issuer.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue session: %w", err)
	}
	return account, token, nil
}

// Me resolves the account behind a session token.
func (s *AuthService) Me(ctx context.Context, token string) (_ *model.Account, err error) {
	defer func() { metrics.RecordOutcome(metrics.OpMe, outcome(err)) }()

	unauthorized := appErr.WithMessage(appErr.ErrUnauthorized, msgUnauthorizedSession)
	if token == "" {
		return nil, unauthorized
	}
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, unauthorized
	}
	account, err := s.accounts.FindByID(ctx, claims.UserID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, unauthorized
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, appErr.ErrInvalid):
		return "invalid"
	case errors.Is(err, appErr.ErrConflict):
		return "conflict"
	case errors.Is(err, appErr.ErrNotFound):
		return "not_found"
	case errors.Is(err, appErr.ErrExpired):
		return "expired"
	case errors.Is(err, appErr.ErrInvalidOTP):
		return "invalid_otp"
	case errors.Is(err, appErr.ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}
