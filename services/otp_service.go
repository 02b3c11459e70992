package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/rescuenear/rescuenear_backend/models"
	"github.com/rescuenear/rescuenear_backend/repositories"
)

// otpTTL is how long an issued code stays valid
const otpTTL = 5 * time.Minute

var (
	// ErrOTPMismatch is returned when the supplied code does not equal the
	// outstanding one, or when no code is outstanding at all
	ErrOTPMismatch = errors.New("otp mismatch")
	// ErrOTPExpired is returned when the supplied code matches but its
	// validity window has passed
	ErrOTPExpired = errors.New("otp expired")
)

// OTPService issues and validates one-time passcodes. Each user carries at
// most one outstanding code; issuing overwrites it, validating consumes it.
type OTPService struct {
	users repositories.UserRepository

	// overridable in tests
	now      func() time.Time
	generate func() (string, error)
}

// NewOTPService creates an OTP service backed by the given user repository
func NewOTPService(users repositories.UserRepository) *OTPService {
	return &OTPService{
		users:    users,
		now:      time.Now,
		generate: GenerateOTP,
	}
}

// GenerateOTP returns a uniform 4-digit code in [1000, 9999]
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}

// Issue generates a fresh code for the user, persists it with its expiry and
// returns it for delivery. Any previously outstanding code is overwritten, so
// the last issued code is the only one that can validate.
func (s *OTPService) Issue(ctx context.Context, user *models.User) (string, error) {
	code, err := s.generate()
	if err != nil {
		return "", err
	}

	user.OTPInfo = &models.OTPInfo{
		OTP:       code,
		ExpiresAt: s.now().Add(otpTTL),
	}

	if err := s.users.Save(ctx, user); err != nil {
		return "", err
	}
	return code, nil
}

// Validate checks the supplied code against the user's outstanding one.
// Codes are compared as strings, not numbers, so "0123" never equals "123".
// On success the code is cleared and the user persisted; the code cannot be
// used twice. On failure nothing is mutated. Returns ErrUserNotFound,
// ErrOTPMismatch or ErrOTPExpired.
func (s *OTPService) Validate(ctx context.Context, phone, code string) error {
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return err
	}

	if user.OTPInfo == nil || user.OTPInfo.OTP != code {
		return ErrOTPMismatch
	}
	if !s.now().Before(user.OTPInfo.ExpiresAt) {
		return ErrOTPExpired
	}

	user.OTPInfo = nil
	return s.users.Save(ctx, user)
}
