package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rescuenear/rescuenear_backend/models"
	"github.com/rescuenear/rescuenear_backend/repositories"
	"github.com/rescuenear/rescuenear_backend/services"
)

// AuthController sequences the signup/login/verify flows. All collaborators
// are injected so tests can substitute in-memory doubles.
type AuthController struct {
	users    repositories.UserRepository
	otp      *services.OTPService
	mailer   services.Mailer
	paystack services.PaymentVerifier
	logger   *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(users repositories.UserRepository, otp *services.OTPService, mailer services.Mailer, paystack services.PaymentVerifier) *AuthController {
	return &AuthController{
		users:    users,
		otp:      otp,
		mailer:   mailer,
		paystack: paystack,
		logger:   log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// Signup registers a new user keyed by phone and sends the first OTP.
// The account and its code are persisted before the delivery attempt, so a
// failed email leaves a valid account that a later login can recover.
func (ac *AuthController) Signup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusOK, models.Response{
			Success: false,
			Message: "Missing fields",
		})
	}

	_, err := ac.users.FindByPhone(ctx, req.Phone)
	if err == nil {
		return c.JSON(http.StatusOK, models.Response{
			Success: false,
			Message: "Phone already registered",
		})
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Server error",
		})
	}

	user := &models.User{
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := ac.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrPhoneTaken) {
			return c.JSON(http.StatusOK, models.Response{
				Success: false,
				Message: "Phone already registered",
			})
		}
		ac.logger.Printf("failed to create user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Server error",
		})
	}

	code, err := ac.otp.Issue(ctx, user)
	if err != nil {
		ac.logger.Printf("failed to issue OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to generate OTP",
		})
	}

	if err := ac.mailer.SendOTP(user.Email, code); err != nil {
		ac.logger.Printf("OTP send error: %v", err)
		return c.JSON(http.StatusOK, models.Response{
			Success: false,
			Message: "Failed to send OTP",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Signup successful! OTP sent to email.",
	})
}

// Login re-issues an OTP for an existing account. It always demands fresh
// OTP proof but never touches the payment authorization flag.
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusOK, models.Response{
			Success: false,
			Message: "Missing fields",
		})
	}

	user, err := ac.users.FindByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.JSON(http.StatusOK, models.Response{
				Success: false,
				Message: "Phone not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Server error",
		})
	}

	code, err := ac.otp.Issue(ctx, user)
	if err != nil {
		ac.logger.Printf("failed to issue OTP: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Failed to generate OTP",
		})
	}

	if err := ac.mailer.SendOTP(user.Email, code); err != nil {
		ac.logger.Printf("OTP send error: %v", err)
		return c.JSON(http.StatusOK, models.Response{
			Success: false,
			Message: "Failed to send OTP",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "OTP sent to your email",
	})
}

// VerifyOTP consumes the outstanding code for a phone. Mismatch and expiry
// share one outward message so the response does not leak which it was.
func (ac *AuthController) VerifyOTP(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusOK, models.Response{
			Success: false,
			Message: "Missing fields",
		})
	}

	err := ac.otp.Validate(ctx, req.Phone, req.OTP)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, models.Response{
			Success: true,
			Message: "OTP verified",
		})
	case errors.Is(err, repositories.ErrUserNotFound):
		return c.JSON(http.StatusOK, models.Response{
			Success: false,
			Message: "User not found",
		})
	case errors.Is(err, services.ErrOTPMismatch), errors.Is(err, services.ErrOTPExpired):
		return c.JSON(http.StatusOK, models.Response{
			Success: false,
			Message: "Invalid or expired OTP",
		})
	default:
		ac.logger.Printf("OTP validation error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Server error",
		})
	}
}

// VerifyPayment asks Paystack for the transaction status and flips the
// account's authorization flag on success. Authorization is never decided
// locally; it always reflects the authority's answer at call time.
func (ac *AuthController) VerifyPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	var req models.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusOK, models.Response{
			Success: false,
			Message: "Missing fields",
		})
	}

	user, err := ac.users.FindByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.JSON(http.StatusOK, models.Response{
				Success: false,
				Message: "Phone not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Server error",
		})
	}

	status, err := ac.paystack.VerifyTransaction(ctx, req.Reference)
	if err != nil {
		ac.logger.Printf("Paystack verify error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Verification failed",
		})
	}

	if status != "success" {
		return c.JSON(http.StatusOK, models.Response{
			Success: false,
			Message: "Payment not successful",
		})
	}

	user.HasPaid = true
	user.PaystackRef = req.Reference
	if err := ac.users.Save(ctx, user); err != nil {
		ac.logger.Printf("failed to save payment state: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Server error",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Payment verified",
	})
}
