// models/auth.go

package models

type SignupRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

type LoginRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type VerifyPaymentRequest struct {
	Reference string `json:"reference" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}
