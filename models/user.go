// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model. One record per phone number; the phone is the lookup key
// for every auth operation.
type User struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email       string             `json:"email" bson:"email"`
	Phone       string             `json:"phone" bson:"phone"`
	OTPInfo     *OTPInfo           `json:"otpInfo,omitempty" bson:"otpInfo,omitempty"`
	HasPaid     bool               `json:"hasPaid" bson:"hasPaid"`
	PaystackRef string             `json:"paystackRef,omitempty" bson:"paystackRef,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// OTPInfo holds the single outstanding OTP for a user. Issuing a new code
// replaces the whole struct, so only the last issued code can ever validate.
type OTPInfo struct {
	OTP       string    `json:"otp" bson:"otp"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}

// Response is the standard JSON envelope for all API responses
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
