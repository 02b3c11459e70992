// models/patient.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Patient represents a single intake record. Records are appended and read
// back newest-first; nothing ever updates them.
type Patient struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Fullname  string             `json:"fullname" bson:"fullname"`
	Age       int                `json:"age" bson:"age"`
	Location  string             `json:"location" bson:"location"`
	Condition string             `json:"condition" bson:"condition"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type PatientRequest struct {
	Fullname  string `json:"fullname" validate:"required"`
	Age       int    `json:"age" validate:"required,gt=0"`
	Location  string `json:"location" validate:"required"`
	Condition string `json:"condition" validate:"required"`
}
