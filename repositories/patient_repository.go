package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rescuenear/rescuenear_backend/config"
	"github.com/rescuenear/rescuenear_backend/models"
)

// ErrNoPatients is returned by FindLatest when the intake log is empty
var ErrNoPatients = errors.New("no patient found")

// PatientRepository is the append-and-read-latest store for intake records
type PatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	FindLatest(ctx context.Context) (*models.Patient, error)
}

// MongoPatientRepository is the MongoDB-backed PatientRepository
type MongoPatientRepository struct {
	collection *mongo.Collection
}

func NewPatientRepository(db *mongo.Client) *MongoPatientRepository {
	return &MongoPatientRepository{
		collection: config.GetCollection(db, "patients"),
	}
}

func (r *MongoPatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	patient.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, patient)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		patient.ID = oid
	}
	return nil
}

func (r *MongoPatientRepository) FindLatest(ctx context.Context) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var patient models.Patient
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&patient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoPatients
		}
		return nil, err
	}
	return &patient, nil
}
