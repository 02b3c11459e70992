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

var (
	// ErrUserNotFound is returned when no user exists for the given phone
	ErrUserNotFound = errors.New("user not found")
	// ErrPhoneTaken is returned when creating a user whose phone already exists
	ErrPhoneTaken = errors.New("phone already registered")
)

// UserRepository is the identity store consumed by the auth flows. Accounts
// are keyed by phone number; Save upserts the whole document, so concurrent
// writers on one phone are last-write-wins.
type UserRepository interface {
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
}

// MongoUserRepository is the MongoDB-backed UserRepository
type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Client) *MongoUserRepository {
	return &MongoUserRepository{
		collection: config.GetCollection(db, "users"),
	}
}

func (r *MongoUserRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrPhoneTaken
		}
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *MongoUserRepository) Save(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	user.UpdatedAt = time.Now()

	filter := bson.M{"phone": user.Phone}
	update := bson.M{"$set": bson.M{
		"email":       user.Email,
		"otpInfo":     user.OTPInfo,
		"hasPaid":     user.HasPaid,
		"paystackRef": user.PaystackRef,
		"updatedAt":   user.UpdatedAt,
	}}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}
