package identities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/roles"
	"github.com/dmitrijs2005/scams/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding identities.
const CollectionName = "users"

// identityDocument is the stored shape. Field names match the documents
// written by earlier deployments of the API.
type identityDocument struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	Email                string             `bson:"email"`
	Name                 string             `bson:"name"`
	Password             string             `bson:"password"`
	Role                 string             `bson:"role"`
	CreatedAt            time.Time          `bson:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt"`
	LastLogin            *time.Time         `bson:"lastLogin,omitempty"`
	ResetPasswordToken   *string            `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires *time.Time         `bson:"resetPasswordExpires,omitempty"`
}

func (d *identityDocument) toModel() *models.Identity {
	i := &models.Identity{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.Password,
		Role:         roles.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		LastLogin:    d.LastLogin,
	}
	if d.ResetPasswordToken != nil && d.ResetPasswordExpires != nil {
		i.ResetPasswordToken = d.ResetPasswordToken
		i.ResetPasswordExpires = d.ResetPasswordExpires
	}
	return i
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// EnsureIndexes creates the unique email index and the sparse index used by
// the expired-token purge. It is idempotent.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "resetPasswordExpires", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("reset_expires"),
		},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	doc := identityDocument{
		ID:        primitive.NewObjectID(),
		Email:     identity.Email,
		Name:      identity.Name,
		Password:  identity.PasswordHash,
		Role:      string(identity.Role),
		CreatedAt: identity.CreatedAt,
		UpdatedAt: identity.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrorDuplicateKey
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	identity.ID = doc.ID.Hex()
	return identity, nil
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Identity, error) {
	var doc identityDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateOne(ctx, id, nil, bson.M{
		"$set": bson.M{"lastLogin": at, "updatedAt": at},
	})
}

func (r *MongoRepository) SetResetToken(ctx context.Context, id, token string, expires, at time.Time) error {
	return r.updateOne(ctx, id, nil, bson.M{
		"$set": bson.M{"resetPasswordToken": token, "resetPasswordExpires": expires, "updatedAt": at},
	})
}

func (r *MongoRepository) UpdatePassword(ctx context.Context, id, digest string, at time.Time) error {
	return r.updateOne(ctx, id, nil, bson.M{
		"$set": bson.M{"password": digest, "updatedAt": at},
	})
}

func (r *MongoRepository) ConsumeResetToken(ctx context.Context, id, token, digest string, now time.Time) error {
	return r.updateOne(ctx, id,
		bson.M{"resetPasswordToken": token, "resetPasswordExpires": bson.M{"$gt": now}},
		bson.M{
			"$set":   bson.M{"password": digest, "updatedAt": now},
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
		},
	)
}

// updateOne applies update to the document with the given hex id that also
// matches cond.
func (r *MongoRepository) updateOne(ctx context.Context, id string, cond bson.M, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrorNotFound
	}

	filter := bson.M{"_id": oid}
	for k, v := range cond {
		filter[k] = v
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"resetPasswordExpires": bson.M{"$lt": now}},
		bson.M{
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
			"$set":   bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.ModifiedCount, nil
}
