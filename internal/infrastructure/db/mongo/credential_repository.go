package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// CredentialRepository keeps local email/password accounts. The unique index on
// email is created by the migrations.
type CredentialRepository struct {
	coll *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{coll: db.Collection(credentialsCollection)}
}

type mongoCredential struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash,omitempty"`
	DisplayName  string `bson:"display_name,omitempty"`
	Provider     string `bson:"provider"`
	CreatedAt    int64  `bson:"created_at"`
}

func (r *CredentialRepository) Create(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	doc := mongoCredential{
		ID:           cred.ID,
		Email:        cred.Email,
		PasswordHash: cred.PasswordHash,
		DisplayName:  cred.DisplayName,
		Provider:     cred.Provider,
		CreatedAt:    cred.CreatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, storeErr("insert credential", err)
	}
	return doc.toDomain(), nil
}

func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var mc mongoCredential
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("find credential", err)
	}
	return mc.toDomain(), nil
}

func (mc mongoCredential) toDomain() *domain.Credential {
	return &domain.Credential{
		ID:           mc.ID,
		Email:        mc.Email,
		PasswordHash: mc.PasswordHash,
		DisplayName:  mc.DisplayName,
		Provider:     mc.Provider,
		CreatedAt:    unixToTime(mc.CreatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
