package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/repository"
)

const accountsCollection = "accounts"

// AccountRepository persists accounts in MongoDB.
type AccountRepository struct {
	collection *mongo.Collection
}

// NewAccountRepository builds an AccountRepository on top of the given database.
func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{collection: db.Collection(accountsCollection)}
}

var _ port.AccountRepository = (*AccountRepository)(nil)

type passwordHistoryDocument struct {
	PasswordHash string    `bson:"hashed_password"`
	ChangedAt    time.Time `bson:"changed_at"`
}

type accountDocument struct {
	ID                  string                    `bson:"_id"`
	FirstName           string                    `bson:"first_name"`
	LastName            string                    `bson:"last_name"`
	DateOfBirth         time.Time                 `bson:"date_of_birth"`
	Email               string                    `bson:"email"`
	Phone               *string                   `bson:"phone_number,omitempty"`
	PasswordHash        string                    `bson:"hashed_password"`
	IsActive            bool                      `bson:"is_active"`
	IsLocked            bool                      `bson:"is_locked"`
	FailedLoginAttempts int                       `bson:"failed_login_attempts"`
	LastFailedLogin     *time.Time                `bson:"last_failed_login,omitempty"`
	PasswordHistory     []passwordHistoryDocument `bson:"password_history"`
	ActivationToken     *string                   `bson:"activation_token,omitempty"`
	ActivationExpires   *time.Time                `bson:"activation_token_expires,omitempty"`
	ResetToken          *string                   `bson:"reset_password_token,omitempty"`
	ResetExpires        *time.Time                `bson:"reset_password_token_expires,omitempty"`
	CreatedAt           time.Time                 `bson:"created_at"`
	UpdatedAt           time.Time                 `bson:"updated_at"`
}

func toDocument(account domain.Account) accountDocument {
	history := make([]passwordHistoryDocument, 0, len(account.PasswordHistory))
	for _, entry := range account.PasswordHistory {
		history = append(history, passwordHistoryDocument{
			PasswordHash: entry.PasswordHash,
			ChangedAt:    entry.ChangedAt,
		})
	}

	return accountDocument{
		ID:                  account.ID,
		FirstName:           account.FirstName,
		LastName:            account.LastName,
		DateOfBirth:         account.DateOfBirth,
		Email:               account.Email,
		Phone:               account.Phone,
		PasswordHash:        account.PasswordHash,
		IsActive:            account.IsActive,
		IsLocked:            account.IsLocked,
		FailedLoginAttempts: account.FailedLoginAttempts,
		LastFailedLogin:     account.LastFailedLogin,
		PasswordHistory:     history,
		ActivationToken:     account.ActivationToken,
		ActivationExpires:   account.ActivationExpires,
		ResetToken:          account.ResetToken,
		ResetExpires:        account.ResetExpires,
		CreatedAt:           account.CreatedAt,
		UpdatedAt:           account.UpdatedAt,
	}
}

func (d accountDocument) toDomain() *domain.Account {
	history := make([]domain.PasswordHistoryEntry, 0, len(d.PasswordHistory))
	for _, entry := range d.PasswordHistory {
		history = append(history, domain.PasswordHistoryEntry{
			PasswordHash: entry.PasswordHash,
			ChangedAt:    entry.ChangedAt,
		})
	}

	return &domain.Account{
		ID:                  d.ID,
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		DateOfBirth:         d.DateOfBirth,
		Email:               d.Email,
		Phone:               d.Phone,
		PasswordHash:        d.PasswordHash,
		IsActive:            d.IsActive,
		IsLocked:            d.IsLocked,
		FailedLoginAttempts: d.FailedLoginAttempts,
		LastFailedLogin:     d.LastFailedLogin,
		PasswordHistory:     history,
		ActivationToken:     d.ActivationToken,
		ActivationExpires:   d.ActivationExpires,
		ResetToken:          d.ResetToken,
		ResetExpires:        d.ResetExpires,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// EnsureIndexes creates the unique email index and the sparse unique phone index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_1"),
		},
		{
			Keys:    bson.D{{Key: "phone_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("phone_number_1"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}
	return nil
}

// Create inserts a new account, mapping unique index violations to sentinels.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	if _, err := r.collection.InsertOne(ctx, toDocument(account)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateKeySentinel(err)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func duplicateKeySentinel(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "phone_number"):
		return repository.ErrDuplicatePhone
	case strings.Contains(msg, "email"):
		return repository.ErrDuplicateEmail
	default:
		return repository.ErrDuplicateEmail
	}
}

// GetByID fetches an account by its identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail fetches an account by email. Callers normalize case beforehand.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByActivationToken fetches an account by its activation secret.
// Expiry is evaluated by the caller so expired tokens report a distinct error.
func (r *AccountRepository) GetByActivationToken(ctx context.Context, token string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"activation_token": token})
}

// GetByResetToken fetches an account whose reset secret matches and has not expired.
func (r *AccountRepository) GetByResetToken(ctx context.Context, token string, reference time.Time) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{
		"reset_password_token":         token,
		"reset_password_token_expires": bson.M{"$gt": reference},
	})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// Activate flips the account to active and discards the activation secret.
func (r *AccountRepository) Activate(ctx context.Context, id string, at time.Time) error {
	update := bson.M{
		"$set":   bson.M{"is_active": true, "updated_at": at},
		"$unset": bson.M{"activation_token": "", "activation_token_expires": ""},
	}
	return r.updateOne(ctx, id, update)
}

// RecordFailedLogin increments the failure counter and flips the lock once the
// counter reaches maxAttempts, in a single FindOneAndUpdate so concurrent
// failures cannot lose updates. The aggregation pipeline form lets the lock
// decision read the incremented counter server side.
func (r *AccountRepository) RecordFailedLogin(ctx context.Context, id string, at time.Time, maxAttempts int) (int, bool, error) {
	nextAttempts := bson.M{"$add": bson.A{"$failed_login_attempts", 1}}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"failed_login_attempts": nextAttempts,
			"is_locked": bson.M{"$or": bson.A{
				"$is_locked",
				bson.M{"$gte": bson.A{nextAttempts, maxAttempts}},
			}},
			"last_failed_login": at,
			"updated_at":        at,
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc accountDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, false, repository.ErrNotFound
		}
		return 0, false, fmt.Errorf("record failed login: %w", err)
	}

	return doc.FailedLoginAttempts, doc.IsLocked, nil
}

// ResetFailedLogins clears the failure counter after a successful login.
func (r *AccountRepository) ResetFailedLogins(ctx context.Context, id string, at time.Time) error {
	update := bson.M{
		"$set":   bson.M{"failed_login_attempts": 0, "updated_at": at},
		"$unset": bson.M{"last_failed_login": ""},
	}
	return r.updateOne(ctx, id, update)
}

// SetResetToken stores a fresh password reset secret.
func (r *AccountRepository) SetResetToken(ctx context.Context, id string, token string, expiresAt time.Time, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"reset_password_token":         token,
			"reset_password_token_expires": expiresAt,
			"updated_at":                   at,
		},
	}
	return r.updateOne(ctx, id, update)
}

// UpdatePassword stores the new digest, retires the outgoing one into the
// history capped at historyLimit (oldest entries evicted), and clears any
// outstanding reset secret.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, retired domain.PasswordHistoryEntry, historyLimit int, changedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"hashed_password": passwordHash,
			"updated_at":      changedAt,
		},
		"$unset": bson.M{
			"reset_password_token":         "",
			"reset_password_token_expires": "",
		},
		"$push": bson.M{
			"password_history": bson.M{
				"$each": bson.A{passwordHistoryDocument{
					PasswordHash: retired.PasswordHash,
					ChangedAt:    retired.ChangedAt,
				}},
				"$slice": -historyLimit,
			},
		},
	}
	return r.updateOne(ctx, id, update)
}

// Unlock clears the lock flag and failure counter.
func (r *AccountRepository) Unlock(ctx context.Context, id string, at time.Time) error {
	update := bson.M{
		"$set":   bson.M{"is_locked": false, "failed_login_attempts": 0, "updated_at": at},
		"$unset": bson.M{"last_failed_login": ""},
	}
	return r.updateOne(ctx, id, update)
}

func (r *AccountRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns a page of accounts ordered by creation time descending,
// along with the total account count.
func (r *AccountRepository) List(ctx context.Context, page, pageSize int) ([]domain.Account, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []domain.Account
	for cursor.Next(ctx) {
		var doc accountDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, *doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, total, nil
}
