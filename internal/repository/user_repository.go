package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/ticket-tracker/internal/docstore"
	"github.com/spec-kit/ticket-tracker/internal/domain"
)

const accountsCollection = "accounts"

const (
	fieldEmail         = "email"
	fieldDisplayName   = "displayName"
	fieldRole          = "role"
	fieldPasswordHash  = "passwordHash"
	fieldProviderIDs   = "providerIds"
	fieldEmailVerified = "emailVerified"
)

// UserRepository defines persistence access for sign-in accounts.
type UserRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, uid string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type userRepository struct {
	store docstore.Store
	now   func() time.Time
}

// NewUserRepository returns a document-store backed implementation.
func NewUserRepository(store docstore.Store) UserRepository {
	return &userRepository{store: store, now: time.Now}
}

func (r *userRepository) Create(ctx context.Context, account *domain.Account) error {
	now := r.now()
	account.Email = normalizeEmail(account.Email)
	account.CreatedAt = now
	account.UpdatedAt = now
	id, err := r.store.Add(ctx, accountsCollection, accountFields(account))
	if err != nil {
		return err
	}
	account.UID = id
	return nil
}

func (r *userRepository) Update(ctx context.Context, account *domain.Account) error {
	account.Email = normalizeEmail(account.Email)
	account.UpdatedAt = r.now()
	err := r.store.Update(ctx, accountsCollection, account.UID, accountFields(account))
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, uid string) (*domain.Account, error) {
	doc, err := r.store.Get(ctx, accountsCollection, uid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return accountFromDocument(*doc), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	q := docstore.Query{Collection: accountsCollection}.Where(fieldEmail, normalizeEmail(email))
	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return accountFromDocument(docs[0]), nil
}

func accountFields(a *domain.Account) map[string]any {
	providers := a.ProviderIDs
	if providers == nil {
		providers = []string{}
	}
	return map[string]any{
		fieldEmail:         a.Email,
		fieldDisplayName:   a.DisplayName,
		fieldRole:          string(domain.ParseUserRole(string(a.Role))),
		fieldPasswordHash:  a.PasswordHash,
		fieldProviderIDs:   providers,
		fieldEmailVerified: a.EmailVerified,
		fieldCreatedAt:     docstore.FormatTime(a.CreatedAt),
		fieldUpdatedAt:     docstore.FormatTime(a.UpdatedAt),
	}
}

func accountFromDocument(doc docstore.Document) *domain.Account {
	return &domain.Account{
		UID:           doc.ID,
		Email:         stringField(doc.Data, fieldEmail),
		DisplayName:   stringField(doc.Data, fieldDisplayName),
		Role:          domain.ParseUserRole(stringField(doc.Data, fieldRole)),
		PasswordHash:  stringField(doc.Data, fieldPasswordHash),
		ProviderIDs:   stringsField(doc.Data, fieldProviderIDs),
		EmailVerified: boolField(doc.Data, fieldEmailVerified),
		CreatedAt:     timeField(doc.Data, fieldCreatedAt),
		UpdatedAt:     timeField(doc.Data, fieldUpdatedAt),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
