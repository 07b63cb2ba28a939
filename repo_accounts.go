package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the account repository surface. It embeds the generic
// repository and adds the lookups the authentication flows need.
type Accounts interface {
	repository.Repository[*Account]

	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	Save(ctx context.Context, record *Account) (*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return a.db.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.email = ?", email).
		Exists(ctx)
}

func (a *accounts) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return a.db.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.nickname = ?", nickname).
		Exists(ctx)
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *accounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

// Save persists a new account record.
func (a *accounts) Save(ctx context.Context, record *Account) (*Account, error) {
	return a.Create(ctx, record)
}

func (a *accounts) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

// IsRecordNotFound reports whether err is the repository's missing-record
// outcome.
func IsRecordNotFound(err error) bool {
	return repository.IsRecordNotFound(err)
}

// IsUniqueViolation reports whether err is a uniqueness-constraint
// conflict from the store. The nickname provisioning loop keys off this
// signal rather than its own read.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// UniqueViolationColumn names the conflicting column when it can be read
// from the driver message, empty otherwise.
func UniqueViolationColumn(err error) string {
	if !IsUniqueViolation(err) {
		return ""
	}
	msg := err.Error()
	for _, column := range []string{"email", "nickname"} {
		if strings.Contains(msg, column) {
			return column
		}
	}
	return ""
}
