package auth

import (
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LoginOrigin classifies how an account authenticates. It is set once at
// creation and never changes afterwards.
type LoginOrigin = string

const (
	// OriginLocal is a password-owned account
	OriginLocal LoginOrigin = "LOCAL"
	// OriginFederated is an account owned by an external identity provider
	OriginFederated LoginOrigin = "FEDERATED"
)

// FallbackNickname seeds federated provisioning when the provider claims
// carry no display name.
const FallbackNickname = "GoogleUser"

// Account is the account model
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string      `bun:"email,notnull,unique" json:"email,omitempty"`
	Nickname      string      `bun:"nickname,notnull,unique" json:"nickname,omitempty"`
	PasswordHash  string      `bun:"password_hash" json:"-"`
	ProfileImage  string      `bun:"profile_image" json:"profile_image,omitempty"`
	LoginOrigin   LoginOrigin `bun:"login_origin,notnull" json:"login_origin,omitempty"`
	CreatedAt     *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsLocal reports whether the account owns its own password.
func (a *Account) IsLocal() bool {
	return a.LoginOrigin == OriginLocal
}

// IsFederated reports whether the account is provider-owned.
func (a *Account) IsFederated() bool {
	return a.LoginOrigin == OriginFederated
}

// NewLocalAccount builds a password-owned account. The password must
// already be hashed.
func NewLocalAccount(email, nickname, passwordHash string) *Account {
	return &Account{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: passwordHash,
		LoginOrigin:  OriginLocal,
	}
}

// NewFederatedAccount builds a provider-owned account. It carries no
// password hash.
func NewFederatedAccount(email, nickname, profileImage string) *Account {
	return &Account{
		Email:        email,
		Nickname:     nickname,
		ProfileImage: profileImage,
		LoginOrigin:  OriginFederated,
	}
}

// prepareAccountDefaults derives a deterministic ID from the email so
// re-provisioning attempts for the same address map to the same record.
func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil && record.Email != "" {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		}
	}

	if record.LoginOrigin == "" {
		record.LoginOrigin = OriginLocal
	}
}
