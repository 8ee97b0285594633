package credits

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserProfile is the per-user profile carrying the credit balance
type UserProfile struct {
	bun.BaseModel `bun:"table:user_profiles,alias:prf"`
	UserID        uuid.UUID  `bun:"user_id,pk,nullzero,type:uuid" json:"user_id,omitempty"`
	Name          string     `bun:"name" json:"name,omitempty"`
	Credits       int        `bun:"credits,notnull,default:0" json:"credits"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// NewUserProfile builds an empty profile for the given user.
func NewUserProfile(userID uuid.UUID) *UserProfile {
	return &UserProfile{
		UserID:  userID,
		Credits: 0,
	}
}
