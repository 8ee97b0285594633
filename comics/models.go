package comics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CompositePanelNumber is the reserved panel slot for the full comic sheet.
const CompositePanelNumber = 0

// Comic is a user-created comic strip
type Comic struct {
	bun.BaseModel `bun:"table:comics,alias:cmc"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID    `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Title         string       `bun:"title,notnull" json:"title,omitempty"`
	IsPublic      bool         `bun:"is_public,notnull,default:false" json:"is_public"`
	AudioURL      string       `bun:"audio_url" json:"audio_url,omitempty"`
	Panels        []*ComicPanel `bun:"rel:has-many,join:id=comic_id" json:"panels,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time   `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// ComicPanel is a single stored panel image. Panel number 0 is the
// composite sheet of the whole comic.
type ComicPanel struct {
	bun.BaseModel `bun:"table:comic_panels,alias:pnl"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ComicID       uuid.UUID  `bun:"comic_id,notnull,type:uuid" json:"comic_id,omitempty"`
	PanelNumber   int        `bun:"panel_number,notnull" json:"panel_number"`
	StoragePath   string     `bun:"storage_path,notnull" json:"storage_path,omitempty"`
	PublicURL     string     `bun:"public_url" json:"public_url,omitempty"`
	FileSize      int        `bun:"file_size" json:"file_size,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PanelStoragePath is where a panel image lives in the object store.
func PanelStoragePath(userID, comicID uuid.UUID, panelNumber int) string {
	return fmt.Sprintf("users/%s/comics/%s/panel_%d.png", userID, comicID, panelNumber)
}

// CompositeStoragePath is where the full comic sheet lives.
func CompositeStoragePath(userID, comicID uuid.UUID) string {
	return fmt.Sprintf("users/%s/comics/%s/comic_full.png", userID, comicID)
}
