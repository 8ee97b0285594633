package comics

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Comics is the comic repository plus the lookups the commands need
type Comics interface {
	repository.Repository[*Comic]

	GetByTitle(ctx context.Context, userID uuid.UUID, title string) (*Comic, error)
	GetByTitleTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, title string) (*Comic, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Comic, error)
}

// Panels is the panel repository plus per-comic lookups
type Panels interface {
	repository.Repository[*ComicPanel]

	ListByComic(ctx context.Context, comicID uuid.UUID) ([]*ComicPanel, error)
	GetByNumberTx(ctx context.Context, tx bun.IDB, comicID uuid.UUID, number int) (*ComicPanel, error)
}

// RepositoryManager exposes the comics repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Comics() Comics
	Panels() Panels
}

type comicsRepo struct {
	repository.Repository[*Comic]
	db *bun.DB
}

var _ Comics = (*comicsRepo)(nil)

func NewComicsRepository(db *bun.DB) Comics {
	repo := repository.NewRepository[*Comic](db, repository.ModelHandlers[*Comic]{
		NewRecord: func() *Comic { return &Comic{} },
		GetID: func(c *Comic) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Comic, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "title"
		},
	})

	return &comicsRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *comicsRepo) Create(ctx context.Context, record *Comic, criteria ...repository.InsertCriteria) (*Comic, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *comicsRepo) CreateTx(ctx context.Context, tx bun.IDB, record *Comic, criteria ...repository.InsertCriteria) (*Comic, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *comicsRepo) GetByTitle(ctx context.Context, userID uuid.UUID, title string) (*Comic, error) {
	return a.GetByTitleTx(ctx, a.db, userID, title)
}

func (a *comicsRepo) GetByTitleTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, title string) (*Comic, error) {
	record := &Comic{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.title = ?", title).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"title":   title,
					"user_id": userID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *comicsRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Comic, error) {
	var records []*Comic

	err := a.db.NewSelect().
		Model(&records).
		Relation("Panels").
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

type panelsRepo struct {
	repository.Repository[*ComicPanel]
	db *bun.DB
}

var _ Panels = (*panelsRepo)(nil)

func NewPanelsRepository(db *bun.DB) Panels {
	repo := repository.NewRepository[*ComicPanel](db, repository.ModelHandlers[*ComicPanel]{
		NewRecord: func() *ComicPanel { return &ComicPanel{} },
		GetID: func(p *ComicPanel) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *ComicPanel, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "storage_path"
		},
	})

	return &panelsRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *panelsRepo) Create(ctx context.Context, record *ComicPanel, criteria ...repository.InsertCriteria) (*ComicPanel, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *panelsRepo) CreateTx(ctx context.Context, tx bun.IDB, record *ComicPanel, criteria ...repository.InsertCriteria) (*ComicPanel, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *panelsRepo) ListByComic(ctx context.Context, comicID uuid.UUID) ([]*ComicPanel, error) {
	var records []*ComicPanel

	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.comic_id = ?", comicID).
		Order("panel_number ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *panelsRepo) GetByNumberTx(ctx context.Context, tx bun.IDB, comicID uuid.UUID, number int) (*ComicPanel, error) {
	record := &ComicPanel{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.comic_id = ?", comicID).
		Where("?TableAlias.panel_number = ?", number).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"comic_id":     comicID.String(),
					"panel_number": number,
				})
		}
		return nil, err
	}

	return record, nil
}

type mngr struct {
	db     *bun.DB
	comics Comics
	panels Panels
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:     db,
		comics: NewComicsRepository(db),
		panels: NewPanelsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.comics == nil {
		return errors.New("repository comics should be initialized")
	}

	if m.panels == nil {
		return errors.New("repository panels should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Comics() Comics {
	return m.comics
}

func (m mngr) Panels() Panels {
	return m.panels
}
