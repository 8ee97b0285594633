package comics

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/JamieOgun/PixelPanel/storage"
	"github.com/uptrace/bun"
)

// ErrComicNotFound is returned when a comic does not exist or belongs
// to a different user.
var ErrComicNotFound = goerrors.New("comic not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode("COMIC_NOT_FOUND")

// Service reads and deletes stored comics. Writes go through the
// command handlers.
type Service struct {
	repo   RepositoryManager
	store  storage.ObjectStore
	logger Logger
}

func NewService(repo RepositoryManager, store storage.ObjectStore) *Service {
	return &Service{
		repo:   repo,
		store:  store,
		logger: defLogger{},
	}
}

func (s *Service) WithLogger(logger Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// ListComics returns the user's comics, newest first, panels included.
func (s *Service) ListComics(ctx context.Context, userID uuid.UUID) ([]*Comic, error) {
	comics, err := s.repo.Comics().ListByUser(ctx, userID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list comics")
	}
	return comics, nil
}

// LoadComic returns one comic with its panels. Comics owned by another
// user are only visible when public.
func (s *Service) LoadComic(ctx context.Context, userID, comicID uuid.UUID) (*Comic, error) {
	comic, err := s.repo.Comics().GetByID(ctx, comicID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
			return nil, ErrComicNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load comic")
	}

	if comic.UserID != userID && !comic.IsPublic {
		return nil, ErrComicNotFound
	}

	panels, err := s.repo.Panels().ListByComic(ctx, comic.ID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load comic panels")
	}
	comic.Panels = panels

	return comic, nil
}

// DeleteComic removes the comic row, its panel rows, and every stored
// object under the comic's storage prefix. Only the owner can delete.
func (s *Service) DeleteComic(ctx context.Context, userID, comicID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	var owner uuid.UUID

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		comic, err := s.repo.Comics().GetByIDTx(ctx, tx, comicID.String())
		if err != nil {
			if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
				return ErrComicNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load comic")
		}

		if comic.UserID != userID {
			return ErrComicNotFound
		}
		owner = comic.UserID

		if _, err := s.repo.Panels().RawTx(ctx, tx, DeleteComicPanelsSQL, comic.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete comic panels")
		}

		if _, err := s.repo.Comics().RawTx(ctx, tx, SoftDeleteComicSQL, comic.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete comic")
		}

		return nil
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "delete comic transaction failed")
	}

	prefix := fmt.Sprintf("users/%s/comics/%s", owner, comicID)
	if err := s.store.RemovePrefix(ctx, prefix); err != nil {
		// rows are gone, orphaned objects are just disk noise
		s.logger.Warn("failed to remove stored objects for comic %s: %v", comicID, err)
	}

	return nil
}

var DeleteComicPanelsSQL = `DELETE FROM "comic_panels" WHERE "comic_id" = ? RETURNING *;`

var SoftDeleteComicSQL = `UPDATE "comics" AS "cmc"
SET
	"deleted_at" = CURRENT_TIMESTAMP
WHERE
	"cmc"."deleted_at" IS NULL
AND (
	"cmc"."id" = ?
) RETURNING *;`
