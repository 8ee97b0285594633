package comics

import (
	"context"
	"time"

	"github.com/JamieOgun/PixelPanel/storage"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PanelUpload is one panel image submitted with a save request.
type PanelUpload struct {
	Number int
	Data   []byte
}

type SaveComicMessage struct {
	UserID     uuid.UUID
	Title      string
	Panels     []PanelUpload
	OnResponse func(resp *SaveComicResponse)
}

func (e SaveComicMessage) Type() string { return "comic.save" }

type SaveComicResponse struct {
	ComicID      uuid.UUID `json:"comic_id"`
	CompositeURL string    `json:"composite_public_url,omitempty"`
}

type SaveComicHandler struct {
	repo   RepositoryManager
	store  storage.ObjectStore
	logger Logger
}

// NewSaveComicHandler creates a handler with sane defaults.
func NewSaveComicHandler(repo RepositoryManager, store storage.ObjectStore) *SaveComicHandler {
	return &SaveComicHandler{
		repo:   repo,
		store:  store,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *SaveComicHandler) WithLogger(logger Logger) *SaveComicHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SaveComicHandler) Execute(ctx context.Context, event SaveComicMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during comic save",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SaveComicHandler) execute(ctx context.Context, event SaveComicMessage) error {
	if event.Title == "" || len(event.Panels) == 0 {
		return goerrors.New("comic title and panels are required", goerrors.CategoryBadInput)
	}

	resp := &SaveComicResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		comic, err := h.repo.Comics().CreateTx(ctx, tx, &Comic{
			UserID:   event.UserID,
			Title:    event.Title,
			IsPublic: false,
		})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create comic record")
		}

		resp.ComicID = comic.ID

		var sheet []NumberedImage

		for _, panel := range event.Panels {
			if len(panel.Data) == 0 {
				continue
			}

			path := PanelStoragePath(event.UserID, comic.ID, panel.Number)
			if _, err := h.store.Put(ctx, path, panel.Data, "image/png"); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to upload panel image")
			}

			record := &ComicPanel{
				ComicID:     comic.ID,
				PanelNumber: panel.Number,
				StoragePath: path,
				PublicURL:   h.store.PublicURL(path),
				FileSize:    len(panel.Data),
			}
			if _, err := h.repo.Panels().CreateTx(ctx, tx, record); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create panel record")
			}

			img, err := DecodePanel(panel.Data)
			if err != nil {
				// composite is best effort, a bad panel should not sink the save
				h.logger.Warn("failed to decode panel %d for composite: %v", panel.Number, err)
				continue
			}
			sheet = append(sheet, NumberedImage{Number: panel.Number, Image: img})
		}

		if len(sheet) == 0 {
			return nil
		}

		composite, err := BuildComposite(sheet)
		if err != nil {
			h.logger.Warn("failed to build composite sheet: %v", err)
			return nil
		}

		path := CompositeStoragePath(event.UserID, comic.ID)
		if _, err := h.store.Put(ctx, path, composite, "image/png"); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to upload composite sheet")
		}

		resp.CompositeURL = h.store.PublicURL(path)

		record := &ComicPanel{
			ComicID:     comic.ID,
			PanelNumber: CompositePanelNumber,
			StoragePath: path,
			PublicURL:   resp.CompositeURL,
			FileSize:    len(composite),
		}
		if _, err := h.repo.Panels().CreateTx(ctx, tx, record); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create composite panel record")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "comic save transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
