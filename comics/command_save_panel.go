package comics

import (
	"context"
	"time"

	"github.com/JamieOgun/PixelPanel/storage"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type SavePanelMessage struct {
	UserID      uuid.UUID
	Title       string
	PanelNumber int
	Data        []byte
	OnResponse  func(resp *SavePanelResponse)
}

func (e SavePanelMessage) Type() string { return "comic.save_panel" }

type SavePanelResponse struct {
	ComicID     uuid.UUID `json:"comic_id"`
	PanelNumber int       `json:"panel_number"`
	PublicURL   string    `json:"public_url"`
	Created     bool      `json:"created"`
}

type SavePanelHandler struct {
	repo   RepositoryManager
	store  storage.ObjectStore
	logger Logger
}

// NewSavePanelHandler creates a handler with sane defaults.
func NewSavePanelHandler(repo RepositoryManager, store storage.ObjectStore) *SavePanelHandler {
	return &SavePanelHandler{
		repo:   repo,
		store:  store,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *SavePanelHandler) WithLogger(logger Logger) *SavePanelHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SavePanelHandler) Execute(ctx context.Context, event SavePanelMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during panel save",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SavePanelHandler) execute(ctx context.Context, event SavePanelMessage) error {
	if event.Title == "" || len(event.Data) == 0 {
		return goerrors.New("comic title and panel data are required", goerrors.CategoryBadInput)
	}

	if event.PanelNumber <= CompositePanelNumber {
		return goerrors.New("panel number must be positive", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"panel_number": event.PanelNumber})
	}

	resp := &SavePanelResponse{PanelNumber: event.PanelNumber}

	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// reuse the comic when the title already exists for this user
		comic, err := h.repo.Comics().GetByTitleTx(ctx, tx, event.UserID, event.Title)
		if err != nil {
			if !goerrors.IsNotFound(err) {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up comic")
			}

			comic, err = h.repo.Comics().CreateTx(ctx, tx, &Comic{
				UserID:   event.UserID,
				Title:    event.Title,
				IsPublic: false,
			})
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create comic record")
			}
		}

		resp.ComicID = comic.ID

		path := PanelStoragePath(event.UserID, comic.ID, event.PanelNumber)
		if _, err := h.store.Put(ctx, path, event.Data, "image/png"); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to upload panel image")
		}

		resp.PublicURL = h.store.PublicURL(path)

		existing, err := h.repo.Panels().GetByNumberTx(ctx, tx, comic.ID, event.PanelNumber)
		if err != nil && !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up panel record")
		}

		if existing != nil {
			now := time.Now()
			existing.StoragePath = path
			existing.PublicURL = resp.PublicURL
			existing.FileSize = len(event.Data)
			existing.UpdatedAt = &now
			if _, err := h.repo.Panels().UpdateTx(ctx, tx, existing); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update panel record")
			}
			return nil
		}

		record := &ComicPanel{
			ComicID:     comic.ID,
			PanelNumber: event.PanelNumber,
			StoragePath: path,
			PublicURL:   resp.PublicURL,
			FileSize:    len(event.Data),
		}
		if _, err := h.repo.Panels().CreateTx(ctx, tx, record); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create panel record")
		}

		resp.Created = true
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "panel save transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
