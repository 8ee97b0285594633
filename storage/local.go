package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrObjectNotFound is returned for unknown object paths
var ErrObjectNotFound = goerrors.New("object not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode("OBJECT_NOT_FOUND")

// LocalStore keeps objects on the local filesystem under a root directory
// and serves them from a configured base URL.
type LocalStore struct {
	root    string
	baseURL string
}

var _ ObjectStore = (*LocalStore)(nil)

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if root == "" {
		return nil, goerrors.New("storage root directory is required", goerrors.CategoryBadInput)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create storage root")
	}

	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// resolve keeps paths inside the root, rejecting traversal attempts.
func (s *LocalStore) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	full := filepath.Join(s.root, clean)

	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", goerrors.New("invalid object path", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"path": path})
	}

	return full, nil
}

func (s *LocalStore) Put(ctx context.Context, path string, data []byte, contentType string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create object directory")
	}

	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write object")
	}

	return &Object{
		Path:        path,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *LocalStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read object")
	}

	return data, nil
}

func (s *LocalStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return ErrObjectNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove object")
	}

	return nil
}

// RemovePrefix deletes every object stored under the given prefix.
func (s *LocalStore) RemovePrefix(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full, err := s.resolve(prefix)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(full); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove object prefix")
	}

	return nil
}

// PublicURL returns the URL the object is served from.
func (s *LocalStore) PublicURL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}
