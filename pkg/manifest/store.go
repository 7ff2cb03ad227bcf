package manifest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/affectively-ai/foldline/pkg/errors"
)

// Store is the interface for manifest persistence backends.
type Store interface {
	// Put stores a manifest, replacing any previous snapshot for the same
	// document.
	Put(ctx context.Context, m Manifest) error

	// Get retrieves the latest manifest for a document.
	// Returns a DOCUMENT_NOT_FOUND error if no snapshot exists.
	Get(ctx context.Context, documentID string) (Manifest, error)

	// List returns the document ids with stored manifests.
	List(ctx context.Context) ([]string, error)

	// Delete removes a document's manifest. Deleting a missing document is
	// not an error.
	Delete(ctx context.Context, documentID string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// =============================================================================
// File Store
// =============================================================================

// FileStore persists one JSON file per document. Suited to CLI usage and
// single-instance deployments.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create manifest dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Put writes the manifest to <dir>/<documentID>.json.
func (s *FileStore) Put(ctx context.Context, m Manifest) error {
	if err := errors.ValidateDocumentID(m.DocumentID); err != nil {
		return err
	}
	if err := WriteFile(m, s.path(m.DocumentID)); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write manifest for %s", m.DocumentID)
	}
	return nil
}

// Get reads a document's manifest file.
func (s *FileStore) Get(ctx context.Context, documentID string) (Manifest, error) {
	if err := errors.ValidateDocumentID(documentID); err != nil {
		return Manifest{}, err
	}
	data, err := os.ReadFile(s.path(documentID))
	if os.IsNotExist(err) {
		return Manifest{}, errors.New(errors.ErrCodeDocumentNotFound, "no manifest for document %s", documentID)
	}
	if err != nil {
		return Manifest{}, errors.Wrap(errors.ErrCodeStore, err, "read manifest for %s", documentID)
	}
	m, err := Unmarshal(data)
	if err != nil {
		return Manifest{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest for %s", documentID)
	}
	return m, nil
}

// List scans the directory for manifest files.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list manifests")
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a document's manifest file.
func (s *FileStore) Delete(ctx context.Context, documentID string) error {
	if err := errors.ValidateDocumentID(documentID); err != nil {
		return err
	}
	err := os.Remove(s.path(documentID))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete manifest for %s", documentID)
	}
	return nil
}

// Close does nothing for file stores.
func (s *FileStore) Close(ctx context.Context) error { return nil }

func (s *FileStore) path(documentID string) string {
	// Document ids pass ValidateDocumentID, but colons are legal there and
	// awkward in filenames.
	name := strings.ReplaceAll(documentID, ":", "_")
	return filepath.Join(s.dir, name+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
