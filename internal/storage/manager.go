package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pid-digitizer/backend/internal/models"
)

// ErrNotFound is returned for unknown file ids.
var ErrNotFound = errors.New("file not found")

// StatusExported marks a file written by a finished export.
const StatusExported = "exported"

// Store defines the interface for export file storage.
type Store interface {
	PathFor(drawingID, ext string) (string, error)
	Register(drawingID, path string) (*models.FileInfo, error)
	Get(id string) (*models.FileInfo, error)
	List(limit int) ([]*models.FileInfo, error)
	Delete(id string) error
	GetFilePath(id string) (string, error)
}

// LocalStore implements Store using the local filesystem. Each drawing has
// one export file, <exportDir>/<drawing id>.<ext>; exporting a drawing again
// replaces it.
type LocalStore struct {
	mu        sync.RWMutex
	exportDir string
	files     map[string]*models.FileInfo
	paths     map[string]string // path -> id
}

// NewLocalStore creates a new LocalStore and indexes exports already on disk.
func NewLocalStore(exportDir string) (*LocalStore, error) {
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	s := &LocalStore{
		exportDir: exportDir,
		files:     make(map[string]*models.FileInfo),
		paths:     make(map[string]string),
	}
	if err := s.scan(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) scan() error {
	entries, err := os.ReadDir(s.exportDir)
	if err != nil {
		return fmt.Errorf("reading export directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), "."+models.FormatDXF) {
			continue
		}
		drawingID := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, err := s.Register(drawingID, filepath.Join(s.exportDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeID reduces a drawing id to characters safe in a file name.
func SanitizeID(drawingID string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, strings.TrimSpace(drawingID))
	return strings.TrimLeft(id, ".")
}

// FileStem returns the file name stem for a drawing. Ids that SanitizeID
// alters get a "~" and a digest of the raw id appended, so two ids never share
// a file. "~" never survives SanitizeID, which keeps the two forms disjoint.
func FileStem(drawingID string) (string, error) {
	id := SanitizeID(drawingID)
	if id == "" {
		return "", fmt.Errorf("invalid drawing id: %q", drawingID)
	}
	if id == drawingID {
		return id, nil
	}
	digest := uuid.NewSHA1(stemNamespace, []byte(drawingID)).String()
	return id + "~" + digest[:8], nil
}

var stemNamespace = uuid.MustParse("6f2c0b0e-4f7a-5d3e-9c1b-8a7d5e2f4c10")

// PathFor returns the export path for a drawing.
func (s *LocalStore) PathFor(drawingID, ext string) (string, error) {
	id, err := FileStem(drawingID)
	if err != nil {
		return "", err
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = models.FormatDXF
	}
	return filepath.Join(s.exportDir, id+"."+ext), nil
}

// Register records a file written to a path from PathFor. A file already
// registered under the same path keeps its id and gets fresh metadata.
func (s *LocalStore) Register(drawingID, path string) (*models.FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("registering export: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.paths[path]
	if !ok {
		id = uuid.New().String()
		s.paths[path] = id
	}
	info := &models.FileInfo{
		ID:        id,
		Name:      filepath.Base(path),
		DrawingID: drawingID,
		Size:      st.Size(),
		CreatedAt: st.ModTime(),
		Status:    StatusExported,
	}
	if ok {
		info.CreatedAt = time.Now()
	}
	s.files[id] = info

	return info, nil
}

// Get retrieves file metadata by ID.
func (s *LocalStore) Get(id string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return info, nil
}

// List returns the most recent files.
func (s *LocalStore) List(limit int) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.FileInfo, 0, len(s.files))
	for _, info := range s.files {
		list = append(list, info)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].Name < list[j].Name
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes a file from storage.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	path := s.pathOf(id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)
	delete(s.paths, path)

	return nil
}

// GetFilePath returns the path to a file.
func (s *LocalStore) GetFilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.files[id]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return s.pathOf(id), nil
}

// pathOf must be called with the lock held.
func (s *LocalStore) pathOf(id string) string {
	for path, pid := range s.paths {
		if pid == id {
			return path
		}
	}
	return filepath.Join(s.exportDir, s.files[id].Name)
}
