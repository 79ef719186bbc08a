// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pid-digitizer/backend/internal/models"
	"github.com/pid-digitizer/backend/internal/storage"
)

// MockStorage implements storage.Store on a temp directory with
// predictable ids.
type MockStorage struct {
	dir   string
	files map[string]*models.FileInfo
	paths map[string]string // id -> path
	mu    sync.RWMutex

	// FailRegister makes Register return this error when set.
	FailRegister error
}

// NewMockStorage creates a mock storage writing into dir.
func NewMockStorage(dir string) *MockStorage {
	return &MockStorage{
		dir:   dir,
		files: make(map[string]*models.FileInfo),
		paths: make(map[string]string),
	}
}

func (m *MockStorage) PathFor(drawingID, ext string) (string, error) {
	id, err := storage.FileStem(drawingID)
	if err != nil {
		return "", err
	}
	if ext == "" {
		ext = models.FormatDXF
	}
	return filepath.Join(m.dir, id+"."+ext), nil
}

func (m *MockStorage) Register(drawingID, path string) (*models.FileInfo, error) {
	if m.FailRegister != nil {
		return nil, m.FailRegister
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := generateTestID()
	file := &models.FileInfo{
		ID:        id,
		Name:      filepath.Base(path),
		DrawingID: drawingID,
		Size:      st.Size(),
		CreatedAt: time.Now(),
		Status:    storage.StatusExported,
	}
	m.files[id] = file
	m.paths[id] = path
	return file, nil
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return file, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var files []*models.FileInfo
	for _, file := range m.files {
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[id]; !exists {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	os.Remove(m.paths[id])
	delete(m.files, id)
	delete(m.paths, id)
	return nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path, ok := m.paths[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return path, nil
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddFile writes data to disk and registers it under id.
func (m *MockStorage) AddFile(id, drawingID string, data []byte) *models.FileInfo {
	path := filepath.Join(m.dir, id+".dxf")
	if err := os.WriteFile(path, data, 0644); err != nil {
		panic(fmt.Sprintf("failed to write test file: %v", err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	file := &models.FileInfo{
		ID:        id,
		Name:      filepath.Base(path),
		DrawingID: drawingID,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
		Status:    storage.StatusExported,
	}
	m.files[id] = file
	m.paths[id] = path
	return file
}

// GetFileCount returns the number of stored files
func (m *MockStorage) GetFileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// ErrMockFailure is a canned error for failure injection.
var ErrMockFailure = errors.New("mock failure")

// generateTestID generates a simple test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}
