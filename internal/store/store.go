// Package store owns the per-process session directory that holds every
// uploaded and produced file. The directory is created once at startup,
// hands out unique paths for the life of the process, and is removed
// recursively on shutdown or termination signal.
package store

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdfmaster/backend/internal/models"
)

var categories = []models.Category{
	models.CategoryUploads,
	models.CategoryOutputs,
	models.CategoryBundles,
}

// Store is the session file store. One instance per server process; it is
// constructed in main and injected into the API layer.
type Store struct {
	mu        sync.RWMutex
	root      string
	createdAt time.Time
	artifacts map[string]*models.Artifact
	tornDown  bool
	logger    *logrus.Logger
}

// Open creates a fresh, uniquely named session root under parent and the
// category directories beneath it. Each call yields a new session.
func Open(parent string, logger *logrus.Logger) (*Store, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	if logger == nil {
		logger = logrus.New()
	}

	root := filepath.Join(parent, "pdfmaster-"+uuid.New().String())
	for _, cat := range categories {
		if err := os.MkdirAll(filepath.Join(root, string(cat)), 0o755); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}

	logger.WithField("root", root).Info("session store opened")

	return &Store{
		root:      root,
		createdAt: time.Now(),
		artifacts: make(map[string]*models.Artifact),
		logger:    logger,
	}, nil
}

// Root returns the session root path.
func (s *Store) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// CreatedAt returns the session creation timestamp.
func (s *Store) CreatedAt() time.Time {
	return s.createdAt
}

// Allocate returns a fresh unique path within the session root for the given
// category. The file is not created; suffix (e.g. "merged.pdf") becomes part
// of the stored name so downloads stay human-readable.
func (s *Store) Allocate(cat models.Category, suffix string) (id, path string, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tornDown {
		return "", "", fmt.Errorf("session store is torn down")
	}

	id = uuid.New().String()
	name := id
	if suffix != "" {
		name = id + "_" + suffix
	}
	return id, filepath.Join(s.root, string(cat), name), nil
}

// AllocateDir creates and returns a fresh unique directory within the session
// root, used for multi-file results (split parts, extracted images).
func (s *Store) AllocateDir(cat models.Category, suffix string) (id, path string, err error) {
	id, path, err = s.Allocate(cat, suffix)
	if err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", "", fmt.Errorf("creating result directory: %w", err)
	}
	return id, path, nil
}

// SaveUpload materializes an uploaded file under uploads/ and registers it.
// The stored name keeps the original extension so downstream libraries can
// sniff the format from the path.
func (s *Store) SaveUpload(name string, r io.Reader) (*models.Artifact, error) {
	id, path, err := s.Allocate(models.CategoryUploads, "")
	if err != nil {
		return nil, err
	}
	path += filepath.Ext(name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating upload file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing upload file: %w", err)
	}

	art := &models.Artifact{
		ID:         id,
		Name:       filepath.Base(name),
		StoredName: filepath.Base(path),
		Category:   models.CategoryUploads,
		Size:       size,
		CreatedAt:  time.Now(),
		Path:       path,
	}

	s.register(art)
	return art, nil
}

// RegisterOutput records a produced file or directory (previously allocated
// via Allocate/AllocateDir and written by an operation) as an artifact.
func (s *Store) RegisterOutput(id, path, displayName string) (*models.Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat output: %w", err)
	}

	art := &models.Artifact{
		ID:         id,
		Name:       displayName,
		StoredName: filepath.Base(path),
		Category:   categoryOf(s.root, path),
		Size:       info.Size(),
		IsDir:      info.IsDir(),
		CreatedAt:  time.Now(),
		Path:       path,
	}
	if art.IsDir {
		art.Size = dirSize(path)
	}

	s.register(art)
	return art, nil
}

func (s *Store) register(art *models.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[art.ID] = art
}

// Get retrieves artifact metadata by ID.
func (s *Store) Get(id string) (*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	art, ok := s.artifacts[id]
	if !ok {
		return nil, fmt.Errorf("artifact not found: %s", id)
	}
	return art, nil
}

// Resolve finds an artifact by its stored name, the token embedded in
// download URLs.
func (s *Store) Resolve(storedName string) (*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, art := range s.artifacts {
		if art.StoredName == storedName {
			return art, nil
		}
	}
	return nil, fmt.Errorf("artifact not found: %s", storedName)
}

// List returns the most recently created artifacts, newest first.
func (s *Store) List(limit int) []*models.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.Artifact, 0, len(s.artifacts))
	for _, art := range s.artifacts {
		list = append(list, art)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

// Delete removes an artifact from disk and from the registry.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	art, ok := s.artifacts[id]
	if !ok {
		return fmt.Errorf("artifact not found: %s", id)
	}

	if err := os.RemoveAll(art.Path); err != nil {
		return fmt.Errorf("deleting artifact: %w", err)
	}
	delete(s.artifacts, id)
	return nil
}

// CategoryStats summarizes disk usage for one category directory.
type CategoryStats struct {
	Files     int   `json:"files"`
	SizeBytes int64 `json:"sizeBytes"`
}

// Stats walks the session root and reports per-category and total usage.
// It reads the filesystem rather than the registry so partially written or
// unregistered files are still counted.
func (s *Store) Stats() map[string]CategoryStats {
	s.mu.RLock()
	root := s.root
	s.mu.RUnlock()

	stats := make(map[string]CategoryStats, len(categories)+1)
	var total CategoryStats

	for _, cat := range categories {
		var cs CategoryStats
		filepath.WalkDir(filepath.Join(root, string(cat)), func(_ string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			cs.Files++
			cs.SizeBytes += info.Size()
			return nil
		})
		stats[string(cat)] = cs
		total.Files += cs.Files
		total.SizeBytes += cs.SizeBytes
	}

	stats["total"] = total
	return stats
}

// Sweep removes output and bundle artifacts created before the cutoff.
// Uploads are left alone so an in-flight request never loses its input; the
// session root itself is only ever removed by Teardown.
func (s *Store) Sweep(maxAge time.Duration) (removed int, freed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, art := range s.artifacts {
		if art.Category == models.CategoryUploads {
			continue
		}
		if art.CreatedAt.After(cutoff) {
			continue
		}
		if err := os.RemoveAll(art.Path); err != nil {
			s.logger.WithError(err).WithField("artifact", id).Warn("sweep: failed to remove artifact")
			continue
		}
		removed++
		freed += art.Size
		delete(s.artifacts, id)
	}
	return removed, freed
}

// Teardown recursively deletes the session root. It is safe to call more
// than once and tolerates the root having been removed already. Failures are
// logged and swallowed so shutdown can never be blocked by a stuck file.
func (s *Store) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.root); err != nil {
		s.logger.WithError(err).WithField("root", s.root).Warn("session teardown failed")
		return
	}

	if !s.tornDown {
		s.logger.WithField("root", s.root).Info("session store torn down")
	}
	s.tornDown = true
	s.artifacts = make(map[string]*models.Artifact)
}

func categoryOf(root, path string) models.Category {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return models.CategoryOutputs
	}
	first := strings.Split(filepath.ToSlash(rel), "/")[0]
	for _, cat := range categories {
		if first == string(cat) {
			return cat
		}
	}
	return models.CategoryOutputs
}

func dirSize(path string) int64 {
	var size int64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}
