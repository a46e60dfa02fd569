// store_test.go - Tests for the session file store lifecycle
package store

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdfmaster/backend/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s, err := Open(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(s.Teardown)
	return s
}

func TestOpen(t *testing.T) {
	t.Run("root exists and is writable", func(t *testing.T) {
		s := newTestStore(t)

		info, err := os.Stat(s.Root())
		if err != nil {
			t.Fatalf("expected session root to exist: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected session root to be a directory")
		}

		probe := filepath.Join(s.Root(), "probe")
		if err := os.WriteFile(probe, []byte("x"), 0o644); err != nil {
			t.Errorf("expected session root to be writable: %v", err)
		}
	})

	t.Run("creates category directories", func(t *testing.T) {
		s := newTestStore(t)

		for _, cat := range []models.Category{models.CategoryUploads, models.CategoryOutputs, models.CategoryBundles} {
			if _, err := os.Stat(filepath.Join(s.Root(), string(cat))); err != nil {
				t.Errorf("expected %s directory: %v", cat, err)
			}
		}
	})

	t.Run("fresh unique root per call", func(t *testing.T) {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		parent := t.TempDir()

		a, err := Open(parent, logger)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		b, err := Open(parent, logger)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer a.Teardown()
		defer b.Teardown()

		if a.Root() == b.Root() {
			t.Errorf("expected distinct roots, both were %s", a.Root())
		}
	})

	t.Run("unwritable parent fails", func(t *testing.T) {
		if os.Getuid() == 0 {
			t.Skip("running as root, permission bits are not enforced")
		}
		parent := t.TempDir()
		if err := os.Chmod(parent, 0o500); err != nil {
			t.Fatalf("chmod: %v", err)
		}
		defer os.Chmod(parent, 0o755)

		if _, err := Open(parent, nil); err == nil {
			t.Error("expected error for unwritable parent")
		}
	})
}

func TestAllocate(t *testing.T) {
	t.Run("paths are pairwise distinct", func(t *testing.T) {
		s := newTestStore(t)

		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			_, path, err := s.Allocate(models.CategoryUploads, "in.pdf")
			if err != nil {
				t.Fatalf("Allocate: %v", err)
			}
			if seen[path] {
				t.Fatalf("duplicate path allocated: %s", path)
			}
			seen[path] = true
		}
	})

	t.Run("path lives under the category directory", func(t *testing.T) {
		s := newTestStore(t)

		_, path, err := s.Allocate(models.CategoryOutputs, "merged.pdf")
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		wantPrefix := filepath.Join(s.Root(), "outputs") + string(os.PathSeparator)
		if !strings.HasPrefix(path, wantPrefix) {
			t.Errorf("path %s not under %s", path, wantPrefix)
		}
		if !strings.HasSuffix(path, "_merged.pdf") {
			t.Errorf("path %s missing suffix", path)
		}
	})

	t.Run("fails after teardown", func(t *testing.T) {
		s := newTestStore(t)
		s.Teardown()

		if _, _, err := s.Allocate(models.CategoryUploads, ""); err == nil {
			t.Error("expected error allocating from a torn-down store")
		}
	})
}

func TestTeardown(t *testing.T) {
	t.Run("removes root", func(t *testing.T) {
		s := newTestStore(t)
		root := s.Root()

		s.Teardown()

		if _, err := os.Stat(root); !os.IsNotExist(err) {
			t.Errorf("expected root to be absent, stat err = %v", err)
		}
	})

	t.Run("double teardown does not error", func(t *testing.T) {
		s := newTestStore(t)
		s.Teardown()
		s.Teardown() // must be a no-op
	})

	t.Run("tolerates manually deleted root", func(t *testing.T) {
		s := newTestStore(t)
		if err := os.RemoveAll(s.Root()); err != nil {
			t.Fatalf("RemoveAll: %v", err)
		}
		s.Teardown() // must complete without error
	})

	t.Run("removes written artifacts", func(t *testing.T) {
		s := newTestStore(t)

		_, p1, err := s.Allocate(models.CategoryUploads, "a.pdf")
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		_, p2, err := s.Allocate(models.CategoryUploads, "b.pdf")
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if err := os.WriteFile(p1, []byte("first"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := os.WriteFile(p2, []byte("second"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		s.Teardown()

		for _, p := range []string{p1, p2} {
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				t.Errorf("expected %s to be absent, stat err = %v", p, err)
			}
		}
	})
}

func TestSaveUpload(t *testing.T) {
	s := newTestStore(t)

	art, err := s.SaveUpload("report.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}

	if art.Name != "report.pdf" {
		t.Errorf("Name = %s, want report.pdf", art.Name)
	}
	if filepath.Ext(art.StoredName) != ".pdf" {
		t.Errorf("stored name %s lost the extension", art.StoredName)
	}
	if art.Size != int64(len("%PDF-1.4 fake")) {
		t.Errorf("Size = %d", art.Size)
	}

	got, err := s.Get(art.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Path != art.Path {
		t.Errorf("Get returned different path")
	}

	data, err := os.ReadFile(art.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("content mismatch: %q", data)
	}
}

func TestResolveAndList(t *testing.T) {
	s := newTestStore(t)

	first, err := s.SaveUpload("one.pdf", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	second, err := s.SaveUpload("two.pdf", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}

	got, err := s.Resolve(first.StoredName)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("Resolve returned %s, want %s", got.ID, first.ID)
	}

	if _, err := s.Resolve("nope.pdf"); err == nil {
		t.Error("expected error resolving unknown name")
	}

	list := s.List(10)
	if len(list) != 2 {
		t.Fatalf("List returned %d artifacts, want 2", len(list))
	}
	_ = second

	if len(s.List(1)) != 1 {
		t.Error("List did not honor limit")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	art, err := s.SaveUpload("gone.pdf", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}

	if err := s.Delete(art.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(art.Path); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed")
	}
	if _, err := s.Get(art.ID); err == nil {
		t.Error("expected Get to fail after delete")
	}
	if err := s.Delete(art.ID); err == nil {
		t.Error("expected second Delete to fail")
	}
}

func TestRegisterOutput(t *testing.T) {
	s := newTestStore(t)

	id, path, err := s.Allocate(models.CategoryOutputs, "rotated.pdf")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := os.WriteFile(path, []byte("output bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	art, err := s.RegisterOutput(id, path, "rotated.pdf")
	if err != nil {
		t.Fatalf("RegisterOutput: %v", err)
	}
	if art.Category != models.CategoryOutputs {
		t.Errorf("Category = %s, want outputs", art.Category)
	}
	if art.IsDir {
		t.Error("file artifact marked as directory")
	}
	if art.DownloadURL() != "/api/download/"+art.StoredName {
		t.Errorf("unexpected download URL %s", art.DownloadURL())
	}
}

func TestRegisterOutputDir(t *testing.T) {
	s := newTestStore(t)

	id, dir, err := s.AllocateDir(models.CategoryOutputs, "split")
	if err != nil {
		t.Fatalf("AllocateDir: %v", err)
	}
	for _, name := range []string{"page_1.pdf", "page_2.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("part"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	art, err := s.RegisterOutput(id, dir, "split")
	if err != nil {
		t.Fatalf("RegisterOutput: %v", err)
	}
	if !art.IsDir {
		t.Error("expected directory artifact")
	}
	if art.Size != int64(2*len("part")) {
		t.Errorf("Size = %d, want %d", art.Size, 2*len("part"))
	}
	if art.DownloadURL() != "/api/download/bundle/"+art.ID {
		t.Errorf("unexpected download URL %s", art.DownloadURL())
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SaveUpload("a.pdf", strings.NewReader("aaaa")); err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	id, path, err := s.Allocate(models.CategoryOutputs, "out.pdf")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := os.WriteFile(path, []byte("bbbbbb"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := s.RegisterOutput(id, path, "out.pdf"); err != nil {
		t.Fatalf("RegisterOutput: %v", err)
	}

	stats := s.Stats()
	if stats["uploads"].Files != 1 || stats["uploads"].SizeBytes != 4 {
		t.Errorf("uploads stats = %+v", stats["uploads"])
	}
	if stats["outputs"].Files != 1 || stats["outputs"].SizeBytes != 6 {
		t.Errorf("outputs stats = %+v", stats["outputs"])
	}
	if stats["total"].Files != 2 || stats["total"].SizeBytes != 10 {
		t.Errorf("total stats = %+v", stats["total"])
	}
}

func TestSweep(t *testing.T) {
	s := newTestStore(t)

	upload, err := s.SaveUpload("keep.pdf", strings.NewReader("input"))
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}

	id, path, err := s.Allocate(models.CategoryOutputs, "old.pdf")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	old, err := s.RegisterOutput(id, path, "old.pdf")
	if err != nil {
		t.Fatalf("RegisterOutput: %v", err)
	}
	// Age the output past the cutoff.
	old.CreatedAt = time.Now().Add(-2 * time.Hour)

	removed, freed := s.Sweep(time.Hour)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if freed != int64(len("stale")) {
		t.Errorf("freed = %d", freed)
	}
	if _, err := os.Stat(old.Path); !os.IsNotExist(err) {
		t.Error("expected swept output to be gone")
	}

	// Uploads are never swept.
	if _, err := s.Get(upload.ID); err != nil {
		t.Errorf("upload artifact was swept: %v", err)
	}
}
