package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"datasight/internal/errors"
)

// timestampFormat prefixes stored upload names.
const timestampFormat = "20060102_150405"

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// StoredFile describes one file kept by the store.
type StoredFile struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Store manages the uploads and reports directories.
type Store struct {
	uploadsDir string
	reportsDir string
	logger     *slog.Logger
	now        func() time.Time
}

// NewStore creates a store over the two directories.
func NewStore(uploadsDir, reportsDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		uploadsDir: uploadsDir,
		reportsDir: reportsDir,
		logger:     logger,
		now:        time.Now,
	}
}

// SaveUpload streams an uploaded file to the uploads directory under a
// timestamped sanitized name and returns the stored name.
func (s *Store) SaveUpload(originalName string, r io.Reader) (StoredFile, error) {
	name := fmt.Sprintf("%s_%s", s.now().Format(timestampFormat), SanitizeName(originalName))
	path := filepath.Join(s.uploadsDir, name)

	if err := os.MkdirAll(s.uploadsDir, 0755); err != nil {
		return StoredFile{}, errors.NewStorageError("failed to create uploads directory", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return StoredFile{}, errors.NewStorageError("failed to create upload file", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return StoredFile{}, errors.NewStorageError("failed to write upload file", err)
	}
	if err := f.Sync(); err != nil {
		return StoredFile{}, errors.NewStorageError("failed to sync upload file", err)
	}

	s.logger.Info("upload stored",
		slog.String("name", name),
		slog.Int64("size", size))

	return StoredFile{Name: name, Size: size, ModifiedAt: s.now()}, nil
}

// UploadPath resolves a stored upload name to its path on disk.
func (s *Store) UploadPath(name string) (string, error) {
	return s.resolve(s.uploadsDir, name)
}

// UploadExists reports whether the named upload is present.
func (s *Store) UploadExists(name string) bool {
	path, err := s.resolve(s.uploadsDir, name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// StatUpload returns metadata for a stored upload.
func (s *Store) StatUpload(name string) (StoredFile, error) {
	path, err := s.resolve(s.uploadsDir, name)
	if err != nil {
		return StoredFile{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return StoredFile{}, errors.NewNotFoundError(fmt.Sprintf("upload %q", name))
	}
	return StoredFile{Name: name, Size: info.Size(), ModifiedAt: info.ModTime()}, nil
}

// RemoveUpload deletes a stored upload.
func (s *Store) RemoveUpload(name string) error {
	path, err := s.resolve(s.uploadsDir, name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// ListUploads lists stored uploads, newest first.
func (s *Store) ListUploads() ([]StoredFile, error) {
	return listDir(s.uploadsDir)
}

// SaveReport writes a generated report into the reports directory.
func (s *Store) SaveReport(name string, data []byte) (StoredFile, error) {
	if err := validateName(name); err != nil {
		return StoredFile{}, err
	}
	if err := os.MkdirAll(s.reportsDir, 0755); err != nil {
		return StoredFile{}, errors.NewStorageError("failed to create reports directory", err)
	}

	path := filepath.Join(s.reportsDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return StoredFile{}, errors.NewStorageError("failed to write report file", err)
	}

	s.logger.Info("report stored",
		slog.String("name", name),
		slog.Int("size", len(data)))

	return StoredFile{Name: name, Size: int64(len(data)), ModifiedAt: s.now()}, nil
}

// OpenReport opens a stored report for reading. The caller closes it.
func (s *Store) OpenReport(name string) (*os.File, StoredFile, error) {
	path, err := s.resolve(s.reportsDir, name)
	if err != nil {
		return nil, StoredFile{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, StoredFile{}, errors.NewNotFoundError(fmt.Sprintf("report %q", name))
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, StoredFile{}, errors.NewStorageError("failed to stat report file", err)
	}
	return f, StoredFile{Name: name, Size: info.Size(), ModifiedAt: info.ModTime()}, nil
}

// ListReports lists stored reports, newest first.
func (s *Store) ListReports() ([]StoredFile, error) {
	return listDir(s.reportsDir)
}

// SanitizeName strips path components and unsafe characters from a
// client-supplied file name.
func SanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return base
}

// resolve joins a validated name with dir.
func (s *Store) resolve(dir, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// validateName rejects names that could escape the storage directory.
func validateName(name string) error {
	if name == "" ||
		strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`) ||
		name != filepath.Base(name) {
		return errors.NewAppValidationError(fmt.Sprintf("invalid file name %q", name))
	}
	return nil
}

func listDir(dir string) ([]StoredFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewStorageError("failed to list directory", err)
	}

	var out []StoredFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, StoredFile{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ModifiedAt.After(out[j].ModifiedAt)
	})
	return out, nil
}
