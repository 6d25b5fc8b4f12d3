package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ImageStore writes uploaded receipt images to a directory.
type ImageStore struct {
	dir string
	now func() time.Time
}

// NewImageStore returns a store rooted at dir, creating it if needed.
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create receipts directory: %w", err)
	}
	return &ImageStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory images are written to.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save writes data to receipt_<UTC timestamp with microseconds>.png and
// returns the path. Existing files are never overwritten: a clash within
// the same microsecond gets a numeric suffix.
func (s *ImageStore) Save(data []byte) (string, error) {
	base := "receipt_" + timestampName(s.now().UTC())
	for attempt := 0; attempt < 100; attempt++ {
		name := base + ".png"
		if attempt > 0 {
			name = fmt.Sprintf("%s_%d.png", base, attempt)
		}
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create receipt image: %w", err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("write receipt image: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close receipt image: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("create receipt image: no free name for %s", base)
}

// timestampName formats t as YYYYMMDDhhmmss followed by six microsecond digits.
func timestampName(t time.Time) string {
	return t.Format("20060102150405") + fmt.Sprintf("%06d", t.Nanosecond()/1000)
}
