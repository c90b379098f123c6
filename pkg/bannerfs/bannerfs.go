// Package bannerfs stores channel banner images on the local filesystem
// under a hash-derived directory fan-out.
package bannerfs

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store writes and resolves banner assets below a configured root
// directory. Each asset lives at
// channels/<channel_id>/<h[0:3]>/<h[3:6]>/<h[6:9]>/<filename> where h is
// the hex MD5 of a random UUID concatenated with the filename. The random
// salt keeps re-uploads of the same filename from colliding.
type Store struct {
	root       string
	publicBase string
	logger     zerolog.Logger
}

// New constructs a banner store rooted at dir. publicBase is the URL
// prefix under which the root is served.
func New(dir, publicBase string, logger zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("banner root directory must not be empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create banner root: %w", err)
	}

	return &Store{
		root:       dir,
		publicBase: strings.TrimRight(publicBase, "/"),
		logger:     logger.With().Str("component", "bannerfs").Logger(),
	}, nil
}

// Save persists the banner bytes and returns the relative storage path to
// record on the channel row.
func (s *Store) Save(channelID uint, filename string, reader io.Reader) (string, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." {
		return "", fmt.Errorf("banner filename must not be empty")
	}

	sum := md5.Sum([]byte(uuid.NewString() + filename))
	digest := hex.EncodeToString(sum[:])

	relPath := filepath.Join(
		"channels",
		fmt.Sprintf("%d", channelID),
		digest[:3], digest[3:6], digest[6:9],
		filename,
	)

	fullPath := filepath.Join(s.root, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("unable to create banner directory: %w", err)
	}

	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("unable to create banner file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("unable to write banner file: %w", err)
	}

	s.logger.Debug().Uint("channel_id", channelID).Str("path", relPath).Msg("banner stored")

	return relPath, nil
}

// URL resolves a stored relative path to its public URL. The second return
// is false when no file is present on disk; absence is a normal state and
// never an error.
func (s *Store) URL(relPath string) (string, bool) {
	relPath = strings.TrimSpace(relPath)
	if relPath == "" {
		return "", false
	}

	info, err := os.Stat(filepath.Join(s.root, relPath))
	if err != nil || info.IsDir() {
		return "", false
	}

	return s.publicBase + "/" + filepath.ToSlash(relPath), true
}

// Remove deletes a previously stored banner. Missing files are ignored so
// replace/clear flows stay idempotent.
func (s *Store) Remove(relPath string) error {
	relPath = strings.TrimSpace(relPath)
	if relPath == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.root, relPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to remove banner file: %w", err)
	}
	return nil
}
