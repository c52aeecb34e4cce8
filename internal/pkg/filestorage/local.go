package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/linuxfest/backend/internal/pkg/logger"
)

const (
	mainFileName = "main.png"
	albumDirName = "album"
	pictureExt   = ".png"
)

// LocalStorage stores pictures on the local filesystem under <root>/<siteVersion>.
type LocalStorage struct {
	basePath string
}

var _ Store = (*LocalStorage)(nil)

// NewLocalStorage creates a new LocalStorage instance rooted at root/siteVersion.
func NewLocalStorage(root, siteVersion string) (*LocalStorage, error) {
	basePath := filepath.Join(root, siteVersion)
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) ownerDir(kind Kind, ownerID int64) string {
	return filepath.Join(ls.basePath, string(kind), strconv.FormatInt(ownerID, 10))
}

// pathFor resolves a key to its physical location.
func (ls *LocalStorage) pathFor(key Key) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	dir := ls.ownerDir(key.Kind, key.OwnerID)
	if key.IsAlbum() {
		return filepath.Join(dir, albumDirName, key.PictureID+pictureExt), nil
	}
	return filepath.Join(dir, mainFileName), nil
}

// Put writes through a temp file in the target directory and renames it into place.
func (ls *LocalStorage) Put(ctx context.Context, key Key, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dstPath, err := ls.pathFor(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(dstPath)
	// MkdirAll tolerates concurrent creation of the same directory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create picture directory")
		return fmt.Errorf("failed to create picture directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write picture content")
		return fmt.Errorf("failed to save file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move picture into place: %w", err)
	}

	logger.Debug().Str("path", dstPath).Msg("Picture stored")
	return nil
}

// Open returns the stored picture for key.
func (ls *LocalStorage) Open(ctx context.Context, key Key) (*File, error) {
	path, err := ls.pathFor(key)
	if err != nil {
		if errors.Is(err, ErrInvalidKey) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open picture: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat picture: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrFileNotFound
	}

	return &File{ReadSeekCloser: f, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Delete removes the file for key; a missing file counts as deleted.
func (ls *LocalStorage) Delete(ctx context.Context, key Key) error {
	path, err := ls.pathFor(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", path).Msg("Picture to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", path).Msg("Failed to delete picture")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", path).Msg("Picture deleted")
	return nil
}

// DeleteAll removes the owner's directory with all its pictures.
func (ls *LocalStorage) DeleteAll(ctx context.Context, kind Kind, ownerID int64) error {
	if err := MainKey(kind, ownerID).Validate(); err != nil {
		return err
	}
	dir := ls.ownerDir(kind, ownerID)
	if err := os.RemoveAll(dir); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to delete picture directory")
		return fmt.Errorf("failed to delete picture directory: %w", err)
	}
	return nil
}
