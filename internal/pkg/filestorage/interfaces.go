package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrFileNotFound is returned when a key has no stored file.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidKey is returned for keys that cannot address a file.
var ErrInvalidKey = errors.New("invalid file key")

// Kind groups stored pictures by the entity that owns them.
type Kind string

const (
	KindWorkshop Kind = "workshops"
	KindTeacher  Kind = "teachers"
)

// Key addresses one stored picture. An empty PictureID addresses the owner's main picture;
// otherwise it addresses an album entry.
type Key struct {
	Kind      Kind
	OwnerID   int64
	PictureID string
}

// MainKey returns the key of an owner's main picture.
func MainKey(kind Kind, ownerID int64) Key {
	return Key{Kind: kind, OwnerID: ownerID}
}

// AlbumKey returns the key of an album picture.
func AlbumKey(kind Kind, ownerID int64, pictureID string) Key {
	return Key{Kind: kind, OwnerID: ownerID, PictureID: pictureID}
}

// IsAlbum reports whether the key addresses an album entry.
func (k Key) IsAlbum() bool {
	return k.PictureID != ""
}

// Validate rejects keys that could escape the storage root.
func (k Key) Validate() error {
	if k.Kind != KindWorkshop && k.Kind != KindTeacher {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidKey, k.Kind)
	}
	if k.OwnerID <= 0 {
		return fmt.Errorf("%w: owner id must be positive", ErrInvalidKey)
	}
	if k.PictureID != "" {
		if _, err := uuid.Parse(k.PictureID); err != nil {
			return fmt.Errorf("%w: picture id %q", ErrInvalidKey, k.PictureID)
		}
	}
	return nil
}

// File is an opened stored picture.
type File struct {
	io.ReadSeekCloser
	Size    int64
	ModTime time.Time
}

// Store persists pictures addressed by Key. Records reference pictures by key only,
// never by filesystem path.
type Store interface {
	// Put writes the content for key, replacing any existing file
	Put(ctx context.Context, key Key, r io.Reader) error

	// Open returns the stored file or ErrFileNotFound
	Open(ctx context.Context, key Key) (*File, error)

	// Delete removes the file for key. Deleting a missing file is not an error.
	Delete(ctx context.Context, key Key) error

	// DeleteAll removes every file stored for an owner
	DeleteAll(ctx context.Context, kind Kind, ownerID int64) error
}
