package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/linuxfest/backend/internal/pkg/apperrors"
	"github.com/linuxfest/backend/internal/pkg/logger"
	"github.com/linuxfest/backend/internal/pkg/metrics"
)

// Canvas size every stored picture is fitted to.
const (
	CanvasWidth  = 1280
	CanvasHeight = 960
)

// DefaultMaxUploadSize matches the upload limit of the public site (10 MB).
const DefaultMaxUploadSize int64 = 10_000_000

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var allowedMimeTypes = []string{"image/jpeg", "image/png"}

// Pipeline validates, resizes and stores uploaded pictures.
type Pipeline struct {
	store   Store
	maxSize int64
}

// NewPipeline creates a pipeline writing to store. A non-positive maxSize uses DefaultMaxUploadSize.
func NewPipeline(store Store, maxSize int64) *Pipeline {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &Pipeline{store: store, maxSize: maxSize}
}

// Store returns the underlying store.
func (p *Pipeline) Store() Store {
	return p.store
}

// Check validates an upload's name and declared size. It never touches the store.
func (p *Pipeline) Check(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		metrics.PicturesRejected.WithLabelValues("extension").Inc()
		return apperrors.ErrInvalidImageType
	}
	if size > p.maxSize {
		metrics.PicturesRejected.WithLabelValues("size").Inc()
		return apperrors.ErrImageTooLarge
	}
	return nil
}

// CheckAll validates every upload of a batch before any of them is processed.
func (p *Pipeline) CheckAll(files []*multipart.FileHeader) error {
	for _, fh := range files {
		if err := p.Check(fh.Filename, fh.Size); err != nil {
			return err
		}
	}
	return nil
}

// Save validates the upload, fits it to the canvas, encodes it as PNG and stores it under key.
func (p *Pipeline) Save(ctx context.Context, key Key, fh *multipart.FileHeader) error {
	if fh == nil {
		return apperrors.NewValidationError("no picture uploaded")
	}
	if err := p.Check(fh.Filename, fh.Size); err != nil {
		return err
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	encoded, err := p.transform(src)
	if err != nil {
		return err
	}

	if err := p.store.Put(ctx, key, bytes.NewReader(encoded)); err != nil {
		return err
	}

	metrics.PicturesProcessed.WithLabelValues(metricKind(key)).Inc()
	logger.Info().
		Str("kind", string(key.Kind)).
		Int64("owner_id", key.OwnerID).
		Str("picture_id", key.PictureID).
		Str("filename", fh.Filename).
		Msg("Picture saved")
	return nil
}

func (p *Pipeline) transform(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > p.maxSize {
		metrics.PicturesRejected.WithLabelValues("size").Inc()
		return nil, apperrors.ErrImageTooLarge
	}

	if mtype := mimetype.Detect(data); !mimetype.EqualsAny(mtype.String(), allowedMimeTypes...) {
		metrics.PicturesRejected.WithLabelValues("content").Inc()
		return nil, apperrors.ErrInvalidImageType
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		metrics.PicturesRejected.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("%w: %v", apperrors.ErrImageDecodingFailed, err)
	}

	fitted := imaging.Fill(img, CanvasWidth, CanvasHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode picture: %w", err)
	}
	return buf.Bytes(), nil
}

// Remove deletes the picture for key best-effort: failures are logged and counted, never returned.
func (p *Pipeline) Remove(ctx context.Context, key Key) {
	if err := p.store.Delete(ctx, key); err != nil {
		metrics.PictureCleanupFailures.Inc()
		logger.Warn().Err(err).
			Str("kind", string(key.Kind)).
			Int64("owner_id", key.OwnerID).
			Str("picture_id", key.PictureID).
			Msg("Failed to remove picture file")
	}
}

// RemoveAll deletes every picture of an owner best-effort.
func (p *Pipeline) RemoveAll(ctx context.Context, kind Kind, ownerID int64) {
	if err := p.store.DeleteAll(ctx, kind, ownerID); err != nil {
		metrics.PictureCleanupFailures.Inc()
		logger.Warn().Err(err).
			Str("kind", string(kind)).
			Int64("owner_id", ownerID).
			Msg("Failed to remove picture directory")
	}
}

func metricKind(key Key) string {
	if key.IsAlbum() {
		return string(key.Kind) + "_album"
	}
	return string(key.Kind) + "_main"
}
