package businessflow

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/kubousky/dotmap/app/dto"
	"github.com/kubousky/dotmap/repository"
	"github.com/kubousky/dotmap/utils"
)

// DotImageFlow defines operations for dot image blobs
type DotImageFlow interface {
	AttachImage(ctx context.Context, userID, dotID uint, file io.Reader, originalFilename string, metadata *ClientMetadata) (*dto.AttachImageResponse, error)
	DownloadImage(ctx context.Context, userID, dotID uint) (string, string, []byte, error)
}

// DotImageFlowImpl implements DotImageFlow
type DotImageFlowImpl struct {
	dotRepo   repository.DotRepository
	userRepo  repository.UserRepository
	uploadDir string
}

// NewDotImageFlow creates a new dot image flow instance. uploadDir is the
// directory blobs are stored under; it is created on first upload.
func NewDotImageFlow(dotRepo repository.DotRepository, userRepo repository.UserRepository, uploadDir string) DotImageFlow {
	if uploadDir == "" {
		uploadDir = utils.DotImageUploadDir
	}
	return &DotImageFlowImpl{
		dotRepo:   dotRepo,
		userRepo:  userRepo,
		uploadDir: uploadDir,
	}
}

var imageFormatExts = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// AttachImage replaces the image of one of the caller's dots. The payload
// must decode as an actual image; the stored blob keeps the extension of
// the uploaded filename. The blob is written to disk before the database
// reference moves, so a failed upload never clobbers the current image.
// The previous blob is removed only after the swap.
func (f *DotImageFlowImpl) AttachImage(ctx context.Context, userID, dotID uint, file io.Reader, originalFilename string, metadata *ClientMetadata) (*dto.AttachImageResponse, error) {
	user, err := getUser(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}

	dot, err := f.dotRepo.ByIDForOwner(ctx, dotID, user.ID)
	if err != nil {
		return nil, NewBusinessError("IMAGE_ATTACH_FAILED", "Image attach failed", err)
	}
	if dot == nil {
		return nil, ErrDotNotFound
	}

	limited := io.LimitReader(file, utils.MaxDotImageSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, NewBusinessError("IMAGE_ATTACH_FAILED", "Image attach failed", err)
	}
	if int64(len(data)) > utils.MaxDotImageSize {
		return nil, ErrImageTooLarge
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImage
	}
	formatExt, ok := imageFormatExts[format]
	if !ok {
		return nil, ErrInvalidImage
	}

	// The blob keeps the uploaded filename's extension; the decoded
	// format only gates whether the payload is accepted at all.
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalFilename)))
	if ext == "" || ext == "." {
		ext = formatExt
	}

	if err := os.MkdirAll(f.uploadDir, 0o755); err != nil {
		return nil, NewBusinessError("IMAGE_ATTACH_FAILED", "Image attach failed", err)
	}

	filename := uuid.New().String() + ext
	fullPath := filepath.Join(f.uploadDir, filename)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return nil, NewBusinessError("IMAGE_ATTACH_FAILED", "Image attach failed", err)
	}

	storedPath := filepath.ToSlash(fullPath)
	previous := dot.Image
	if err := f.dotRepo.UpdateImage(ctx, dot.ID, &storedPath); err != nil {
		_ = os.Remove(fullPath)
		return nil, NewBusinessError("IMAGE_ATTACH_FAILED", "Image attach failed", err)
	}

	if previous != nil && *previous != storedPath {
		if cleanPath, err := f.sanitizeImagePath(*previous); err == nil {
			_ = os.Remove(cleanPath)
		}
	}

	return &dto.AttachImageResponse{
		ID:    dot.ID,
		Image: storedPath,
	}, nil
}

// DownloadImage returns the stored image blob of one of the caller's dots
func (f *DotImageFlowImpl) DownloadImage(ctx context.Context, userID, dotID uint) (string, string, []byte, error) {
	user, err := getUser(ctx, f.userRepo, userID)
	if err != nil {
		return "", "", nil, err
	}

	dot, err := f.dotRepo.ByIDForOwner(ctx, dotID, user.ID)
	if err != nil {
		return "", "", nil, NewBusinessError("IMAGE_FETCH_FAILED", "Image fetch failed", err)
	}
	if dot == nil {
		return "", "", nil, ErrDotNotFound
	}
	if dot.Image == nil {
		return "", "", nil, ErrDotNotFound
	}

	cleanPath, err := f.sanitizeImagePath(*dot.Image)
	if err != nil {
		return "", "", nil, err
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", "", nil, NewBusinessError("IMAGE_FETCH_FAILED", "Image fetch failed", err)
	}

	filename := filepath.Base(cleanPath)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return filename, contentType, data, nil
}

// sanitizeImagePath rejects stored paths that escape the upload directory
func (f *DotImageFlowImpl) sanitizeImagePath(path string) (string, error) {
	if path == "" {
		return "", NewBusinessError("INVALID_PATH", "path is empty", nil)
	}
	cleaned := filepath.ToSlash(filepath.Clean(filepath.FromSlash(path)))
	if filepath.IsAbs(cleaned) {
		return "", NewBusinessError("INVALID_PATH", "absolute path not allowed", nil)
	}
	// Prefix check must stop at a separator so a sibling directory
	// sharing the prefix (uploads/dotx next to uploads/dot) is rejected.
	base := filepath.ToSlash(filepath.Clean(f.uploadDir))
	if cleaned != base && !strings.HasPrefix(cleaned, base+"/") {
		return "", NewBusinessError("INVALID_PATH", "path is outside allowed directory", nil)
	}
	return filepath.FromSlash(cleaned), nil
}
