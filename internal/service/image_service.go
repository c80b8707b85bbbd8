package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/minkgkyaw9899/m-blog-server/internal/config"
	"github.com/minkgkyaw9899/m-blog-server/internal/middleware"
	"github.com/minkgkyaw9899/m-blog-server/internal/models"
	"github.com/minkgkyaw9899/m-blog-server/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageUploadDir       = "uploads"
	DefaultImageMaxUploadSizeMB = 5
	MaxImageDimension           = 1440
	WebPQuality                 = 80

	// UploadsURLPrefix is where stored images are served from.
	UploadsURLPrefix = "/uploads/"
)

// AcceptedImageMIMETypes lists the content types an upload may have.
var AcceptedImageMIMETypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

// UploadImageInput is a single uploaded file.
type UploadImageInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

type ImageService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

func NewImageService(cfg *config.Config) *ImageService {
	uploadDir := DefaultImageUploadDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// UploadDir returns the directory stored images are written to.
func (s *ImageService) UploadDir() string { return s.uploadDir }

// MaxUploadSizeBytes returns the largest accepted upload.
func (s *ImageService) MaxUploadSizeBytes() int64 { return s.maxUploadSizeBytes }

// Process validates an upload, shrinks it to fit MaxImageDimension, re-encodes it
// as WebP and stores it under a random name. It returns the public URL path.
func (s *ImageService) Process(ctx context.Context, in UploadImageInput) (string, error) {
	url, err := s.process(in)
	if err != nil {
		outcome := "rejected"
		if models.HTTPStatus(err) >= http.StatusInternalServerError {
			outcome = "failed"
		}
		observability.ImageUploadsTotal.WithLabelValues(outcome).Inc()
		return "", err
	}
	observability.ImageUploadsTotal.WithLabelValues("stored").Inc()
	middleware.Logger.DebugContext(ctx, "image stored", slog.String("url", url), slog.String("filename", in.Filename))
	return url, nil
}

func (s *ImageService) process(in UploadImageInput) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewValidationError("image field is required")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detected := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detected) {
		return "", models.NewValidationError("Invalid image type, accepted: jpeg, jpg, png, webp")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isAllowedImageMIME(provided) {
		return "", models.NewValidationError("Invalid image type, accepted: jpeg, jpg, png, webp")
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, resizeToFit(decoded, MaxImageDimension), &webp.Options{Quality: WebPQuality}); err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString() + ".webp"
	if err := writeBytesToFile(filepath.Join(s.uploadDir, name), buf.Bytes()); err != nil {
		return "", models.NewInternalError(err)
	}
	return UploadsURLPrefix + name, nil
}

// Remove deletes a stored image given its public URL. Unknown URLs are ignored.
func (s *ImageService) Remove(url string) {
	name := strings.TrimPrefix(url, UploadsURLPrefix)
	if name == url || name == "" || strings.ContainsAny(name, `/\`) {
		return
	}
	if err := os.Remove(filepath.Join(s.uploadDir, name)); err != nil && !os.IsNotExist(err) {
		middleware.Logger.Warn("failed to remove image", slog.String("url", url), slog.String("error", err.Error()))
	}
}

// resizeToFit scales src down so neither side exceeds limit, keeping the aspect ratio.
func resizeToFit(src image.Image, limit int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= limit && h <= limit {
		return src
	}

	scale := float64(limit) / float64(w)
	if hs := float64(limit) / float64(h); hs < scale {
		scale = hs
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	ct := normalizeContentType(contentType)
	for _, accepted := range AcceptedImageMIMETypes {
		if ct == accepted {
			return true
		}
	}
	return false
}

func normalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
