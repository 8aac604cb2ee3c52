package assets

import (
	"context"
	"fmt"
	"path"
	"strings"

	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/gabriel-vasile/mimetype"
)

const defaultPreviewMaxPx = 320

var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// Stager turns a locally selected file into a Pending reference with a preview.
type Stager struct {
	maxBytes     int64
	previewMaxPx int
}

func NewStager(maxBytes int64, previewMaxPx int) (*Stager, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	if previewMaxPx <= 0 {
		previewMaxPx = defaultPreviewMaxPx
	}
	return &Stager{maxBytes: maxBytes, previewMaxPx: previewMaxPx}, nil
}

// Stage validates the file is an accepted image and renders its preview locally.
// The sniffed MIME type wins over whatever the browser declared.
func (s *Stager) Stage(ctx context.Context, file File) (Reference, error) {
	if err := ctx.Err(); err != nil {
		return Reference{}, err
	}
	if len(file.Data) == 0 {
		return Reference{}, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if int64(len(file.Data)) > s.maxBytes {
		return Reference{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d bytes", s.maxBytes)).
			WithDetails(map[string]any{"size_bytes": len(file.Data), "max_bytes": s.maxBytes})
	}

	detected := mimetype.Detect(file.Data)
	contentType := strings.ToLower(detected.String())
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	if _, ok := allowedImageTypes[contentType]; !ok {
		return Reference{}, pkgerrors.New(pkgerrors.CodeValidation, "only png, jpeg, gif or webp images can be staged").
			WithDetails(map[string]any{"detected": contentType})
	}

	name := path.Base(strings.TrimSpace(file.Name))
	if name == "." || name == "/" || name == "" {
		name = "image" + detected.Extension()
	}

	staged := File{Name: name, ContentType: contentType, Data: file.Data}
	return Pending(staged, renderPreview(staged, s.previewMaxPx)), nil
}
