package assets

import (
	"bytes"
	"encoding/base64"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// renderPreview produces a bounded thumbnail as a data URI. Undecodable input falls back
// to the original bytes so the browser can still try to render it.
func renderPreview(file File, maxPx int) string {
	img, err := imaging.Decode(bytes.NewReader(file.Data), imaging.AutoOrientation(true))
	if err != nil {
		return dataURI(file.ContentType, file.Data)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxPx || bounds.Dy() > maxPx {
		img = imaging.Fit(img, maxPx, maxPx, imaging.Lanczos)
	}

	format, contentType := imaging.JPEG, "image/jpeg"
	if file.ContentType == "image/png" || file.ContentType == "image/gif" {
		format, contentType = imaging.PNG, "image/png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(80)); err != nil {
		return dataURI(file.ContentType, file.Data)
	}
	return dataURI(contentType, buf.Bytes())
}

func dataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
