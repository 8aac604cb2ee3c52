package validators

import (
	"errors"
	"io"
	"net/http"

	"github.com/angelmondragon/content-console/internal/assets"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
)

const (
	fileField         = "file"
	multipartOverhead = 1 << 20
	maxFilesPerBatch  = 32
)

// ReadStagedFiles pulls every "file" part out of a multipart body. maxBytes bounds each file;
// the whole body is capped at maxFilesPerBatch files plus form overhead.
func ReadStagedFiles(r *http.Request, maxBytes int64) ([]assets.File, error) {
	if maxBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "upload limit not configured")
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes*maxFilesPerBatch+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "multipart body required")
	}

	var files []assets.File
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, bodyError(err)
		}
		if part.FormName() != fileField {
			_ = part.Close()
			continue
		}
		if len(files) == maxFilesPerBatch {
			_ = part.Close()
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "too many files").
				WithDetails(map[string]any{"max_files": maxFilesPerBatch})
		}

		data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
		_ = part.Close()
		if err != nil {
			return nil, bodyError(err)
		}
		if int64(len(data)) > maxBytes {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "file too large").
				WithDetails(map[string]any{"file": part.FileName(), "max_bytes": maxBytes})
		}
		files = append(files, assets.File{
			Name:        part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one file is required").
			WithDetails(map[string]string{fileField: "is required"})
	}
	return files, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body too large").
			WithDetails(map[string]any{"limit_bytes": tooLarge.Limit})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
}
