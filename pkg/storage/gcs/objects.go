package gcs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ErrSessionLost is returned when GCS forgets a resumable session mid-transfer.
var ErrSessionLost = errors.New("gcs resumable session expired")

// Put uploads data under key using a resumable session, reporting progress after every
// acknowledged chunk.
func (c *Client) Put(ctx context.Context, key, contentType string, data []byte, progress func(transferred, total int64)) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("object key required")
	}

	sessionURI, err := c.startResumable(ctx, key, contentType, int64(len(data)))
	if err != nil {
		return err
	}

	total := int64(len(data))
	if total == 0 {
		_, err := c.putChunk(ctx, sessionURI, nil, 0, total)
		if err == nil && progress != nil {
			progress(0, 0)
		}
		return err
	}

	chunkSize := c.chunkSize
	if chunkSize <= 0 {
		chunkSize = chunkAlignment
	}

	var offset int64
	for offset < total {
		end := offset + int64(chunkSize)
		if end > total {
			end = total
		}
		next, err := c.putChunk(ctx, sessionURI, data[offset:end], offset, total)
		if err != nil {
			return err
		}
		if next <= offset {
			return fmt.Errorf("gcs upload made no progress at offset %d", offset)
		}
		offset = next
		if progress != nil {
			progress(offset, total)
		}
	}
	return nil
}

func (c *Client) startResumable(ctx context.Context, key, contentType string, size int64) (string, error) {
	u := fmt.Sprintf(
		"%s/upload/storage/v1/b/%s/o?uploadType=resumable&name=%s",
		c.endpoint,
		url.PathEscape(c.defaultBucket),
		url.QueryEscape(key),
	)
	meta, err := json.Marshal(map[string]string{"name": key, "contentType": contentType})
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, http.MethodPost, u, bytes.NewReader(meta), map[string]string{
		"Content-Type":            "application/json; charset=UTF-8",
		"X-Upload-Content-Type":   contentType,
		"X-Upload-Content-Length": strconv.FormatInt(size, 10),
	})
	if err != nil {
		return "", fmt.Errorf("start resumable upload: %w", err)
	}
	defer closeBody(ctx, c.logg, resp.Body, "gcs: closing response body failed")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", statusError("start resumable upload", resp)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", errors.New("start resumable upload: missing session location")
	}
	return location, nil
}

// putChunk sends one chunk and returns the next offset the server expects.
func (c *Client) putChunk(ctx context.Context, sessionURI string, chunk []byte, offset, total int64) (int64, error) {
	contentRange := fmt.Sprintf("bytes */%d", total)
	if len(chunk) > 0 {
		contentRange = fmt.Sprintf("bytes %d-%d/%d", offset, offset+int64(len(chunk))-1, total)
	}
	resp, err := c.do(ctx, http.MethodPut, sessionURI, bytes.NewReader(chunk), map[string]string{
		"Content-Range": contentRange,
	})
	if err != nil {
		return 0, fmt.Errorf("upload chunk at %d: %w", offset, err)
	}
	defer closeBody(ctx, c.logg, resp.Body, "gcs: closing response body failed")

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return total, nil
	case resp.StatusCode == http.StatusPermanentRedirect:
		// 308 Resume Incomplete: Range header reports the persisted prefix.
		return parseRangeEnd(resp.Header.Get("Range")), nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return 0, ErrSessionLost
	default:
		return 0, statusError(fmt.Sprintf("upload chunk at %d", offset), resp)
	}
}

// parseRangeEnd turns "bytes=0-524287" into 524288. A missing header means nothing was persisted.
func parseRangeEnd(header string) int64 {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	idx := strings.LastIndex(header, "-")
	if idx < 0 {
		return 0
	}
	last, err := strconv.ParseInt(header[idx+1:], 10, 64)
	if err != nil {
		return 0
	}
	return last + 1
}

// DownloadURL confirms the object is committed and returns its durable URL.
func (c *Client) DownloadURL(ctx context.Context, key string) (string, error) {
	if c == nil || c.tokenSource == nil {
		return "", errors.New("gcs client not initialized")
	}
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.endpoint, url.PathEscape(c.defaultBucket), url.PathEscape(key))
	resp, err := c.do(ctx, http.MethodGet, u, nil, nil)
	if err != nil {
		return "", fmt.Errorf("stat object: %w", err)
	}
	defer closeBody(ctx, c.logg, resp.Body, "gcs: closing response body failed")

	if resp.StatusCode != http.StatusOK {
		return "", statusError("stat object", resp)
	}
	return c.publicURL(key), nil
}

func (c *Client) publicURL(key string) string {
	base := c.publicBaseURL
	if base == "" {
		base = defaultEndpoint + "/" + c.defaultBucket
	}
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return base + "/" + strings.Join(segments, "/")
}

// Delete removes the object. Missing objects count as deleted.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.endpoint, url.PathEscape(c.defaultBucket), url.PathEscape(key))
	resp, err := c.do(ctx, http.MethodDelete, u, nil, nil)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	defer closeBody(ctx, c.logg, resp.Body, "gcs: closing response body failed")

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return statusError("delete object", resp)
	}
}
