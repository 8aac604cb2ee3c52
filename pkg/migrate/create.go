package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9]+`)

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s: ledger schema change
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- %[1]s: revert
-- +goose StatementEnd
`

// migrationSlug lowercases name and collapses anything outside [a-z0-9] into single underscores.
func migrationSlug(name string) string {
	return strings.Trim(nameSanitizeRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// CreateSQLMigration writes <dir>/<YYYYMMDDHHMMSS>_<slug>.sql. A slug already used by
// another migration in dir is rejected.
func CreateSQLMigration(dir string, name string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("migration dir is required")
	}
	slug := migrationSlug(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	existing, err := filepath.Glob(filepath.Join(dir, "*_"+slug+".sql"))
	if err != nil {
		return "", fmt.Errorf("scan %q: %w", dir, err)
	}
	for _, path := range existing {
		if sqlFileRe.MatchString(filepath.Base(path)) {
			return "", fmt.Errorf("migration %q already exists as %s", slug, filepath.Base(path))
		}
	}

	filename := fmt.Sprintf("%s_%s.sql", time.Now().UTC().Format("20060102150405"), slug)
	fullpath := filepath.Join(dir, filename)
	f, err := os.OpenFile(fullpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", fullpath, err)
	}
	if _, err := fmt.Fprintf(f, migrationTemplate, slug); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}
