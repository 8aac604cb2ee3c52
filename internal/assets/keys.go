package assets

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewKey builds a collision-resistant object key under namespace, e.g. employees/<uuid>.
func NewKey(namespace string) (string, error) {
	ns := strings.Trim(strings.TrimSpace(namespace), "/")
	if ns == "" {
		return "", fmt.Errorf("asset namespace required")
	}
	return ns + "/" + uuid.NewString(), nil
}

// NamespaceOf returns the namespace prefix of key.
func NamespaceOf(key string) string {
	if idx := strings.Index(key, "/"); idx > 0 {
		return key[:idx]
	}
	return ""
}
