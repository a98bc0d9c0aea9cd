package identity

import (
	"path/filepath"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys are prefixed by kind so an article and a draft never share an id.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ArticleID identifies a Markdown source by its cleaned absolute path, so
// every publish of the same file logs under the same id.
func ArticleID(path string) uuid.UUID {
	path = strings.TrimSpace(path)
	if path == "" {
		return uuid.Nil
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return UUID("go-publisher:article:" + filepath.ToSlash(filepath.Clean(path)))
}

// DraftID identifies a draft title within one account.
func DraftID(appID, title string) uuid.UUID {
	return UUID("go-publisher:draft:" + strings.TrimSpace(appID) + ":" + strings.TrimSpace(title))
}

// RunID returns a random id for a single publish invocation.
func RunID() uuid.UUID {
	return uuid.New()
}
