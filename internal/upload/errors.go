package upload

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeRetriesExhausted = "UPLOAD_RETRIES_EXHAUSTED"
	textCodeInvalidContent   = "UPLOAD_INVALID_CONTENT"
)

// ErrInvalidContent matches local validation failures. They never reach the
// network and are not retried.
var ErrInvalidContent = errors.New("upload: invalid content")

// ErrRetriesExhausted matches tasks that kept failing transiently until the
// attempt budget ran out.
var ErrRetriesExhausted = errors.New("upload: retries exhausted")

func invalidContent(reference, reason string) error {
	err := goerrors.New(fmt.Sprintf("upload %s: %s", reference, reason), goerrors.CategoryBadInput).
		WithTextCode(textCodeInvalidContent).
		WithMetadata(map[string]any{"reference": reference})
	err.Source = fmt.Errorf("%w: %s", ErrInvalidContent, reason)
	return err
}

func retriesExhausted(reference string, attempts int, last error) error {
	err := goerrors.New(fmt.Sprintf("upload %s: gave up after %d attempts", reference, attempts), goerrors.CategoryOperation).
		WithTextCode(textCodeRetriesExhausted).
		WithMetadata(map[string]any{"reference": reference, "attempts": attempts})
	err.Source = errors.Join(ErrRetriesExhausted, last)
	return err
}
