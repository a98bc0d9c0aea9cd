package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeCredentialRejected = "PLATFORM_CREDENTIAL_REJECTED"
	textCodeRateLimited        = "PLATFORM_RATE_LIMITED"
	textCodeNotFound           = "PLATFORM_NOT_FOUND"
	textCodeBadInput           = "PLATFORM_BAD_INPUT"
	textCodeForbidden          = "PLATFORM_FORBIDDEN"
	textCodeUnavailable        = "PLATFORM_UNAVAILABLE"
	textCodeFailed             = "PLATFORM_FAILED"
)

// classify maps a platform errcode onto a failure kind.
func classify(code int) goerrors.Category {
	switch code {
	case 40001, 40014, 41001, 42001, 42007:
		return goerrors.CategoryAuth
	case 45009, 45011:
		return goerrors.CategoryRateLimit
	case 40007, 46001, 53600:
		return goerrors.CategoryNotFound
	case 40005, 40006, 40009, 40113, 44001, 44002, 44003, 44004, 45001, 45002, 45003, 45004:
		return goerrors.CategoryBadInput
	case 40013, 40125, 40164, 41002, 41004, 48001:
		return goerrors.CategoryAuthz
	case -1:
		return goerrors.CategoryExternal
	default:
		return goerrors.CategoryOperation
	}
}

func textCodeFor(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryAuth:
		return textCodeCredentialRejected
	case goerrors.CategoryRateLimit:
		return textCodeRateLimited
	case goerrors.CategoryNotFound:
		return textCodeNotFound
	case goerrors.CategoryBadInput:
		return textCodeBadInput
	case goerrors.CategoryAuthz:
		return textCodeForbidden
	case goerrors.CategoryExternal:
		return textCodeUnavailable
	default:
		return textCodeFailed
	}
}

func platformError(endpoint string, code int, message string) error {
	category := classify(code)
	return goerrors.New(fmt.Sprintf("%s: errcode %d: %s", endpoint, code, message), category).
		WithCode(code).
		WithTextCode(textCodeFor(category)).
		WithMetadata(map[string]any{
			"endpoint": endpoint,
			"errcode":  code,
			"errmsg":   message,
		})
}

func statusError(endpoint string, status int) error {
	category := goerrors.CategoryOperation
	switch {
	case status == http.StatusTooManyRequests:
		category = goerrors.CategoryRateLimit
	case status >= http.StatusInternalServerError:
		category = goerrors.CategoryExternal
	}
	return goerrors.New(fmt.Sprintf("%s: unexpected status %d", endpoint, status), category).
		WithCode(status).
		WithTextCode(textCodeFor(category)).
		WithMetadata(map[string]any{"endpoint": endpoint, "status": status})
}

func networkError(endpoint string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, endpoint+": request failed").
		WithTextCode(textCodeUnavailable)
}

func decodeError(endpoint string, err error) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, endpoint+": undecodable response").
		WithTextCode(textCodeFailed)
}

// IsCredentialRejected reports whether the platform refused the credential
// itself. Callers should force a refresh and retry once.
func IsCredentialRejected(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryAuth)
}

// IsTransient reports failures worth retrying after a backoff: rate limits,
// network failures and server errors. Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil || isContextError(err) {
		return false
	}
	return goerrors.IsCategory(err, goerrors.CategoryRateLimit) ||
		goerrors.IsCategory(err, goerrors.CategoryExternal)
}

// IsTerminal reports failures that a retry cannot fix.
func IsTerminal(err error) bool {
	return err != nil && !IsTransient(err) && !IsCredentialRejected(err)
}

// ErrorCode extracts the platform errcode (or HTTP status) from err.
func ErrorCode(err error) (int, bool) {
	var perr *goerrors.Error
	if !errors.As(err, &perr) || perr.Code == 0 {
		return 0, false
	}
	return perr.Code, true
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
