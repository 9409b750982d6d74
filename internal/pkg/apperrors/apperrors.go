package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2/log"
)

// The three failure kinds a webhook request can end in. Packages wrap these
// so callers can branch with errors.Is.
var (
	ErrAuthentication = errors.New("authentication error")
	ErrParse          = errors.New("parse error")
	ErrStorage        = errors.New("storage error")
)

// Kind names the failure class of err for logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrAuthentication):
		return "AuthenticationError"
	case errors.Is(err, ErrParse):
		return "ParseError"
	case errors.Is(err, ErrStorage):
		return "StorageError"
	default:
		return "InternalError"
	}
}

// Log writes one line per failure with the endpoint and the failure kind.
// Storage and internal errors go out at error level, the rest as warnings.
func Log(endpoint, ip string, err error) {
	if err == nil {
		return
	}
	switch Kind(err) {
	case "AuthenticationError", "ParseError":
		log.Warnf("[Webhook] %s endpoint=%s ip=%s reason=%v", Kind(err), endpoint, ip, err)
	default:
		log.Errorf("[Webhook] %s endpoint=%s ip=%s reason=%v", Kind(err), endpoint, ip, err)
	}
}
