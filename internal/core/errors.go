package core

import (
	"errors"

	"github.com/vovakirdan/relaychat/internal/proto"
)

// Error codes for domain errors, used as the "code" log field.
const (
	ErrCodeChannelIO         = "channel_io"
	ErrCodeMalformedSearch   = "malformed_search"
	ErrCodeRegistration      = "registration"
	ErrCodeLogWrite          = "log_write"
	ErrCodeDuplicateIdentity = "duplicate_identity"
	ErrCodeInternal          = "internal"
)

var (
	// ErrChannelIO wraps read/write failures and peer closes. It ends one session only.
	ErrChannelIO = errors.New("channel i/o")
	// ErrMalformedSearch is logged and the session continues.
	ErrMalformedSearch = proto.ErrMalformedSearch
	// ErrRegistration means a session could not be admitted before the identity exchange.
	ErrRegistration = errors.New("registration failed")
	// ErrLogWrite is logged; the broadcast still reaches live clients.
	ErrLogWrite = errors.New("message log write failed")
	// ErrDuplicateIdentity is returned by Register when duplicate names are rejected.
	ErrDuplicateIdentity = errors.New("identity already registered")
)

// ErrorCode maps err to its domain error code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrChannelIO):
		return ErrCodeChannelIO
	case errors.Is(err, ErrMalformedSearch):
		return ErrCodeMalformedSearch
	case errors.Is(err, ErrRegistration):
		return ErrCodeRegistration
	case errors.Is(err, ErrLogWrite):
		return ErrCodeLogWrite
	case errors.Is(err, ErrDuplicateIdentity):
		return ErrCodeDuplicateIdentity
	default:
		return ErrCodeInternal
	}
}
