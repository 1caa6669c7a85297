package chat

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrNotAuthenticated is returned when an operation requiring an
	// identity is invoked with none active.
	ErrNotAuthenticated = errors.New("chat: no authenticated user")

	// ErrEmptyMessage is returned by Send for text that is empty after trimming.
	ErrEmptyMessage = errors.New("chat: message text is empty")

	// ErrConversationNotFound is returned by Select for an unknown conversation id.
	ErrConversationNotFound = errors.New("chat: conversation not found")

	// ErrInvalidReceiver is returned when a user messages themselves.
	ErrInvalidReceiver = errors.New("chat: sender and receiver must differ")
)

// wrapStore tags a failed store call so callers can tell transport/storage
// failures apart from the validation errors above.
func wrapStore(err error, op string) error {
	return pkgerrors.Wrap(err, "chat store: "+op)
}
