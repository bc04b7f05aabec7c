package queue

import (
	"context"
	"encoding/json"
)

// Handler answers one request payload with a reply payload.
type Handler func(ctx context.Context, data []byte) ([]byte, error)

// Queue exposes a minimal request/reply contract over a message bus.
type Queue interface {
	// Serve answers requests on subject until ctx is done.
	Serve(ctx context.Context, subject string, handler Handler) error
	Close() error
}

// ErrorReply is the body sent back when a request cannot be answered.
type ErrorReply struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// EncodeError marshals an ErrorReply.
func EncodeError(kind string, err error) []byte {
	body, _ := json.Marshal(ErrorReply{Error: err.Error(), Kind: kind})
	return body
}
