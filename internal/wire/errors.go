package wire

import "errors"

var (
	ErrTruncated        = errors.New("not enough bytes for a complete message")
	ErrChecksumMismatch = errors.New("payload checksum mismatch")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrNetworkMismatch  = errors.New("network magic mismatch")
	ErrPayloadTooLarge  = errors.New("payload exceeds maximum length")
	ErrMalformedCommand = errors.New("malformed command field")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrNonCanonical     = errors.New("non-canonical variable length integer")
	ErrTooManyElements  = errors.New("element count exceeds limit")
)
