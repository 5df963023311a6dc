package meshnet

import "errors"

// Error taxonomy for the outbound PDU pipeline. All errors are surfaced to
// the caller; none are recovered locally.
var (
	// ErrUnknownKey is returned when app_idx refers to a non-existent app
	// key, or the network has no net keys at all.
	ErrUnknownKey = errors.New("meshnet: unknown key index")

	// ErrPayloadTooLarge is returned when model_message exceeds the
	// unsegmented access-message limit (11 bytes) or is empty.
	ErrPayloadTooLarge = errors.New("meshnet: model message empty or exceeds unsegmented payload limit")

	// ErrInvalidAddress is returned when src is not a unicast address or
	// ttl is out of range.
	ErrInvalidAddress = errors.New("meshnet: invalid source address or ttl")

	// ErrInvalidKeyMaterial is returned when a key is not exactly 16 bytes.
	ErrInvalidKeyMaterial = errors.New("meshnet: key material must be exactly 16 bytes")

	// ErrSequenceExhausted is returned when seq would exceed 24 bits.
	ErrSequenceExhausted = errors.New("meshnet: sequence number space exhausted, iv_index refresh required")

	// ErrNodeNotFound is returned by NodeTable lookups that miss.
	ErrNodeNotFound = errors.New("meshnet: node not found")

	// ErrNodeExists is returned when adding a node whose unicast address
	// is already registered.
	ErrNodeExists = errors.New("meshnet: node already registered at this unicast address")
)
