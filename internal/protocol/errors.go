package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Session routing.
	ErrSessionNotFound = "E_SESSION_NOT_FOUND"
	ErrSessionLimit    = "E_SESSION_LIMIT"

	// World layer.
	ErrBadRequest        = "E_BAD_REQUEST"
	ErrInvalidCoordinate = "E_INVALID_COORDINATE"
	ErrInternal          = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:   {},
	ErrSessionNotFound:   {},
	ErrSessionLimit:      {},
	ErrBadRequest:        {},
	ErrInvalidCoordinate: {},
	ErrInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
