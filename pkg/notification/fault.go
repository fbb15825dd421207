package notification

// FaultKind groups dispatch errors by what a caller can do about them.
type FaultKind int

const (
	FaultNone FaultKind = iota
	// FaultInvalidIntent: the intent failed validation before any network call.
	FaultInvalidIntent
	// FaultInvalidToken: the provider rejected the target token or the message arguments.
	FaultInvalidToken
	// FaultUnavailable: the provider is overloaded or down.
	FaultUnavailable
	// FaultProvider: any other submission failure (transport, auth, unknown).
	FaultProvider
)

func (k FaultKind) String() string {
	switch k {
	case FaultNone:
		return "none"
	case FaultInvalidIntent:
		return "invalid_intent"
	case FaultInvalidToken:
		return "invalid_token"
	case FaultUnavailable:
		return "unavailable"
	default:
		return "provider_error"
	}
}
