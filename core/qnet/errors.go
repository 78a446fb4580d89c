package qnet

import "errors"

// Structural errors are returned synchronously at the offending call and
// never leave a net partially mutated. Runtime assertions (overflow,
// underflow) indicate a programming or scheduler bug — they should never
// be reachable from a normal firing path, since the enabling check already
// guards against them.
var (
	// ErrDuplicateURI is returned when create_*/embed would introduce a
	// URI that is already registered in the net.
	ErrDuplicateURI = errors.New("qnet: duplicate uri")

	// ErrArcExists is returned when Connect would duplicate an existing arc.
	ErrArcExists = errors.New("qnet: arc already exists")

	// ErrKindMismatch is returned when an arc endpoint pair is not
	// (place, transition) or (transition, place).
	ErrKindMismatch = errors.New("qnet: arc endpoints must alternate place and transition")

	// ErrUnknownURI is returned when an operation references a URI that
	// is not registered in the net.
	ErrUnknownURI = errors.New("qnet: unknown uri")

	// ErrCapacityOverflow is returned by a place when a production would
	// exceed its capacity. The enabling check forbids this from ever
	// firing through normal scheduling; surfacing it indicates a bug.
	ErrCapacityOverflow = errors.New("qnet: capacity overflow")

	// ErrUnderflow is returned by a place when a consumption would drive
	// its token count negative. Must never happen from the firing path.
	ErrUnderflow = errors.New("qnet: token underflow")

	// ErrDuplicateSubnet is returned by Embed when a sub-net with the
	// same label has already been embedded.
	ErrDuplicateSubnet = errors.New("qnet: subnet already embedded")
)
