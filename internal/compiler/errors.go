package compiler

import "fmt"

// Reason is why a tree fell back to unsupported. Exposed so tests and
// the CLI can report why, without ever surfacing a different kind of
// outcome to pkg/exprjit.Compile's boolean result — Compile still only
// ever returns (value, ok).
type Reason int

const (
	ReasonUnrecognizedKind Reason = iota
	ReasonNonAssignmentBinding
	ReasonMissingAccessor
	ReasonConvertToReference
	ReasonNestedUnsupported
	ReasonOrphanCapture
)

func (r Reason) String() string {
	switch r {
	case ReasonUnrecognizedKind:
		return "unrecognized node kind"
	case ReasonNonAssignmentBinding:
		return "member-init binding that is not an assignment"
	case ReasonMissingAccessor:
		return "property without the required getter or setter"
	case ReasonConvertToReference:
		return "convert targeting the universal reference type"
	case ReasonNestedUnsupported:
		return "nested lambda is unsupported"
	case ReasonOrphanCapture:
		return "captured parameter not found in any enclosing closure"
	default:
		return "unsupported"
	}
}

// Unsupported is the sentinel error wrapping a Reason. Callers that only
// care about compiled-or-not can ignore it entirely; pkg/exprjit.Compile
// converts it to the boolean false result.
type Unsupported struct {
	Reason Reason
	Detail string
}

func (u *Unsupported) Error() string {
	if u.Detail == "" {
		return fmt.Sprintf("unsupported: %s", u.Reason)
	}
	return fmt.Sprintf("unsupported: %s: %s", u.Reason, u.Detail)
}

func unsupported(reason Reason, detail string) error {
	return &Unsupported{Reason: reason, Detail: detail}
}
