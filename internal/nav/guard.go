// Package nav decides whether the current location must change based on
// session state. The caller performs the actual navigation.
package nav

import "github.com/publiflow/publiflow-client/internal/model"

// Decision is the required navigation action, if any.
type Decision int

const (
	// DecisionNone means the current location is allowed.
	DecisionNone Decision = iota
	// DecisionToGated redirects a signed-in user into the authenticated area.
	DecisionToGated
	// DecisionToPublic redirects a signed-out user to the public area.
	DecisionToPublic
)

func (d Decision) String() string {
	switch d {
	case DecisionToGated:
		return "to-gated"
	case DecisionToPublic:
		return "to-public"
	default:
		return "none"
	}
}

// Decide maps (session, loading, location) to a navigation action. While the
// session is still restoring it always returns DecisionNone so that no
// redirect flashes before persisted credentials were checked. Decide is pure
// and free of side effects.
func Decide(sess model.Session, loading bool, inGatedArea bool) Decision {
	if loading {
		return DecisionNone
	}
	switch {
	case sess.Signed() && !inGatedArea:
		return DecisionToGated
	case !sess.Signed() && inGatedArea:
		return DecisionToPublic
	default:
		return DecisionNone
	}
}
