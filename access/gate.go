// Package access decides whether the current session may reach a protected
// surface. It is a pure predicate over session state; rendering and
// navigation stay with the caller.
package access

import (
	"yowa/models"
	"yowa/session"
)

// SignInPath is where unauthenticated visitors are sent.
const SignInPath = "/login"

// Requirement is the condition a protected surface demands.
type Requirement struct {
	roles []models.Role // empty means any authenticated visitor
}

// Authenticated requires a signed-in session of any role.
func Authenticated() Requirement {
	return Requirement{}
}

// RoleIn requires a signed-in session whose role is one of roles.
func RoleIn(roles ...models.Role) Requirement {
	return Requirement{roles: roles}
}

// Verdict is the outcome of an authorization check.
type Verdict int

const (
	// Pending: the session is still restoring. Render a neutral state and
	// re-evaluate; never flash protected content or redirect early.
	Pending Verdict = iota
	Allow
	// Redirect: not signed in. Send the visitor to Decision.Redirect.
	Redirect
	// Forbidden: signed in but lacking the role. Rendered in place, no redirect.
	Forbidden
)

// Decision carries the verdict and, for Redirect, the target.
type Decision struct {
	Verdict  Verdict
	Redirect string
}

// Authorize evaluates requirement against the session state.
func Authorize(st session.State, req Requirement) Decision {
	if st.Loading {
		return Decision{Verdict: Pending}
	}
	if !st.IsAuthenticated || st.Identity == nil {
		return Decision{Verdict: Redirect, Redirect: SignInPath}
	}
	if len(req.roles) == 0 {
		return Decision{Verdict: Allow}
	}
	for _, r := range req.roles {
		if st.Identity.Role == r {
			return Decision{Verdict: Allow}
		}
	}
	return Decision{Verdict: Forbidden}
}
