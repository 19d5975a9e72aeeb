package library

// AuthorizationState is the caller's access level to the library.
type AuthorizationState string

const (
	StateAuthorized AuthorizationState = "authorized"
	StateLimited    AuthorizationState = "limited"
	StateDenied     AuthorizationState = "denied"
)

// Allowed reports whether s grants read access.
func (s AuthorizationState) Allowed() bool {
	return s == StateAuthorized || s == StateLimited
}

// Authorizer decides whether library data may be read. The prompt flow, if
// any, lives behind Request.
type Authorizer interface {
	Check() AuthorizationState
	Request() AuthorizationState
}

// StaticAuthorizer answers with a fixed decision taken at startup.
type StaticAuthorizer struct {
	Granted bool
}

// Check implements Authorizer.
func (a StaticAuthorizer) Check() AuthorizationState {
	if a.Granted {
		return StateAuthorized
	}
	return StateDenied
}

// Request implements Authorizer. There is nobody to prompt, so it returns
// the same answer as Check.
func (a StaticAuthorizer) Request() AuthorizationState {
	return a.Check()
}
