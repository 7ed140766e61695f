package models

// View identifies which top-level screen is active.
type View int

const (
	ViewLogin View = iota
	ViewSignup
	ViewChat
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewSignup:
		return "signup"
	case ViewChat:
		return "chat"
	default:
		return "unknown"
	}
}

// Notice is a blocking notification the user has to dismiss.
type Notice struct {
	Title   string
	Message string
	Detail  string // Optional secondary line, e.g. a server-provided reason
}
