// Package page holds the state machines behind each screen. Transitions are
// plain methods that return the next state; rendering and provider calls live
// elsewhere.
package page

// ID names a screen of the application.
type ID int

const (
	Home ID = iota
	Chat
	Summarize
	Image
)

func (id ID) String() string {
	switch id {
	case Chat:
		return "chat"
	case Summarize:
		return "summarize"
	case Image:
		return "image"
	default:
		return "home"
	}
}

// Phase is where a feature page stands with respect to its one gateway call.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Error
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// ValidationError is an input problem caught before any gateway call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
