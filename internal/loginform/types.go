package loginform

import (
	"net/http"
)

// Display texts and classes shown in the message element
const (
	MessageSuccess     = "Login Successful!"
	MessageFailed      = "Login Failed!"
	MessageServerError = "Server Error!"

	ClassSuccess = "success"
	ClassError   = "error"
)

// DefaultEndpoint is the login endpoint used when none is configured
const DefaultEndpoint = "http://localhost:8080/api/login"

// Field is a form input whose current value is read at submit time
type Field interface {
	Value() string
}

// Display is the single element used to show submission feedback
type Display interface {
	SetVisible(visible bool)
	SetClass(class string)
	SetText(text string)
}

// Event is the submit event delivered to the handler
type Event interface {
	PreventDefault()
}

// HTTPDoer is the HTTP capability the client sends requests through.
// *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Credentials are the username/password pair read from the form
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Outcome is the terminal state of one submission
type Outcome int

const (
	OutcomeFailure Outcome = iota
	OutcomeSuccess
)

func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

// Class returns the display class for the outcome
func (o Outcome) Class() string {
	if o == OutcomeSuccess {
		return ClassSuccess
	}
	return ClassError
}

// Result is what a settled submission produced
type Result struct {
	Outcome Outcome
	Message string

	// Status is the HTTP status code, 0 when no response was obtained
	Status int

	// Generation identifies the submission within its handler
	Generation uint64

	// Stale is set when a newer submission started before this one settled.
	// Stale results are not rendered.
	Stale bool

	// Err holds the transport or decode cause for server errors. It is never shown.
	Err error
}

// FieldValue is a Field with a fixed value
type FieldValue string

// Value implements Field
func (v FieldValue) Value() string { return string(v) }

// FieldFunc adapts a function to the Field interface
type FieldFunc func() string

// Value implements Field
func (f FieldFunc) Value() string { return f() }

// EventFunc adapts a function to the Event interface
type EventFunc func()

// PreventDefault implements Event
func (f EventFunc) PreventDefault() {
	if f != nil {
		f()
	}
}

// NoopEvent is an Event for callers that have no default action to suppress
var NoopEvent Event = EventFunc(nil)
