package web

import (
	"github.com/birddigital/login-form/internal/loginform"
)

//go:generate templ generate

// Element IDs of the login page
const (
	FormID     = "loginForm"
	UsernameID = "username"
	PasswordID = "password"
	MessageID  = "message"
)

// LoginPageData is what the login page renders
type LoginPageData struct {
	Username string
	Display  loginform.DisplayState
}
