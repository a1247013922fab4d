package validation

// LoginInput is the /api/login request body
type LoginInput struct {
	Username string `json:"username" validate:"required,notblank,max=255"`
	Password string `json:"password" validate:"required,max=255"` // Don't leak password requirements on login
}

// CreateUserInput is the input of the users add command
type CreateUserInput struct {
	Username string `validate:"required,notblank,max=255"`
	Password string `validate:"required,min=1,max=255"`
}
