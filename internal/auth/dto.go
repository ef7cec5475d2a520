package auth

import "github.com/frahmantamala/tandengan-portal/internal/villageapi"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterDTO struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

func (d RegisterDTO) toRequest() villageapi.RegisterRequest {
	return villageapi.RegisterRequest{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Password:  d.Password,
	}
}

// LoginResult tells the browser who signed in and where to go next.
type LoginResult struct {
	User     villageapi.User `json:"user"`
	Redirect string          `json:"redirect"`
}
