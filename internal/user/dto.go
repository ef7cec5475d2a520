package user

import "github.com/frahmantamala/tandengan-portal/internal/villageapi"

type CreateUserDTO struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required,oneof=ADMIN USER"`
}

// UpdateUserDTO leaves the password unchanged when it is empty.
type UpdateUserDTO struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"omitempty,min=8"`
	Role      string `json:"role" validate:"required,oneof=ADMIN USER"`
}

func (d CreateUserDTO) toInput() villageapi.UserInput {
	return villageapi.UserInput{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Password:  d.Password,
		Role:      villageapi.Role(d.Role),
	}
}

func (d UpdateUserDTO) toInput() villageapi.UserInput {
	return villageapi.UserInput{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Password:  d.Password,
		Role:      villageapi.Role(d.Role),
	}
}
