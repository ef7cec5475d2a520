package villageapi

import (
	"context"
	"net/http"
)

type UserInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Role      Role   `json:"role"`
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) (User, error) {
	var u User
	err := c.send(ctx, http.MethodPost, "/users", in, &u)
	return u, err
}

func (c *Client) UpdateUser(ctx context.Context, id ID, in UserInput) (User, error) {
	var u User
	err := c.send(ctx, http.MethodPut, resourcePath("/users", id), in, &u)
	return u, err
}

func (c *Client) DeleteUser(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodDelete, resourcePath("/users", id), nil, nil)
}
