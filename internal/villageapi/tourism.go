package villageapi

import (
	"context"
	"net/http"
)

func (c *Client) ListDestinations(ctx context.Context) ([]Destination, error) {
	var items []Destination
	if err := c.get(ctx, "/tourism", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateDestination(ctx context.Context, form *Multipart) (Destination, error) {
	var d Destination
	err := c.sendMultipart(ctx, http.MethodPost, "/tourism", form, &d)
	return d, err
}

func (c *Client) UpdateDestination(ctx context.Context, id ID, form *Multipart) (Destination, error) {
	var d Destination
	err := c.sendMultipart(ctx, http.MethodPut, resourcePath("/tourism", id), form, &d)
	return d, err
}

func (c *Client) DeleteDestination(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodDelete, resourcePath("/tourism", id), nil, nil)
}
