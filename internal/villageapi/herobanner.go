package villageapi

import (
	"context"
	"net/http"
)

func (c *Client) ListHeroBanners(ctx context.Context) ([]HeroBanner, error) {
	var items []HeroBanner
	if err := c.get(ctx, "/hero-banner", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateHeroBanner(ctx context.Context, form *Multipart) (HeroBanner, error) {
	var b HeroBanner
	err := c.sendMultipart(ctx, http.MethodPost, "/hero-banner", form, &b)
	return b, err
}

func (c *Client) DeleteHeroBanner(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodDelete, resourcePath("/hero-banner", id), nil, nil)
}
