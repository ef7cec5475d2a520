package villageapi

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListNews(ctx context.Context) ([]NewsArticle, error) {
	var items []NewsArticle
	if err := c.get(ctx, "/berita", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetNewsBySlug(ctx context.Context, slug string) (NewsArticle, error) {
	var a NewsArticle
	err := c.get(ctx, "/berita/"+url.PathEscape(slug), &a)
	return a, err
}

// CreateNews posts the article form; the cover image travels as a file part.
func (c *Client) CreateNews(ctx context.Context, form *Multipart) (NewsArticle, error) {
	var a NewsArticle
	err := c.sendMultipart(ctx, http.MethodPost, "/berita", form, &a)
	return a, err
}

func (c *Client) UpdateNews(ctx context.Context, id ID, form *Multipart) (NewsArticle, error) {
	var a NewsArticle
	err := c.sendMultipart(ctx, http.MethodPut, resourcePath("/berita", id), form, &a)
	return a, err
}

func (c *Client) DeleteNews(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodDelete, resourcePath("/berita", id), nil, nil)
}

func (c *Client) ListNewsCategories(ctx context.Context) ([]NewsCategory, error) {
	var cats []NewsCategory
	if err := c.get(ctx, "/berita-kategori", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *Client) CreateNewsCategory(ctx context.Context, name string) (NewsCategory, error) {
	var cat NewsCategory
	err := c.send(ctx, http.MethodPost, "/berita-kategori", map[string]string{"name": name}, &cat)
	return cat, err
}

func (c *Client) DeleteNewsCategory(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodDelete, resourcePath("/berita-kategori", id), nil, nil)
}
