package villageapi

import (
	"context"
	"net/http"
)

func (c *Client) ListLetterFormats(ctx context.Context) ([]LetterFormat, error) {
	var items []LetterFormat
	if err := c.get(ctx, "/surat/format", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateLetterFormat(ctx context.Context, form *Multipart) (LetterFormat, error) {
	var f LetterFormat
	err := c.sendMultipart(ctx, http.MethodPost, "/surat/format", form, &f)
	return f, err
}

func (c *Client) UpdateLetterFormat(ctx context.Context, id ID, form *Multipart) (LetterFormat, error) {
	var f LetterFormat
	err := c.sendMultipart(ctx, http.MethodPut, resourcePath("/surat/format", id), form, &f)
	return f, err
}

func (c *Client) DeleteLetterFormat(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodDelete, resourcePath("/surat/format", id), nil, nil)
}

// RecordLetterFormatDownload bumps the server-side download counter.
func (c *Client) RecordLetterFormatDownload(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodPost, resourcePath("/surat/format", id, "download"), nil, nil)
}
