package villageapi

import (
	"context"
	"net/http"
)

func (c *Client) ListSubmissions(ctx context.Context) ([]Submission, error) {
	var items []Submission
	if err := c.get(ctx, "/submissions", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateSubmission uploads a citizen's document together with the sender fields.
func (c *Client) CreateSubmission(ctx context.Context, form *Multipart) (Submission, error) {
	var s Submission
	err := c.sendMultipart(ctx, http.MethodPost, "/submissions", form, &s)
	return s, err
}

func (c *Client) UpdateSubmissionStatus(ctx context.Context, id ID, status SubmissionStatus) (Submission, error) {
	var s Submission
	err := c.send(ctx, http.MethodPatch, resourcePath("/submissions", id, "status"), map[string]SubmissionStatus{"status": status}, &s)
	return s, err
}

func (c *Client) DeleteSubmission(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodDelete, resourcePath("/submissions", id), nil, nil)
}
