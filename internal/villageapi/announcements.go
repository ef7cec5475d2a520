package villageapi

import (
	"context"
	"net/http"
)

type AnnouncementInput struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Date       string `json:"date"`
	CategoryID string `json:"categoryId"`
}

func (c *Client) ListAnnouncements(ctx context.Context) ([]Announcement, error) {
	var items []Announcement
	if err := c.get(ctx, "/pengumuman", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateAnnouncement(ctx context.Context, in AnnouncementInput) (Announcement, error) {
	var a Announcement
	err := c.send(ctx, http.MethodPost, "/pengumuman", in, &a)
	return a, err
}

func (c *Client) UpdateAnnouncement(ctx context.Context, id ID, in AnnouncementInput) (Announcement, error) {
	var a Announcement
	err := c.send(ctx, http.MethodPut, resourcePath("/pengumuman", id), in, &a)
	return a, err
}

func (c *Client) DeleteAnnouncement(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodDelete, resourcePath("/pengumuman", id), nil, nil)
}

func (c *Client) ListAnnouncementCategories(ctx context.Context) ([]AnnouncementCategory, error) {
	var cats []AnnouncementCategory
	if err := c.get(ctx, "/kategori", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *Client) CreateAnnouncementCategory(ctx context.Context, name string) (AnnouncementCategory, error) {
	var cat AnnouncementCategory
	err := c.send(ctx, http.MethodPost, "/kategori", map[string]string{"name": name}, &cat)
	return cat, err
}

func (c *Client) DeleteAnnouncementCategory(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodDelete, resourcePath("/kategori", id), nil, nil)
}
