package villageapi

import (
	"context"
	"net/http"
	"net/url"
)

type GuestReportInput struct {
	Name          string       `json:"name"`
	NationalID    string       `json:"nationalId"`
	OriginAddress string       `json:"originAddress"`
	Purpose       string       `json:"purpose"`
	StayDuration  StayDuration `json:"stayDuration"`
	StayLocation  string       `json:"stayLocation"`
	Phone         string       `json:"phone"`
}

type GuestStatusInput struct {
	Status        GuestStatus `json:"status"`
	StatusMessage string      `json:"statusMessage,omitempty"`
}

func (c *Client) ListGuestReports(ctx context.Context) ([]GuestReport, error) {
	var items []GuestReport
	if err := c.get(ctx, "/tamu-wajib-lapor", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// RegisterGuest files a new report; the API issues its tracking code.
func (c *Client) RegisterGuest(ctx context.Context, in GuestReportInput) (GuestReport, error) {
	var r GuestReport
	err := c.send(ctx, http.MethodPost, "/tamu-wajib-lapor", in, &r)
	return r, err
}

func (c *Client) GuestReportStatus(ctx context.Context, trackingCode string) (*GuestReport, error) {
	var r GuestReport
	if err := c.get(ctx, "/tamu-wajib-lapor/status/"+url.PathEscape(trackingCode), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) UpdateGuestReportStatus(ctx context.Context, id ID, in GuestStatusInput) (GuestReport, error) {
	var r GuestReport
	err := c.send(ctx, http.MethodPatch, resourcePath("/tamu-wajib-lapor", id, "status"), in, &r)
	return r, err
}

func (c *Client) DeleteGuestReport(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodDelete, resourcePath("/tamu-wajib-lapor", id), nil, nil)
}
