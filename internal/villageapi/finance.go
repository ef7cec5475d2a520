package villageapi

import (
	"context"
	"fmt"
	"net/http"
)

type FinanceItemInput struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	PeriodID    string  `json:"periodId"`
}

func (c *Client) ListFinancePeriods(ctx context.Context) ([]FinancePeriod, error) {
	var periods []FinancePeriod
	if err := c.get(ctx, "/finance/periods", &periods); err != nil {
		return nil, err
	}
	return periods, nil
}

func (c *Client) CreateFinancePeriod(ctx context.Context, year int) (FinancePeriod, error) {
	var p FinancePeriod
	err := c.send(ctx, http.MethodPost, "/finance/periods", map[string]int{"year": year}, &p)
	return p, err
}

func (c *Client) DeleteFinancePeriod(ctx context.Context, id ID) error {
	return c.send(ctx, http.MethodDelete, resourcePath("/finance/periods", id), nil, nil)
}

func financeItemPath(kind FinanceItemKind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown finance item kind %q", kind)
	}
	return "/finance/" + string(kind), nil
}

func (c *Client) CreateFinanceItem(ctx context.Context, kind FinanceItemKind, in FinanceItemInput) (FinanceItem, error) {
	var item FinanceItem
	path, err := financeItemPath(kind)
	if err != nil {
		return item, err
	}
	err = c.send(ctx, http.MethodPost, path, in, &item)
	return item, err
}

func (c *Client) UpdateFinanceItem(ctx context.Context, kind FinanceItemKind, id ID, in FinanceItemInput) (FinanceItem, error) {
	var item FinanceItem
	path, err := financeItemPath(kind)
	if err != nil {
		return item, err
	}
	err = c.send(ctx, http.MethodPut, resourcePath(path, id), in, &item)
	return item, err
}

func (c *Client) DeleteFinanceItem(ctx context.Context, kind FinanceItemKind, id ID) error {
	path, err := financeItemPath(kind)
	if err != nil {
		return err
	}
	return c.send(ctx, http.MethodDelete, resourcePath(path, id), nil, nil)
}
