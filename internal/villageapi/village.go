package villageapi

import (
	"context"
	"net/http"
)

func (c *Client) GetVillageProfile(ctx context.Context) (VillageProfile, error) {
	var p VillageProfile
	err := c.get(ctx, "/village/profile", &p)
	return p, err
}

func (c *Client) UpdateVillageProfile(ctx context.Context, in VillageProfile) (VillageProfile, error) {
	var p VillageProfile
	err := c.send(ctx, http.MethodPut, "/village/profile", in, &p)
	return p, err
}
