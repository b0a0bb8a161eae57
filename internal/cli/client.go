package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	Slot    string
	HTTP    *http.Client
}

func NewClient(baseURL, slot string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Slot:    slot,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) slotPath(suffix string) string {
	return "/v1/games/" + url.PathEscape(c.Slot) + suffix
}

func (c *Client) NewGame(ctx context.Context, companyName, ceoName string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", map[string]any{
		"slot":         c.Slot,
		"company_name": companyName,
		"ceo_name":     ceoName,
	}, &out)
	return out, err
}

func (c *Client) State(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, c.slotPath("/"), nil, &out)
	return out, err
}

func (c *Client) Pause(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/pause"), map[string]any{}, &out)
	return out, err
}

func (c *Client) Resume(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/resume"), map[string]any{}, &out)
	return out, err
}

func (c *Client) LandPrices(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, c.slotPath("/land/prices"), nil, &out)
	return out, err
}

func (c *Client) LandROI(ctx context.Context, cityID string, ha float64, years int) (map[string]any, error) {
	var out map[string]any
	path := fmt.Sprintf("%s?ha=%g&years=%d", c.slotPath("/land/roi/"+url.PathEscape(cityID)), ha, years)
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) BuyLand(ctx context.Context, cityID string, ha float64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/land/buy"), map[string]any{
		"city_id": cityID,
		"ha":      ha,
	}, &out)
	return out, err
}

func (c *Client) SellLand(ctx context.Context, cityID string, m2, pricePerM2 int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/land/sell"), map[string]any{
		"city_id":      cityID,
		"m2":           m2,
		"price_per_m2": pricePerM2,
	}, &out)
	return out, err
}

func (c *Client) CancelLandSale(ctx context.Context, orderID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodDelete, c.slotPath("/land/sell/"+url.PathEscape(orderID)), nil, &out)
	return out, err
}

func (c *Client) PlanBuild(ctx context.Context, propertyType, variant string, units, towers, floors int) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/build/plan"), map[string]any{
		"property_type": propertyType,
		"variant":       variant,
		"units":         units,
		"towers":        towers,
		"floors":        floors,
	}, &out)
	return out, err
}

func (c *Client) StartBuild(ctx context.Context, propertyType, variant string, units, towers, floors int, locationID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/build"), map[string]any{
		"property_type": propertyType,
		"variant":       variant,
		"units":         units,
		"towers":        towers,
		"floors":        floors,
		"location_id":   locationID,
	}, &out)
	return out, err
}

func (c *Client) CancelBuild(ctx context.Context, projectID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodDelete, c.slotPath("/build/"+url.PathEscape(projectID)), nil, &out)
	return out, err
}

func (c *Client) SimulateRent(ctx context.Context, assetID string, price int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/assets/"+url.PathEscape(assetID)+"/rent/simulate"), map[string]any{
		"price": price,
	}, &out)
	return out, err
}

func (c *Client) SetRent(ctx context.Context, assetID string, price int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/assets/"+url.PathEscape(assetID)+"/rent"), map[string]any{
		"price": price,
	}, &out)
	return out, err
}

func (c *Client) StopRent(ctx context.Context, assetID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodDelete, c.slotPath("/assets/"+url.PathEscape(assetID)+"/rent"), nil, &out)
	return out, err
}

func (c *Client) AssetROI(ctx context.Context, assetID string, months int) (map[string]any, error) {
	var out map[string]any
	path := fmt.Sprintf("%s?months=%d", c.slotPath("/assets/"+url.PathEscape(assetID)+"/roi"), months)
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) SimulateSale(ctx context.Context, assetID string, pricePerUnit int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/assets/"+url.PathEscape(assetID)+"/sell/simulate"), map[string]any{
		"price_per_unit": pricePerUnit,
	}, &out)
	return out, err
}

func (c *Client) SellProperty(ctx context.Context, assetID string, pricePerUnit int64) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/assets/"+url.PathEscape(assetID)+"/sell"), map[string]any{
		"price_per_unit": pricePerUnit,
	}, &out)
	return out, err
}

func (c *Client) CancelPropertySale(ctx context.Context, assetID string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodDelete, c.slotPath("/assets/"+url.PathEscape(assetID)+"/sell"), nil, &out)
	return out, err
}

func (c *Client) TakeLoan(ctx context.Context, principal int64, tenorYears int, autoPay bool) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/loans"), map[string]any{
		"principal":   principal,
		"tenor_years": tenorYears,
		"auto_pay":    autoPay,
	}, &out)
	return out, err
}

func (c *Client) PayLoan(ctx context.Context, loanID string, months int) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/loans/"+url.PathEscape(loanID)+"/pay"), map[string]any{
		"months": months,
	}, &out)
	return out, err
}

func (c *Client) SetLoanAutoPay(ctx context.Context, loanID string, enabled bool) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, c.slotPath("/loans/"+url.PathEscape(loanID)+"/autopay"), map[string]any{
		"enabled": enabled,
	}, &out)
	return out, err
}

func (c *Client) CreditLimit(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, c.slotPath("/loans/credit-limit"), nil, &out)
	return out, err
}

func (c *Client) Report(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, c.slotPath("/report"), nil, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
