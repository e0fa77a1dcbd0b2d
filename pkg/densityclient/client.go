// Package densityclient talks to the densityd REST API.
package densityclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"github.com/materials-commons/partdensity/pkg/density"
	"github.com/materials-commons/partdensity/pkg/lot"
	"github.com/materials-commons/partdensity/pkg/registry"
)

type Client struct {
	r *resty.Client
}

func New(baseURL string) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{r: r}
}

func do[T any](ctx context.Context, c *Client, method, path string, body interface{}) (*T, error) {
	var result T

	req := c.r.R().SetContext(ctx).SetResult(&result)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, toErrorFromResponse(resp)
	}

	return &result, nil
}

func (c *Client) Health(ctx context.Context) error {
	_, err := do[map[string]string](ctx, c, http.MethodGet, "/healthz", nil)
	return err
}

func (c *Client) GetElement(symbol string) (*dmodel.Element, error) {
	return do[dmodel.Element](context.Background(), c, http.MethodGet, "/api/elements/"+url.PathEscape(symbol), nil)
}

func (c *Client) CreateElement(in registry.ElementInput) (*dmodel.Element, error) {
	return do[dmodel.Element](context.Background(), c, http.MethodPost, "/api/elements", in)
}

func (c *Client) UpdateElement(symbol string, in registry.ElementInput) (*dmodel.Element, error) {
	return do[dmodel.Element](context.Background(), c, http.MethodPut, "/api/elements/"+url.PathEscape(symbol), in)
}

func (c *Client) GetAlloyBySlug(slug string) (*dmodel.StandardAlloy, error) {
	return do[dmodel.StandardAlloy](context.Background(), c, http.MethodGet, "/api/alloys/by-slug/"+url.PathEscape(slug), nil)
}

func (c *Client) CreateAlloy(in registry.AlloyInput) (*dmodel.StandardAlloy, error) {
	return do[dmodel.StandardAlloy](context.Background(), c, http.MethodPost, "/api/alloys", in)
}

func (c *Client) UpdateAlloy(alloyID int, in registry.AlloyInput) (*dmodel.StandardAlloy, error) {
	return do[dmodel.StandardAlloy](context.Background(), c, http.MethodPut, fmt.Sprintf("/api/alloys/%d", alloyID), in)
}

func (c *Client) GetPart(ctx context.Context, partCode string) (*registry.PartView, error) {
	return do[registry.PartView](ctx, c, http.MethodGet, "/api/parts/"+url.PathEscape(partCode), nil)
}

// TheoreticalDensity is the server's density.Result for a stored part.
func (c *Client) TheoreticalDensity(ctx context.Context, partCode string) (*density.Result, error) {
	return do[density.Result](ctx, c, http.MethodGet, "/api/parts/"+url.PathEscape(partCode)+"/theoretical-density", nil)
}

type WeighingRequest struct {
	density.Measurement
	FluidDensity     float64 `json:"fluid_density"`
	AttachmentExists bool    `json:"attachment_exists"`
}

func (c *Client) MeasuredDensity(ctx context.Context, req WeighingRequest) (float64, error) {
	resp, err := do[map[string]float64](ctx, c, http.MethodPost, "/api/calc/measured-density", req)
	if err != nil {
		return 0, err
	}
	return (*resp)["density"], nil
}

func (c *Client) CompactnessRatio(ctx context.Context, partDensity, theoreticalDensity float64) (float64, error) {
	body := map[string]float64{"part_density": partDensity, "theoretical_density": theoreticalDensity}
	resp, err := do[map[string]float64](ctx, c, http.MethodPost, "/api/calc/compactness", body)
	if err != nil {
		return 0, err
	}
	return (*resp)["ratio"], nil
}

func (c *Client) Porosity(ctx context.Context, masterDensity, partDensity float64) (float64, error) {
	body := map[string]float64{"master_density": masterDensity, "part_density": partDensity}
	resp, err := do[map[string]float64](ctx, c, http.MethodPost, "/api/calc/porosity", body)
	if err != nil {
		return 0, err
	}
	return (*resp)["porosity"], nil
}

// LotRequest is lot.LotRequest with its date in YYYY-MM-DD form.
type LotRequest struct {
	lot.LotRequest
	Date string `json:"date,omitempty"`
}

func (c *Client) ComputeLot(ctx context.Context, req LotRequest) (*lot.LotResult, error) {
	return do[lot.LotResult](ctx, c, http.MethodPost, "/api/lots", req)
}

func (c *Client) NextSerialBlock(ctx context.Context, partCode, date string, count int) ([]string, error) {
	body := map[string]interface{}{"part_code": partCode, "date": date, "count": count}
	resp, err := do[struct {
		Serials []string `json:"serials"`
	}](ctx, c, http.MethodPost, "/api/serials", body)
	if err != nil {
		return nil, err
	}
	return resp.Serials, nil
}
