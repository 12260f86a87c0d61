package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// NewsFilters narrows a news listing. Zero fields are omitted.
type NewsFilters struct {
	Type       NewsType
	IsFeatured *bool
	Skip       int
	Limit      int
}

func (f NewsFilters) values() url.Values {
	q := url.Values{}
	if f.Type != "" {
		q.Set("news_type", string(f.Type))
	}
	if f.IsFeatured != nil {
		q.Set("is_featured", strconv.FormatBool(*f.IsFeatured))
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

func (c *Client) GetNews(ctx context.Context, filters NewsFilters) ([]News, error) {
	var news []News
	if err := c.do(ctx, http.MethodGet, "/news/", filters.values(), nil, &news); err != nil {
		return nil, err
	}
	return news, nil
}

func (c *Client) GetNewsItem(ctx context.Context, id int64) (*News, error) {
	var item News
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/news/%d", id), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) CreateNews(ctx context.Context, data NewsCreate) (*News, error) {
	var item News
	if err := c.do(ctx, http.MethodPost, "/news/", nil, data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteNews(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/news/%d", id), nil, nil, nil)
}

func (c *Client) GetPartners(ctx context.Context) ([]PartnerLocation, error) {
	var partners []PartnerLocation
	if err := c.do(ctx, http.MethodGet, "/partners/", nil, nil, &partners); err != nil {
		return nil, err
	}
	return partners, nil
}

func (c *Client) GetPartner(ctx context.Context, id int64) (*PartnerLocation, error) {
	var partner PartnerLocation
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/partners/%d", id), nil, nil, &partner); err != nil {
		return nil, err
	}
	return &partner, nil
}
