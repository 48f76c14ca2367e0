package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/secosha/marketplace/internal/browse"
	"github.com/secosha/marketplace/internal/items"
	"github.com/secosha/marketplace/internal/listings"
	"github.com/secosha/marketplace/internal/profiles"
	"github.com/secosha/marketplace/internal/sell"
)

// OwnedItems is the account page payload.
type OwnedItems struct {
	Items []browse.Listing `json:"items"`
	Stats items.Stats      `json:"stats"`
}

type uploadResult struct {
	URL string `json:"url"`
}

// Search runs a public listing search.
func (c *Client) Search(ctx context.Context, q listings.Query) (browse.Page, error) {
	var page browse.Page
	req := request{method: http.MethodGet, path: "/api/v1/listings", query: q.Values()}
	if err := c.call(ctx, req, &page); err != nil {
		return browse.Page{}, err
	}
	return page, nil
}

func (c *Client) Listing(ctx context.Context, id string) (browse.Listing, error) {
	var listing browse.Listing
	req := request{method: http.MethodGet, path: "/api/v1/listings/" + url.PathEscape(id)}
	if err := c.call(ctx, req, &listing); err != nil {
		return browse.Listing{}, err
	}
	return listing, nil
}

// Upload stores one image and returns its public URL.
func (c *Client) Upload(ctx context.Context, name, contentType string, body []byte) (string, error) {
	req := request{
		method:      http.MethodPost,
		path:        "/api/v1/media/images",
		query:       url.Values{"name": []string{name}},
		body:        body,
		contentType: contentType,
		auth:        true,
	}
	var out uploadResult
	if err := c.call(ctx, req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Create publishes a validated listing owned by the signed-in user.
func (c *Client) Create(ctx context.Context, sub sell.Submission) (browse.Listing, error) {
	req, err := jsonRequest(http.MethodPost, "/api/v1/items", sub, true)
	if err != nil {
		return browse.Listing{}, err
	}
	var listing browse.Listing
	if err := c.call(ctx, req, &listing); err != nil {
		return browse.Listing{}, err
	}
	return listing, nil
}

func (c *Client) MyItems(ctx context.Context) (*OwnedItems, error) {
	var out OwnedItems
	req := request{method: http.MethodGet, path: "/api/v1/me/items", auth: true}
	if err := c.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	req := request{method: http.MethodDelete, path: "/api/v1/items/" + url.PathEscape(id), auth: true}
	return c.call(ctx, req, nil)
}

// EnsureProfile creates the caller's profile when absent. The API keys it by
// the bearer token, so userID only scopes logging.
func (c *Client) EnsureProfile(ctx context.Context, userID, email, fullName string) error {
	ctx = c.logg.WithUserID(ctx, userID)
	req, err := jsonRequest(http.MethodPost, "/api/v1/profile/ensure", profiles.EnsureProfileRequest{Email: email, FullName: fullName}, true)
	if err != nil {
		return err
	}
	return c.call(ctx, req, nil)
}

func (c *Client) Profile(ctx context.Context) (*profiles.ProfileDTO, error) {
	var out profiles.ProfileDTO
	req := request{method: http.MethodGet, path: "/api/v1/profile", auth: true}
	if err := c.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile overwrites every editable profile field.
func (c *Client) UpdateProfile(ctx context.Context, update profiles.UpdateProfileRequest) (*profiles.ProfileDTO, error) {
	req, err := jsonRequest(http.MethodPut, "/api/v1/profile", update, true)
	if err != nil {
		return nil, err
	}
	var out profiles.ProfileDTO
	if err := c.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
