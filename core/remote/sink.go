package remote

import (
	"context"
	"errors"

	"bulk-manager/core/reconcile"
)

type fieldWrite struct {
	Data struct {
		Type  string `json:"type,omitempty"`
		Value any    `json:"value"`
	} `json:"data"`
}

// ApplyFieldValue writes one field and drops its cached value.
func (c *Client) ApplyFieldValue(ctx context.Context, entityID, fieldID, fieldType string, value reconcile.Value) error {
	var body fieldWrite
	body.Data.Type = fieldType
	body.Data.Value = value.Raw()

	err := c.do(ctx, "PUT", c.endpoint("entities", entityID, "fields", fieldID), body, nil)
	if c.cache != nil {
		c.cache.Remove(cacheKey(entityID, fieldID))
	}
	return err
}

type createRequest struct {
	Data struct {
		Fields map[string]any `json:"fields"`
		Parent *parentRef     `json:"parent,omitempty"`
	} `json:"data"`
}

type parentRef struct {
	ID string `json:"id"`
}

type createResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// CreateRecord creates a record and returns the id assigned by the API.
func (c *Client) CreateRecord(ctx context.Context, entityType string, fields map[string]any, parentID string) (string, error) {
	var body createRequest
	body.Data.Fields = fields
	if parentID != "" {
		body.Data.Parent = &parentRef{ID: parentID}
	}

	var resp createResponse
	if err := c.do(ctx, "POST", c.endpoint(entityType), body, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", errors.New("create response carried no id")
	}
	return resp.Data.ID, nil
}

// DeleteRecord removes a record.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", c.endpoint("entities", id), nil, nil)
}

var (
	_ reconcile.Source = (*Client)(nil)
	_ reconcile.Sink   = (*Client)(nil)
)
