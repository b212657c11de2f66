package remote

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"bulk-manager/core/reconcile"
)

type recordJSON struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Fields    map[string]any `json:"fields"`
	CreatedAt string         `json:"createdAt"`
	Parent    *struct {
		ID string `json:"id"`
	} `json:"parent"`
}

func (r recordJSON) record() reconcile.Record {
	rec := reconcile.Record{
		ID:        r.ID,
		Type:      r.Type,
		Fields:    make(map[string]reconcile.Value, len(r.Fields)),
		CreatedAt: r.CreatedAt,
	}
	for k, v := range r.Fields {
		rec.Fields[k] = reconcile.ValueOf(v)
	}
	if r.Parent != nil {
		rec.ParentID = r.Parent.ID
	}
	return rec
}

type listResponse struct {
	Data  []recordJSON `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
	PageCursor string `json:"pageCursor"`
}

// ListPage fetches one page of entityType. A link cursor is followed as-is; a token
// cursor is sent as the pageCursor query parameter.
func (c *Client) ListPage(ctx context.Context, entityType string, cursor reconcile.Cursor) (reconcile.Page, error) {
	target := c.endpoint(entityType)
	switch {
	case cursor.IsLink():
		if err := c.checkLink(string(cursor)); err != nil {
			return reconcile.Page{}, err
		}
		target = string(cursor)
	case cursor != "":
		target += "?" + url.Values{"pageCursor": {string(cursor)}}.Encode()
	}

	var resp listResponse
	if err := c.do(ctx, "GET", target, nil, &resp); err != nil {
		return reconcile.Page{}, err
	}

	page := reconcile.Page{Items: make([]reconcile.Record, 0, len(resp.Data))}
	for _, r := range resp.Data {
		page.Items = append(page.Items, r.record())
	}
	switch {
	case resp.Links.Next != "":
		page.Next = reconcile.Cursor(resp.Links.Next)
	case resp.PageCursor != "":
		page.Next = reconcile.Cursor(resp.PageCursor)
	}
	return page, nil
}

// checkLink accepts a next-page link only on the base URL's scheme and host.
func (c *Client) checkLink(link string) error {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForeignLink, err)
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return fmt.Errorf("%w: %s", ErrForeignLink, u.Host)
	}
	return nil
}

type fieldResponse struct {
	Data struct {
		Value any `json:"value"`
	} `json:"data"`
}

// GetFieldValue reads one field. A 404 means the field has no value.
func (c *Client) GetFieldValue(ctx context.Context, entityID, fieldID string) (reconcile.FieldValue, error) {
	key := cacheKey(entityID, fieldID)
	if c.cache != nil {
		if fv, ok := c.cache.Get(key); ok {
			return fv, nil
		}
	}

	v, err, _ := c.reads.Do(key, func() (any, error) {
		var resp fieldResponse
		err := c.do(ctx, "GET", c.endpoint("entities", entityID, "fields", fieldID), nil, &resp)
		if IsNotFound(err) {
			return reconcile.FieldValue{Value: reconcile.Null}, nil
		}
		if err != nil {
			return nil, err
		}
		return reconcile.Present(reconcile.ValueOf(resp.Data.Value)), nil
	})
	if err != nil {
		return reconcile.FieldValue{}, err
	}

	fv := v.(reconcile.FieldValue)
	if c.cache != nil {
		c.cache.Add(key, fv)
	}
	return fv, nil
}

// GetBatchFieldValues reads fieldID for every entity with bounded parallelism.
func (c *Client) GetBatchFieldValues(ctx context.Context, entityIDs []string, fieldID string) (map[string]reconcile.FieldValue, error) {
	return reconcile.BatchFieldValues(ctx, func(ctx context.Context, id string) (reconcile.FieldValue, error) {
		return c.GetFieldValue(ctx, id, fieldID)
	}, entityIDs, c.concurrency)
}

func cacheKey(entityID, fieldID string) string {
	return entityID + "|" + fieldID
}
