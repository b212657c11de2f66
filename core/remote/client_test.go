package remote_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bulk-manager/core/reconcile"
	"bulk-manager/core/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*remote.Config)) *remote.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := remote.Config{
		BaseURL:          srv.URL,
		Token:            "secret-token",
		TimeoutSeconds:   5,
		CacheSize:        100,
		CacheTTLSeconds:  60,
		FetchConcurrency: 4,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	client, err := remote.New(cfg, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := remote.New(remote.Config{}, nil)
	assert.ErrorIs(t, err, remote.ErrNotConfigured)
}

func TestListPage_FollowsBothCursorStyles(t *testing.T) {
	var base string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/notes", r.URL.Path)

		switch {
		case r.URL.Query().Get("pageCursor") == "" && r.URL.Query().Get("page") == "":
			_, _ = io.WriteString(w, `{"data":[{"id":"n1","fields":{"title":"A"},"createdAt":"2020-01-01"}],"pageCursor":"tok2"}`)
		case r.URL.Query().Get("pageCursor") == "tok2":
			_, _ = io.WriteString(w, `{"data":[{"id":"n2","parent":{"id":"c1"}}],"links":{"next":"`+base+`/notes?page=3"}}`)
		default:
			_, _ = io.WriteString(w, `{"data":[{"id":"n3"}]}`)
		}
	})
	base = client.BaseURL()

	listing, err := reconcile.FetchAll(context.Background(), client, "notes")
	require.NoError(t, err)
	require.Len(t, listing.Records, 3)
	assert.Equal(t, "A", listing.Records[0].Text("title"))
	assert.Equal(t, "2020-01-01", listing.Records[0].CreatedAt)
	assert.Equal(t, "c1", listing.Records[1].ParentID)
	assert.Equal(t, 3, listing.Pages)
}

func TestListPage_RefusesForeignLink(t *testing.T) {
	var foreignHits int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&foreignHits, 1)
		_, _ = io.WriteString(w, `{"data":[{"id":"stolen"}]}`)
	}))
	t.Cleanup(foreign.Close)

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":"n1"}],"links":{"next":"`+foreign.URL+`/notes?page=2"}}`)
	})

	listing, err := reconcile.FetchAll(context.Background(), client, "notes")
	require.NoError(t, err)
	require.Len(t, listing.Records, 1)
	assert.True(t, listing.Partial)
	assert.ErrorIs(t, listing.Err, remote.ErrForeignLink)
	assert.Zero(t, atomic.LoadInt32(&foreignHits))

	_, err = client.ListPage(context.Background(), "notes", reconcile.Cursor(foreign.URL+"/notes"))
	assert.ErrorIs(t, err, remote.ErrForeignLink)
}

func TestListPage_FirstPageErrorIsSourceUnavailable(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"errors":[{"title":"Unauthorized","detail":"invalid token"}]}`)
	})

	_, err := reconcile.FetchAll(context.Background(), client, "features")
	assert.ErrorIs(t, err, reconcile.ErrSourceUnavailable)

	var apiErr *remote.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid token", apiErr.Message)
}

func TestGetFieldValue_CachesAndInvalidates(t *testing.T) {
	var reads int32
	value := `"old"`
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			atomic.AddInt32(&reads, 1)
			_, _ = io.WriteString(w, `{"data":{"value":`+value+`}}`)
		case http.MethodPut:
			var body map[string]map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "text", body["data"]["type"])
			value = `"new"`
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	fv, err := client.GetFieldValue(ctx, "e1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "old", fv.Value.Display())

	_, err = client.GetFieldValue(ctx, "e1", "f1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&reads))

	require.NoError(t, client.ApplyFieldValue(ctx, "e1", "f1", "text", reconcile.Scalar("new")))

	fv, err = client.GetFieldValue(ctx, "e1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "new", fv.Value.Display())
	assert.Equal(t, int32(2), atomic.LoadInt32(&reads))
}

func TestGetBatchFieldValues(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/entities/e1/fields/f1":
			_, _ = io.WriteString(w, `{"data":{"value":{"id":"u1","name":"Jane"}}}`)
		case "/entities/e2/fields/f1":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"message":"boom"}`)
		}
	})

	values, err := client.GetBatchFieldValues(context.Background(), []string{"e1", "e2", "e3"}, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", values["e1"].Value.Display())
	assert.False(t, values["e2"].HasValue)
	assert.NoError(t, values["e2"].Err)
	assert.EqualError(t, values["e3"].Err, "HTTP 500: boom")
}

func TestCreateAndDelete(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/companies", r.URL.Path)
			var body struct {
				Data struct {
					Fields map[string]any `json:"fields"`
					Parent *struct {
						ID string `json:"id"`
					} `json:"parent"`
				} `json:"data"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Acme", body.Data.Fields["name"])
			assert.Nil(t, body.Data.Parent)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"data":{"id":"c-9"}}`)
		case http.MethodDelete:
			assert.Equal(t, "/entities/n1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	id, err := client.CreateRecord(ctx, "companies", map[string]any{"name": "Acme"}, "")
	require.NoError(t, err)
	assert.Equal(t, "c-9", id)
	assert.NoError(t, client.DeleteRecord(ctx, "n1"))
}

func TestRateLimit(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, func(cfg *remote.Config) {
		cfg.RequestsPerSecond = 10
	})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 12; i++ {
		require.NoError(t, client.DeleteRecord(ctx, "x"))
	}
	// The bucket starts full with 10 tokens; two more need roughly 200ms.
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestRateLimitHonoursContext(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, func(cfg *remote.Config) {
		cfg.RequestsPerSecond = 0.5
	})

	require.NoError(t, client.DeleteRecord(context.Background(), "x"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, client.DeleteRecord(ctx, "x"), context.DeadlineExceeded)
}
