package runs_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bulk-manager/core/reconcile"
	"bulk-manager/core/storage/mocks"
	"bulk-manager/feature/runs"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T, archive *reconcile.Archive) (*fiber.App, *reconcile.Runner) {
	t.Helper()
	runner := reconcile.NewRunner(reconcile.DefaultConfig(), nil, archive, zap.NewNop())
	runner.Store.Put(reconcile.BuildReport(&reconcile.Run{
		ID:        "run-1",
		Engine:    "dedupe_notes",
		State:     reconcile.RunCompleted,
		Total:     2,
		StartedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		Results: []reconcile.Result{
			{Ref: "n1", EntityID: "n1", Action: reconcile.ActionKeep, Status: reconcile.StatusSkipped},
			{Ref: "n2", EntityID: "n2", Action: reconcile.ActionDelete, Status: reconcile.StatusFailed, Error: "HTTP 500: boom"},
		},
	}))

	app := fiber.New()
	runs.NewHandler(runner, zap.NewNop()).RegisterRoutes(app)
	return app, runner
}

func get(t *testing.T, app *fiber.App, path string) (int, string, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), 5000)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(body)
}

func TestHandleGet(t *testing.T) {
	app, _ := setup(t, nil)

	status, _, body := get(t, app, "/runs/run-1")
	require.Equal(t, 200, status)
	var summary reconcile.Summary
	require.NoError(t, json.Unmarshal([]byte(body), &summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 1, summary.Counts.Failed)
	assert.Len(t, summary.Failures, 1)

	status, _, _ = get(t, app, "/runs/nope")
	assert.Equal(t, 404, status)
}

func TestHandleReport(t *testing.T) {
	t.Run("FromMemory", func(t *testing.T) {
		app, _ := setup(t, nil)
		status, contentType, body := get(t, app, "/runs/run-1/report.csv")
		require.Equal(t, 200, status)
		assert.Equal(t, "text/csv", contentType)
		assert.Contains(t, body, "run-1")
		assert.Contains(t, body, "HTTP 500: boom")
	})

	t.Run("FromArchive", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "reports-bucket", "reports/old-run.csv", minio.GetObjectOptions{}).
			Return(io.NopCloser(strings.NewReader("run_id,old-run\n")), nil)
		client.On("GetObject", mock.Anything, "reports-bucket", "reports/gone.csv", minio.GetObjectOptions{}).
			Return(nil, errors.New("NoSuchKey"))

		app, _ := setup(t, &reconcile.Archive{Client: client, Bucket: "reports-bucket"})

		status, _, body := get(t, app, "/runs/old-run/report.csv")
		require.Equal(t, 200, status)
		assert.Equal(t, "run_id,old-run\n", body)

		status, _, _ = get(t, app, "/runs/gone/report.csv")
		assert.Equal(t, 404, status)
	})
}

func TestHandleList(t *testing.T) {
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Key: "reports/old-run.csv"}
	close(ch)
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "reports-bucket", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	app, _ := setup(t, &reconcile.Archive{Client: client, Bucket: "reports-bucket"})

	status, _, body := get(t, app, "/runs")
	require.Equal(t, 200, status)
	var resp runs.ListResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, []string{"run-1"}, resp.Recent)
	assert.Equal(t, []string{"old-run"}, resp.Archived)
}
