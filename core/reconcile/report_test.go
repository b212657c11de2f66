package reconcile_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"bulk-manager/core/reconcile"
	"bulk-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleRun() *reconcile.Run {
	completed := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	return &reconcile.Run{
		ID:          "run-1",
		Engine:      "bulk_update",
		State:       reconcile.RunCompleted,
		Total:       5,
		StartedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		CompletedAt: &completed,
		Results: []reconcile.Result{
			{Ref: "row 2", EntityID: "e1", Label: "Acme, Inc.", Action: reconcile.ActionUpdate, Status: reconcile.StatusSuccess,
				Fields: []reconcile.FieldChange{
					{FieldID: "f1", New: reconcile.Scalar(12.5), Status: reconcile.FieldApplied},
					{FieldID: "f2", New: reconcile.Scalar("x"), Status: reconcile.FieldSkipped},
				}},
			{Ref: "row 3", Action: reconcile.ActionError, Status: reconcile.StatusFailed, Error: "missing_uuid"},
			{Ref: "row 4", EntityID: "e3", Action: reconcile.ActionUpdate, Status: reconcile.StatusSkipped, AllFieldsSkipped: true},
			{Ref: "row 5", Action: reconcile.ActionCreate, Status: reconcile.StatusSuccess, CreatedID: "new-1", OwnerSkipped: true},
			{Ref: "n9", EntityID: "n9", Action: reconcile.ActionDelete, Status: reconcile.StatusFailed, Error: "HTTP 500: \"quoted\""},
		},
	}
}

func TestBuildReport(t *testing.T) {
	report := reconcile.BuildReport(sampleRun())

	assert.Equal(t, 5, report.Counts.Processed)
	assert.Equal(t, 1, report.Counts.Created)
	assert.Equal(t, 1, report.Counts.Updated)
	assert.Equal(t, 0, report.Counts.Deleted)
	assert.Equal(t, 1, report.Counts.Skipped)
	assert.Equal(t, 2, report.Counts.Failed)
	assert.Equal(t, 1, report.Counts.Breakdown["all_fields_skipped"])
	assert.Equal(t, 1, report.Counts.Breakdown["owner_skipped"])
	assert.Equal(t, 1, report.Counts.Breakdown["fields_skipped"])
}

func TestReportFailures(t *testing.T) {
	report := reconcile.BuildReport(sampleRun())

	msgs, more := report.Failures(1)
	assert.Equal(t, []string{"row 3: missing_uuid"}, msgs)
	assert.Equal(t, 1, more)

	msgs, more = report.Failures(0)
	assert.Len(t, msgs, 2)
	assert.Zero(t, more)
}

func TestReportWriteCSV(t *testing.T) {
	report := reconcile.BuildReport(sampleRun())

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Summary,\nRun ID,run-1\n"))
	assert.Contains(t, out, "\n\nref,entity_id,label,action,status,fields,error,notes\n")
	assert.Contains(t, out, `row 2,e1,"Acme, Inc.",update,success,f1=12.5 [applied]; f2=x [skipped],,`)
	assert.Contains(t, out, `row 5,new-1,,create,success,,,"owner not found, created without owner"`)
	assert.Contains(t, out, `"HTTP 500: ""quoted"""`)
	assert.Contains(t, out, "all_fields_skipped,1\n")
}

func TestUploadReport(t *testing.T) {
	ctx := context.Background()
	report := reconcile.BuildReport(sampleRun())

	t.Run("Success", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("PutObject", ctx, "bucket", "reports/run-1.csv", mock.Anything, mock.AnythingOfType("int64"),
			minio.PutObjectOptions{ContentType: "text/csv"}).Return(minio.UploadInfo{}, nil)

		name, err := reconcile.UploadReport(ctx, client, "bucket", report)
		require.NoError(t, err)
		assert.Equal(t, "reports/run-1.csv", name)
		client.AssertExpectations(t)
	})

	t.Run("Failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("no space"))

		_, err := reconcile.UploadReport(ctx, client, "bucket", report)
		assert.ErrorContains(t, err, "no space")
	})
}

func TestRunStore(t *testing.T) {
	store := reconcile.NewRunStore(2, time.Minute)
	for _, id := range []string{"a", "b", "c"} {
		store.Put(&reconcile.Report{RunID: id})
	}

	assert.Equal(t, 2, store.Len())
	_, ok := store.Get("a")
	assert.False(t, ok)
	report, ok := store.Get("c")
	require.True(t, ok)
	assert.Equal(t, "c", report.RunID)
	assert.Equal(t, []string{"b", "c"}, store.IDs())
}

func TestDownloadReport(t *testing.T) {
	ctx := context.Background()

	client := new(mocks.Client)
	client.On("GetObject", ctx, "bucket", "reports/run-1.csv", minio.GetObjectOptions{}).
		Return(io.NopCloser(strings.NewReader("run_id,run-1\n")), nil)
	client.On("GetObject", ctx, "bucket", "reports/missing.csv", minio.GetObjectOptions{}).
		Return(nil, errors.New("NoSuchKey"))

	data, err := reconcile.DownloadReport(ctx, client, "bucket", "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run_id,run-1\n", string(data))

	_, err = reconcile.DownloadReport(ctx, client, "bucket", "missing")
	assert.ErrorContains(t, err, "NoSuchKey")
}

func TestArchivedRunIDs(t *testing.T) {
	ctx := context.Background()
	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "reports/run-1.csv"}
	ch <- minio.ObjectInfo{Key: "reports/readme.txt"}
	ch <- minio.ObjectInfo{Key: "reports/run-2.csv"}
	close(ch)

	client := new(mocks.Client)
	client.On("ListObjects", ctx, "bucket", minio.ListObjectsOptions{Prefix: "reports/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	ids, err := reconcile.ArchivedRunIDs(ctx, client, "bucket")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1", "run-2"}, ids)
}
