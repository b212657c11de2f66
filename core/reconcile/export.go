package reconcile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"bulk-manager/core/storage"

	"github.com/minio/minio-go/v7"
)

// ReportPrefix is the object prefix under which run reports are stored.
const ReportPrefix = "reports"

// ReportObjectName returns the storage key of a run's CSV report.
func ReportObjectName(runID string) string {
	return path.Join(ReportPrefix, runID+".csv")
}

// UploadReport writes the report as CSV to object storage and returns the object name.
func UploadReport(ctx context.Context, client storage.Client, bucket string, report *Report) (string, error) {
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	objectName := ReportObjectName(report.RunID)
	_, err := client.PutObject(
		ctx,
		bucket,
		objectName,
		bytes.NewReader(buf.Bytes()),
		int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "text/csv"},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", objectName, err)
	}

	return objectName, nil
}

// DownloadReport reads an archived CSV report.
func DownloadReport(ctx context.Context, client storage.Client, bucket, runID string) ([]byte, error) {
	objectName := ReportObjectName(runID)
	obj, err := client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open report %s: %w", objectName, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", objectName, err)
	}
	return data, nil
}

// ArchivedRunIDs lists the run ids with an archived report.
func ArchivedRunIDs(ctx context.Context, client storage.Client, bucket string) ([]string, error) {
	keys, err := storage.ListKeys(ctx, client, bucket, ReportPrefix+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		name := path.Base(key)
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".csv"))
	}
	return ids, nil
}
