// Package storage archives run reports in S3 compatible object storage.
//
// The Client interface wraps the MinIO client so that report uploads can be tested
// against core/storage/mocks. Each run report is written as one CSV object; EnsureBucket
// creates the target bucket on startup and ListKeys enumerates archived reports.
package storage
