package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bryanwahyu/grantsheet/internal/domain/grants"
)

// DocumentStore archives the uploaded PDFs in a MinIO/S3 bucket.
type DocumentStore struct {
	client     *minio.Client
	bucketName string
	region     string
}

// NewDocumentStore buat koneksi MinIO dan pastikan bucket ada
func NewDocumentStore(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*DocumentStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &DocumentStore{client: cli, bucketName: bucket, region: region}, nil
}

func documentKey(id grants.AnalysisID) string {
	return fmt.Sprintf("analyses/%s.pdf", id)
}

// Put stores the original PDF under analyses/<id>.pdf.
func (s *DocumentStore) Put(ctx context.Context, id grants.AnalysisID, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucketName, documentKey(id), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	return err
}

// Open returns the archived PDF, or grants.ErrNotFound.
func (s *DocumentStore) Open(ctx context.Context, id grants.AnalysisID) (io.ReadCloser, error) {
	key := documentKey(id)
	if _, err := s.client.StatObject(ctx, s.bucketName, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: %s", grants.ErrNotFound, key)
		}
		return nil, err
	}
	return s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
}

// Remove deletes the archived PDF; a missing object is not an error.
func (s *DocumentStore) Remove(ctx context.Context, id grants.AnalysisID) error {
	return s.client.RemoveObject(ctx, s.bucketName, documentKey(id), minio.RemoveObjectOptions{})
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
