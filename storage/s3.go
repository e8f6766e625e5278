package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type S3Gateway struct {
	client    *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
	bucket    string
}

func NewS3Gateway(client *s3.Client, bucket string) *S3Gateway {
	return &S3Gateway{
		client:    client,
		presigner: s3.NewPresignClient(client),
		uploader:  manager.NewUploader(client),
		bucket:    bucket,
	}
}

func (g *S3Gateway) Put(ctx context.Context, body io.Reader, contentType, filename string) (string, error) {
	key := newObjectKey(filename)
	_, err := g.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return key, nil
}

func (g *S3Gateway) Presign(ctx context.Context, key string, disposition Disposition, ttl time.Duration) (string, error) {
	req, err := g.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(g.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(disposition.Header()),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return req.URL, nil
}

func (g *S3Gateway) GetStream(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := g.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return out.Body, nil
}

// newObjectKey names objects by a random UUID, keeping the original
// extension so that browsers and the bucket console show a sensible type.
func newObjectKey(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(filename)))
	if len(ext) > 16 || strings.ContainsAny(ext, " /\\") {
		ext = ""
	}
	return "files/" + uuid.NewString() + ext
}
