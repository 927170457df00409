package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/advancelms/lms-api/internal/config"
	"github.com/advancelms/lms-api/internal/model"
)

// Rendition describes an additional transcoded variant requested for an
// uploaded video. The media host produces it asynchronously.
type Rendition struct {
	Width  int
	Height int
}

// UploadParams describes a single file upload.
type UploadParams struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Renditions  []Rendition
}

// Host is the logical contract of the external media host: upload a file and
// get back a stable public id plus a URL, or destroy a previously uploaded
// asset by its public id.
type Host interface {
	Upload(ctx context.Context, r io.Reader, params UploadParams) (*model.MediaAsset, error)
	Destroy(ctx context.Context, publicID string) error
}

type minioHost struct {
	client *minio.Client
	bucket string
	scheme string
}

// NewMinioHost creates a media host backed by an S3-compatible object store.
// The bucket is created on startup if it does not exist.
func NewMinioHost(ctx context.Context, cfg config.MediaConfig) (Host, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create media host client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	return &minioHost{
		client: client,
		bucket: cfg.Bucket,
		scheme: scheme,
	}, nil
}

func (h *minioHost) Upload(
	ctx context.Context,
	r io.Reader,
	params UploadParams,
) (*model.MediaAsset, error) {
	publicID := objectKey(params.Folder, params.Filename)

	opts := minio.PutObjectOptions{
		ContentType: params.ContentType,
	}
	if len(params.Renditions) > 0 {
		opts.UserMetadata = map[string]string{
			"renditions": renditionSpec(params.Renditions),
		}
	}

	if _, err := h.client.PutObject(ctx, h.bucket, publicID, r, params.Size, opts); err != nil {
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	return &model.MediaAsset{
		PublicID: publicID,
		URL:      fmt.Sprintf("%s://%s/%s/%s", h.scheme, h.client.EndpointURL().Host, h.bucket, publicID),
	}, nil
}

func (h *minioHost) Destroy(ctx context.Context, publicID string) error {
	if err := h.client.RemoveObject(ctx, h.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// objectKey builds a unique object key preserving the original file extension.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(folder, uuid.NewString()+ext)
}

// renditionSpec encodes renditions as "WxH" pairs separated by commas.
func renditionSpec(renditions []Rendition) string {
	parts := make([]string, 0, len(renditions))
	for _, r := range renditions {
		parts = append(parts, fmt.Sprintf("%dx%d", r.Width, r.Height))
	}
	return strings.Join(parts, ",")
}
