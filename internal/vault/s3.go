package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"bitacora-go/internal/config"
	"bitacora-go/internal/core"
)

// S3Vault stores exports in an S3 bucket under an optional key prefix,
// mirroring the filesystem vault layout:
//
//	<prefix>/content/<entryID>
//	<prefix>/index/<deviceID>.json
//	<prefix>/index/<deviceID>.version
//
// Uploads go through the transfer manager so large video files are sent in
// parts without knowing their size up front.
type S3Vault struct {
	name     string
	bucket   string
	prefix   string
	client   *s3.Client
	uploader *manager.Uploader
}

var _ core.Vault = (*S3Vault)(nil)

// NewS3Vault creates an S3 vault from config. When access keys are present
// in the config they are used as static credentials; otherwise the default
// AWS credential chain applies.
func NewS3Vault(cfg config.VaultConfig) (*S3Vault, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 vault requires s3_bucket to be set")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Vault{
		name:     cfg.Name,
		bucket:   cfg.S3Bucket,
		prefix:   strings.Trim(cfg.S3Prefix, "/"),
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

func (v *S3Vault) contentKey(id string) string {
	return path.Join(v.prefix, "content", id)
}

func (v *S3Vault) indexKey(deviceID, suffix string) string {
	return path.Join(v.prefix, "index", deviceID+suffix)
}

// PutContent uploads an entry's backing file.
func (v *S3Vault) PutContent(id string, r io.Reader) error {
	return v.upload(v.contentKey(id), r)
}

// GetContent downloads an entry's backing file into w.
func (v *S3Vault) GetContent(id string, w io.Writer) error {
	return v.download(v.contentKey(id), w, fmt.Sprintf("content not found: %s", id))
}

// PutIndex uploads the index document and its version marker.
func (v *S3Vault) PutIndex(deviceID string, r io.Reader, version int64) error {
	if err := v.upload(v.indexKey(deviceID, ".json"), r); err != nil {
		return err
	}
	return v.upload(v.indexKey(deviceID, ".version"), strings.NewReader(strconv.FormatInt(version, 10)))
}

// GetIndex downloads the index document into w.
func (v *S3Vault) GetIndex(deviceID string, w io.Writer) error {
	return v.download(v.indexKey(deviceID, ".json"), w, fmt.Sprintf("index not found for device: %s", deviceID))
}

// IndexVersion returns the export version for a device, 0 when none exists.
func (v *S3Vault) IndexVersion(deviceID string) (int64, error) {
	var buf strings.Builder
	out, err := v.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(v.indexKey(deviceID, ".version")),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version object: %w", err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(&buf, out.Body); err != nil {
		return 0, fmt.Errorf("reading version object: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(buf.String()), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup verifies the bucket is reachable with the configured credentials.
func (v *S3Vault) ValidateSetup() error {
	_, err := v.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(v.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", v.bucket, err)
	}
	return nil
}

func (v *S3Vault) upload(key string, r io.Reader) error {
	_, err := v.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	return nil
}

func (v *S3Vault) download(key string, w io.Writer, notFoundMsg string) error {
	out, err := v.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return fmt.Errorf("%s", notFoundMsg)
		}
		return fmt.Errorf("downloading %s: %w", key, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("downloading %s: %w", key, err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}
