// Package s3store keeps snapshots as JSON objects in an S3-compatible
// bucket, one object per session under a common prefix.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/maxviazov/hoops-tagging-service/internal/config"
	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
)

const objectSuffix = ".json"

// Store is a SaveStore and Pinger over one bucket.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New builds the S3 client. Static credentials are used when both keys are
// set, otherwise the default AWS credential chain applies. A custom
// endpoint targets MinIO, R2 and similar services.
func New(ctx context.Context, cfg config.S3Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("invalid S3 configuration: bucket is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *Store) key(handle string) string { return s.prefix + handle + objectSuffix }

func (s *Store) handleOf(key string) string {
	return strings.TrimSuffix(strings.TrimPrefix(key, s.prefix), objectSuffix)
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return repository.Unavailable("s3 head bucket", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, sessionID string, data model.SaveData) (string, error) {
	b, err := repository.EncodeSave(data)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(sessionID)),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"total-events": strconv.Itoa(len(data.Events)),
			"version":      data.Version,
		},
	})
	if err != nil {
		return "", repository.Unavailable(fmt.Sprintf("s3 put %s", sessionID), err)
	}
	return sessionID, nil
}

func (s *Store) Load(ctx context.Context, handle string) (model.SaveData, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(handle)),
	})
	if err != nil {
		if isNotFound(err) {
			return model.SaveData{}, repository.ErrNotFound
		}
		return model.SaveData{}, repository.Unavailable(fmt.Sprintf("s3 get %s", handle), err)
	}
	defer out.Body.Close()
	b, err := io.ReadAll(out.Body)
	if err != nil {
		return model.SaveData{}, repository.Unavailable(fmt.Sprintf("s3 read %s", handle), err)
	}
	return repository.DecodeSave(b)
}

// Delete checks existence first because S3 deletes succeed for missing keys.
func (s *Store) Delete(ctx context.Context, handle string) error {
	key := aws.String(s.key(handle))
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: key}); err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return repository.Unavailable(fmt.Sprintf("s3 head %s", handle), err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: key}); err != nil {
		return repository.Unavailable(fmt.Sprintf("s3 delete %s", handle), err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]repository.SaveInfo, error) {
	var out []repository.SaveInfo
	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, repository.Unavailable("s3 list", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, objectSuffix) {
				continue
			}
			handle := s.handleOf(key)
			data, err := s.Load(ctx, handle)
			if errors.Is(err, repository.ErrNotFound) {
				continue // deleted between list and get
			}
			if err != nil {
				return nil, err
			}
			out = append(out, repository.InfoOf(handle, data))
		}
	}
	return out, nil
}

var (
	_ repository.SaveStore = (*Store)(nil)
	_ repository.Pinger    = (*Store)(nil)
)
