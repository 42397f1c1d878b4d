package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectAPI is the subset of the S3 client used by [S3Source].
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config holds connection settings for [NewS3Source].
type S3Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string // non-empty for MinIO and other S3-compatible stores
}

// S3Source reads datasets stored under Prefix in an S3 bucket. A folder maps
// to the key Prefix/folder/table.txt.
type S3Source struct {
	client ObjectAPI
	bucket string
	prefix string
}

// NewS3Source builds a source backed by the default AWS credential chain.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("dataset: S3 bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("dataset: load AWS config: %w", err)
	}

	var client *s3.Client

	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "http://" + endpoint
		}

		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return NewS3SourceFromClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3SourceFromClient wraps an existing client.
func NewS3SourceFromClient(client ObjectAPI, bucket, prefix string) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key of the table in folder.
func (s *S3Source) Key(folder string) string {
	return path.Join(s.prefix, strings.Trim(folder, "/"), TableFile)
}

// Open fetches the table object of folder.
func (s *S3Source) Open(ctx context.Context, folder string) (io.ReadCloser, error) {
	key := s.Key(folder)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, key)
		}

		return nil, fmt.Errorf("dataset: get s3://%s/%s: %w", s.bucket, key, err)
	}

	return out.Body, nil
}

// Folders lists the immediate sub-folders below the prefix, relative to it,
// in the lexical order returned by S3.
func (s *S3Source) Folders(ctx context.Context) ([]string, error) {
	prefix := s.prefix
	if prefix != "" {
		prefix += "/"
	}

	var (
		folders []string
		token   *string
	)

	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("dataset: list s3://%s/%s: %w", s.bucket, prefix, err)
		}

		for _, cp := range out.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name != "" {
				folders = append(folders, name)
			}
		}

		if !aws.ToBool(out.IsTruncated) {
			return folders, nil
		}

		token = out.NextContinuationToken
	}
}
