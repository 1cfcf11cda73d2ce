package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const s3Scheme = "s3://"

// S3API is the subset of the S3 client used by S3Reader.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Reader reads resources stored in S3 (or an S3 compatible store) from
// s3://bucket/key locators.
type S3Reader struct {
	client S3API
}

var _ Reader = (*S3Reader)(nil)

func NewS3Reader(client S3API) *S3Reader {
	return &S3Reader{client: client}
}

// NewS3Client builds an S3 client from the default AWS configuration chain.
// A non empty endpoint selects path style addressing (MinIO and friends).
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Opts := []func(*s3.Options){}
	if endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

func (r *S3Reader) ReadAllContent(ctx context.Context, locator string, enc Encoding) (string, error) {
	bucket, key, ok := parseS3(locator)
	if !ok {
		return "", fmt.Errorf("not an s3 locator: %s", locator)
	}

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, locator)
		}
		return "", fmt.Errorf("get object %s: %w", locator, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read object %s: %w", locator, err)
	}
	return Decode(raw, enc)
}

func (r *S3Reader) ReadAllLines(ctx context.Context, locator string, enc Encoding) ([]string, error) {
	content, err := r.ReadAllContent(ctx, locator, enc)
	if err != nil {
		return nil, err
	}
	return SplitLines(content), nil
}

// List returns the objects directly under the locator prefix.
func (r *S3Reader) List(ctx context.Context, locator string) ([]string, error) {
	bucket, prefix, ok := parseS3(locator)
	if !ok {
		return nil, fmt.Errorf("not an s3 locator: %s", locator)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	p := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	locators := []string{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", locator, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}
			locators = append(locators, s3Scheme+bucket+"/"+key)
		}
	}

	if len(locators) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
	}
	sort.Strings(locators)
	return locators, nil
}

// parseS3 splits s3://bucket/key into bucket and key.
func parseS3(locator string) (string, string, bool) {
	if !strings.HasPrefix(locator, s3Scheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(locator, s3Scheme)
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, key, true
}
