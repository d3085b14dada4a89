package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/nsforge/nsforge/internal/config"
	"github.com/nsforge/nsforge/internal/util/retry"
	"github.com/nsforge/nsforge/pkg/nsapi"
)

const objectPrefix = "requests/"

// s3API is the subset of the S3 client the store uses; narrowed for tests.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3 persists each request record as one JSON object under
// requests/<requestId>.json in an S3-compatible bucket.
type S3 struct {
	client s3API
	bucket string
	retry  retry.Config

	// mu serializes Update read-modify-write cycles within this process.
	// Cross-process serialization is the deployment's concern; nsforge
	// runs a single orchestrator instance per bucket.
	mu sync.Mutex
}

// NewS3 creates an S3-backed store from configuration.
func NewS3(ctx context.Context, cfg config.S3Config) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &S3{client: client, bucket: cfg.Bucket, retry: retry.Defaults()}, nil
}

func objectKey(requestID string) string {
	return objectPrefix + requestID + ".json"
}

// Get implements Store.
func (s *S3) Get(ctx context.Context, requestID string) (*nsapi.ProvisioningRequest, error) {
	var req *nsapi.ProvisioningRequest
	err := retry.Do(ctx, s.retry, func() error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectKey(requestID)),
		})
		if err != nil {
			if isNoSuchKey(err) {
				return retry.Permanent(ErrNotFound)
			}
			return err
		}
		defer func() { _ = out.Body.Close() }()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(out.Body); err != nil {
			return fmt.Errorf("read object body: %w", err)
		}
		var decoded nsapi.ProvisioningRequest
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			return retry.Permanent(fmt.Errorf("corrupt record %s: %w", requestID, err))
		}
		req = &decoded
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get request %s: %w", requestID, err)
	}
	return req, nil
}

// Put implements Store.
func (s *S3) Put(ctx context.Context, req *nsapi.ProvisioningRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request %s: %w", req.RequestID, err)
	}

	err = retry.Do(ctx, s.retry, func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(objectKey(req.RequestID)),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
			ContentType:   aws.String("application/json"),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("put request %s: %w", req.RequestID, err)
	}
	return nil
}

// Update implements Store.
func (s *S3) Update(ctx context.Context, requestID string, fn func(*nsapi.ProvisioningRequest) error) (*nsapi.ProvisioningRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := fn(current); err != nil {
		return nil, err
	}
	if err := s.Put(ctx, current); err != nil {
		return nil, err
	}
	return current.Clone(), nil
}

// List implements Store.
func (s *S3) List(ctx context.Context) ([]*nsapi.ProvisioningRequest, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*nsapi.ProvisioningRequest, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimSuffix(path.Base(key), ".json")
		req, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, req)
	}
	sortByCreation(out)
	return out, nil
}

// ListByTeam implements Store. The bucket holds no secondary index, so team
// filtering scans all records; acceptable at self-service provisioning
// volumes.
func (s *S3) ListByTeam(ctx context.Context, team string) ([]*nsapi.ProvisioningRequest, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*nsapi.ProvisioningRequest
	for _, req := range all {
		if req.Team == team {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *S3) listKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(objectPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list requests: %w", err)
		}
		for _, obj := range out.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}

// isNoSuchKey checks for a missing object, falling back to API error codes
// for S3-compatible services that do not return the exact SDK error types.
func isNoSuchKey(err error) bool {
	if err == nil {
		return false
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "404"
	}
	return false
}
