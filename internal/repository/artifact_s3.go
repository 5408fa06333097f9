package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"StockX/internal/domain/models"
	"StockX/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Options configures the S3 artifact backend.
type S3Options struct {
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// S3ArtifactStore stores artifacts as objects named <prefix>/<SYMBOL>.model.
// A single PutObject replaces the previous model atomically.
type S3ArtifactStore struct {
	client s3API
	bucket string
	prefix string
	logger *logger.Logger
}

func NewS3ArtifactStore(ctx context.Context, opts S3Options, lgr *logger.Logger) (*S3ArtifactStore, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 artifact store: bucket is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return newS3ArtifactStore(client, opts.Bucket, opts.Prefix, lgr), nil
}

func newS3ArtifactStore(client s3API, bucket, prefix string, lgr *logger.Logger) *S3ArtifactStore {
	return &S3ArtifactStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), logger: lgr}
}

func (s *S3ArtifactStore) key(symbol string) string {
	return path.Join(s.prefix, symbol+artifactExt)
}

func (s *S3ArtifactStore) Put(ctx context.Context, m *models.TrainedModel) error {
	data, err := EncodeArtifact(m)
	if err != nil {
		return err
	}
	key := s.key(m.Symbol)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/msgpack"),
	})
	if err != nil {
		return fmt.Errorf("put artifact %s: %w", key, err)
	}
	s.logger.Info("artifact uploaded",
		logger.String("symbol", m.Symbol),
		logger.String("bucket", s.bucket),
		logger.String("key", key),
		logger.Int("bytes", len(data)),
	)
	return nil
}

func (s *S3ArtifactStore) Get(ctx context.Context, symbol string) (*models.TrainedModel, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(symbol)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, models.ModelNotFound(symbol)
		}
		return nil, fmt.Errorf("get artifact %s: %w", symbol, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, models.CorruptArtifact(symbol, err)
	}
	return DecodeArtifact(symbol, data)
}

func (s *S3ArtifactStore) List(ctx context.Context) ([]string, error) {
	prefix := s.prefix
	if prefix != "" {
		prefix += "/"
	}
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var out []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list artifacts: %w", err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if strings.Contains(name, "/") || !strings.HasSuffix(name, artifactExt) {
				continue
			}
			out = append(out, strings.TrimSuffix(name, artifactExt))
		}
	}
	sort.Strings(out)
	return out, nil
}
