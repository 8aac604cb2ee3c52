package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/angelmondragon/content-console/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	defaultConnAttempts = 5
	defaultConnTimeout  = time.Second
)

// objectAPI is the slice of the S3 client the store relies on.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Client stores console images in an S3-compatible bucket.
type Client struct {
	api           objectAPI
	bucket        string
	endpoint      string
	publicBaseURL string
	usePathStyle  bool
	connAttempts  int
	connTimeout   time.Duration
	logg          *logger.Logger
}

type Option func(c *Client)

func ConnAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.connAttempts = attempts
		}
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.connTimeout = timeout
	}
}

// WithPublicBaseURL replaces the endpoint when building download URLs.
func WithPublicBaseURL(base string) Option {
	return func(c *Client) {
		c.publicBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

func withAPI(api objectAPI) Option {
	return func(c *Client) {
		c.api = api
	}
}

func NewClient(ctx context.Context, cfg config.S3Config, logg *logger.Logger, opts ...Option) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	c := &Client{
		bucket:       cfg.Bucket,
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		usePathStyle: cfg.UsePathStyle,
		connAttempts: defaultConnAttempts,
		connTimeout:  defaultConnTimeout,
		logg:         logg,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.api == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(
			ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		c.api = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.UsePathStyle
			if c.endpoint != "" {
				o.BaseEndpoint = aws.String(c.endpoint)
			}
		})
	}

	var err error
	for attempt := 1; attempt <= c.connAttempts; attempt++ {
		if err = c.Ping(ctx); err == nil {
			break
		}
		if logg != nil {
			logg.Warn(logg.WithField(ctx, "attempt", attempt), "s3 bucket not reachable yet")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.connTimeout):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("s3 health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", c.bucket), "s3 client initialized")
	}
	return c, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return errors.New("s3 client not initialized")
	}
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	return err
}

// Put uploads data under key. Progress follows the SDK reading the body, so a retried
// request restarts the count from zero.
func (c *Client) Put(ctx context.Context, key, contentType string, data []byte, progress func(transferred, total int64)) error {
	if c == nil || c.api == nil {
		return errors.New("s3 client not initialized")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("object key required")
	}
	body := &progressReader{Reader: bytes.NewReader(data), total: int64(len(data)), report: progress}
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	if progress != nil && body.read < body.total {
		progress(body.total, body.total)
	}
	return nil
}

// DownloadURL confirms the object exists and returns its public URL.
func (c *Client) DownloadURL(ctx context.Context, key string) (string, error) {
	if c == nil || c.api == nil {
		return "", errors.New("s3 client not initialized")
	}
	if _, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return "", fmt.Errorf("s3 head %s: %w", key, err)
	}
	return c.publicURL(key), nil
}

func (c *Client) publicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	escaped := strings.Join(segments, "/")

	switch {
	case c.publicBaseURL != "":
		return c.publicBaseURL + "/" + escaped
	case c.usePathStyle || c.endpoint == "":
		return c.endpoint + "/" + url.PathEscape(c.bucket) + "/" + escaped
	default:
		u, err := url.Parse(c.endpoint)
		if err != nil {
			return c.endpoint + "/" + url.PathEscape(c.bucket) + "/" + escaped
		}
		return u.Scheme + "://" + c.bucket + "." + u.Host + "/" + escaped
	}
}

// Delete removes the object. S3 reports success for missing keys.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.api == nil {
		return errors.New("s3 client not initialized")
	}
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (c *Client) Close() error {
	return nil
}

type progressReader struct {
	*bytes.Reader
	total  int64
	read   int64
	report func(transferred, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.Reader.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.report != nil {
			p.report(p.read, p.total)
		}
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.Reader.Seek(offset, whence)
	if err == nil {
		p.read = pos
	}
	return pos, err
}

var _ io.ReadSeeker = (*progressReader)(nil)
