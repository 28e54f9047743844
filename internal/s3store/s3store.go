// Package s3store files finished invoices in an S3 bucket or any
// S3-compatible object store.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/Tiliavir/monthly-invoicer/internal/apperr"
	"github.com/Tiliavir/monthly-invoicer/internal/model"
)

// Options select the bucket. Credentials default to the AWS chain
// (environment, shared config, instance role).
type Options struct {
	Bucket      string
	Region      string
	Endpoint    string
	Credentials *credentials.Credentials
}

// Store uploads PDFs. The folder passed to Save is used as key prefix.
type Store struct {
	client   *s3.S3
	bucket   string
	region   string
	endpoint string
}

// New opens a session for opts.
func New(opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, apperr.Config("open s3 store", "s3.bucket", "bucket must be set")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	cfg := &aws.Config{
		Region:      aws.String(region),
		Credentials: opts.Credentials,
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}
	return &Store{
		client:   s3.New(sess),
		bucket:   opts.Bucket,
		region:   region,
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
	}, nil
}

// Save puts data under <folder>/<name>.
func (s *Store) Save(ctx context.Context, folder, name string, data []byte) (model.File, error) {
	key := Key(folder, name)
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/pdf"),
	})
	if err != nil {
		return model.File{}, classify(key, err)
	}
	return model.File{ID: key, Name: name, URL: s.URL(key)}, nil
}

// Key joins folder and name, ignoring stray slashes.
func Key(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// URL is the object's address: path style on a custom endpoint, virtual-host
// style on AWS.
func (s *Store) URL(key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	escaped := strings.Join(segs, "/")
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}

func classify(key string, err error) error {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Code() == s3.ErrCodeNoSuchBucket || reqErr.StatusCode() == http.StatusNotFound:
			return apperr.Wrap(apperr.KindNotFound, "put object", key, err)
		case reqErr.StatusCode() == http.StatusForbidden:
			return apperr.Wrap(apperr.KindConfig, "put object", key, err)
		case reqErr.StatusCode() >= 500 || reqErr.StatusCode() == http.StatusTooManyRequests:
			return apperr.Wrap(apperr.KindTransient, "put object", key, err)
		}
		return apperr.Wrap(apperr.KindUnknown, "put object", key, err)
	}
	return apperr.Wrap(apperr.KindTransient, "put object", key, err)
}
