package catalog

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	zlog "github.com/rs/zerolog/log"
)

// S3Options configures an S3Source.
type S3Options struct {
	Endpoint  string
	Bucket    string
	Region    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PageSize  int
}

// S3Source lists object keys with ListObjectsV2. Empty credentials make
// anonymous requests, which is what a public bucket needs.
type S3Source struct {
	core   *minio.Core
	bucket string
	prefix string
	max    int
}

// NewS3Source creates the S3 client. No request is made until ListPage.
func NewS3Source(opts S3Options) (*S3Source, error) {
	core, err := minio.NewCore(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating S3 client")
	}
	return &S3Source{
		core:   core,
		bucket: opts.Bucket,
		prefix: opts.Prefix,
		max:    opts.PageSize,
	}, nil
}

func (s *S3Source) ListPage(ctx context.Context, token string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	res, err := s.core.ListObjectsV2(s.bucket, s.prefix, "", token, "", s.max)
	if err != nil {
		return Page{}, errors.Wrapf(err, "listing bucket %s", s.bucket)
	}
	page := Page{Keys: make([]TrackID, 0, len(res.Contents))}
	for _, obj := range res.Contents {
		page.Keys = append(page.Keys, TrackID(obj.Key))
	}
	if res.IsTruncated {
		page.Next = res.NextContinuationToken
		if page.Next == "" {
			return Page{}, errors.Newf("bucket %s: truncated listing without continuation token", s.bucket)
		}
	}
	zlog.Debug().Int("keys", len(page.Keys)).Bool("truncated", res.IsTruncated).Msg("listed S3 page")
	return page, nil
}

// PublicURL is the base URL objects are streamed from when no explicit one is
// configured: path-style addressing on the listing endpoint.
func PublicURL(opts S3Options) string {
	scheme := "http"
	if opts.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, opts.Endpoint, opts.Bucket)
}
