// Package resolver turns stored object references into fetchable URLs,
// exchanging bucket paths for short-lived signed URLs where it can.
package resolver

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"time"
)

// DefaultTTL is the validity window requested for signed URLs.
const DefaultTTL = 60 * time.Second

// Signer issues a signed URL for one object.
type Signer interface {
	Sign(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
}

// SignerFunc adapts a function to Signer.
type SignerFunc func(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)

func (f SignerFunc) Sign(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	return f(ctx, bucket, path, ttl)
}

// Public and signed object paths:
//
//	/storage/v1/object/public/<bucket>/<path>
//	/storage/v1/object/sign/<bucket>/<path>
var (
	publicPattern = regexp.MustCompile(`/storage/v1/object/public/([^/]+)/(.+)$`)
	signPattern   = regexp.MustCompile(`/storage/v1/object/sign/([^/]+)/(.+)$`)
)

// Location is a bucket object named by a reference.
type Location struct {
	Bucket string
	Path   string
}

// Parse extracts the bucket location from a reference, if it has one.
func Parse(raw string) (Location, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, false
	}
	for _, re := range []*regexp.Regexp{publicPattern, signPattern} {
		if m := re.FindStringSubmatch(u.Path); m != nil {
			return Location{Bucket: m[1], Path: m[2]}, true
		}
	}
	return Location{}, false
}

// Resolver maps raw references to URLs the archive encoder can download.
type Resolver struct {
	signer Signer
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a Resolver. A nil signer resolves every reference to itself.
func New(signer Signer, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Resolver{signer: signer, ttl: ttl, logger: slog.Default()}
}

// WithLogger sets the logger.
func (r *Resolver) WithLogger(logger *slog.Logger) *Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// TTL returns the signed URL validity window.
func (r *Resolver) TTL() time.Duration {
	return r.ttl
}

// Resolve returns a signed URL for recognised bucket references. Unrecognised
// references, and references the signer rejects, are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, raw string) string {
	if r == nil || r.signer == nil {
		return raw
	}
	loc, ok := Parse(raw)
	if !ok {
		return raw
	}

	signed, err := r.signer.Sign(ctx, loc.Bucket, loc.Path, r.ttl)
	if err != nil || signed == "" {
		r.logger.DebugContext(ctx, "signing failed, using raw reference",
			slog.String("bucket", loc.Bucket),
			slog.String("path", loc.Path),
			slog.Any("error", err),
		)
		return raw
	}
	return signed
}
