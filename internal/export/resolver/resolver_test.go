package resolver

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/eventexport/internal/config"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Location
		ok   bool
	}{
		{"https://x.example.com/storage/v1/object/public/guest-uploads/photos/a.jpg",
			Location{Bucket: "guest-uploads", Path: "photos/a.jpg"}, true},
		{"https://x.example.com/storage/v1/object/sign/media/k.pdf?token=abc",
			Location{Bucket: "media", Path: "k.pdf"}, true},
		{"https://cdn.example.com/a.jpg", Location{}, false},
		{"https://x.example.com/storage/v1/object/public/bucket-only", Location{}, false},
		{"::not a url", Location{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Parse(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_SignsRecognisedReferences(t *testing.T) {
	var gotBucket, gotPath string
	var gotTTL time.Duration
	r := New(SignerFunc(func(_ context.Context, bucket, path string, ttl time.Duration) (string, error) {
		gotBucket, gotPath, gotTTL = bucket, path, ttl
		return "https://signed.example.com/" + path, nil
	}), 0)

	out := r.Resolve(context.Background(), "https://x.example.com/storage/v1/object/public/uploads/a.jpg")

	assert.Equal(t, "https://signed.example.com/a.jpg", out)
	assert.Equal(t, "uploads", gotBucket)
	assert.Equal(t, "a.jpg", gotPath)
	assert.Equal(t, 60*time.Second, gotTTL)
}

func TestResolve_FallsBackToRaw(t *testing.T) {
	calls := 0
	failing := SignerFunc(func(context.Context, string, string, time.Duration) (string, error) {
		calls++
		return "", errors.New("denied")
	})
	raw := "https://x.example.com/storage/v1/object/public/uploads/a.jpg"

	assert.Equal(t, raw, New(failing, time.Minute).Resolve(context.Background(), raw))
	assert.Equal(t, 1, calls)

	assert.Equal(t, "https://cdn.example.com/a.jpg",
		New(failing, time.Minute).Resolve(context.Background(), "https://cdn.example.com/a.jpg"))
	assert.Equal(t, 1, calls, "unrecognised references are never signed")

	assert.Equal(t, raw, New(nil, 0).Resolve(context.Background(), raw))
}

func TestMinioSigner_Presigns(t *testing.T) {
	s, err := NewMinioSigner(config.ObjectStoreConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "access",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	signed, err := s.Sign(context.Background(), "uploads", "photos/a.jpg", DefaultTTL)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/photos/a.jpg", u.Path)
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestNewMinioSigner_RequiresEndpoint(t *testing.T) {
	_, err := NewMinioSigner(config.ObjectStoreConfig{})
	assert.Error(t, err)
}
