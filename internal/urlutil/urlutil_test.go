package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := map[string]string{
		"":                        "",
		"www.mysite.com":          "http://www.mysite.com",
		"https://mysite.com/":     "https://mysite.com",
		" http://localhost:8080/": "http://localhost:8080",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeBaseURL(in), in)
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "https://x.io/a/b", JoinPath("https://x.io/", "/a/b"))
	assert.Equal(t, "https://x.io/a", JoinPath("https://x.io", "a"))
	assert.Equal(t, "/a", JoinPath("", "/a"))
}

func TestIsRemoteURL(t *testing.T) {
	assert.True(t, IsRemoteURL("https://x.io/a.jpg"))
	assert.True(t, IsRemoteURL("//x.io/a.jpg"))
	assert.False(t, IsRemoteURL("photos/a.jpg"))
	assert.False(t, IsRemoteURL(""))
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"https://x.io/photos/a.jpg?X-Amz-Expires=60": "a.jpg",
		"https://x.io/photos/my%20photo.png":         "my photo.png",
		"https://x.io/":                              "",
		"https://x.io":                               "",
		"%zz":                                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FileName(in), in)
	}
}
