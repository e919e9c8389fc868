// internal/ssrf/ssrf_test.go
package ssrf

import (
	"net"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{
			name: "amazon product image",
			raw:  "https://m.media-amazon.com/images/I/71abc.jpg",
		},
		{
			name: "amazon storefront",
			raw:  "https://www.amazon.com/dp/B07XYZ1234",
		},
		{
			name: "amazon regional domain",
			raw:  "https://www.amazon.co.uk/dp/B07XYZ1234",
		},
		{
			name: "legacy image cdn",
			raw:  "https://images-na.ssl-images-amazon.com/images/P/B07XYZ1234.01._SL1500_.jpg",
		},
		{
			name:    "private ip",
			raw:     "http://192.168.1.5/admin",
			wantErr: ErrForbiddenTarget,
		},
		{
			name:    "loopback ip",
			raw:     "http://127.0.0.1:8080/",
			wantErr: ErrForbiddenTarget,
		},
		{
			name:    "public ip literal",
			raw:     "http://8.8.8.8/image.jpg",
			wantErr: ErrForbiddenTarget,
		},
		{
			name:    "localhost",
			raw:     "http://localhost/image.jpg",
			wantErr: ErrForbiddenTarget,
		},
		{
			name:    "cloud metadata host",
			raw:     "http://metadata.google.internal/computeMetadata/v1/",
			wantErr: ErrForbiddenTarget,
		},
		{
			name:    "non-amazon host",
			raw:     "https://evil.example.com/image.jpg",
			wantErr: ErrForbiddenTarget,
		},
		{
			name:    "amazon lookalike suffix",
			raw:     "https://notamazon.com/image.jpg",
			wantErr: ErrForbiddenTarget,
		},
		{
			name:    "file scheme",
			raw:     "file:///etc/passwd",
			wantErr: ErrSchemeNotHTTP,
		},
		{
			name:    "ftp scheme",
			raw:     "ftp://amazon.com/image.jpg",
			wantErr: ErrSchemeNotHTTP,
		},
		{
			name:    "oversized url",
			raw:     "https://www.amazon.com/" + strings.Repeat("a", 3000),
			wantErr: ErrURLTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ValidateTarget(tt.raw, 2048)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, u)
		})
	}
}

func TestValidateTargetNoLengthBound(t *testing.T) {
	raw := "https://www.amazon.com/" + strings.Repeat("a", 3000)
	_, err := ValidateTarget(raw, 0)
	assert.NoError(t, err)
}

func TestIsAllowedTarget(t *testing.T) {
	allowed := []string{
		"https://amazon.com/x",
		"https://www.amazon.com/x",
		"https://smile.amazon.de/x",
		"https://m.media-amazon.com/images/I/1.jpg",
	}
	for _, raw := range allowed {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.True(t, IsAllowedTarget(u), raw)
	}

	denied := []string{
		"https://amazon.com.evil.com/x",
		"https://mediaamazon.com/x",
		"https://[::1]/x",
		"https:///x",
	}
	for _, raw := range denied {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.False(t, IsAllowedTarget(u), raw)
	}
}

func TestIsAllowedTargetTrailingDot(t *testing.T) {
	u, err := url.Parse("https://www.amazon.com./x")
	require.NoError(t, err)
	assert.True(t, IsAllowedTarget(u))
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{
		"10.1.2.3",
		"172.16.0.1",
		"172.31.255.255",
		"192.168.1.5",
		"127.0.0.1",
		"169.254.169.254",
		"::1",
		"fc00::1",
		"fe80::1",
	}
	for _, s := range private {
		assert.True(t, IsPrivateIP(net.ParseIP(s)), s)
	}

	public := []string{
		"8.8.8.8",
		"1.1.1.1",
		"172.32.0.1",
		"2001:4860:4860::8888",
	}
	for _, s := range public {
		assert.False(t, IsPrivateIP(net.ParseIP(s)), s)
	}
}
