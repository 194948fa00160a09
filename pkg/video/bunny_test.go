package video

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBunnySigner_PlaylistURL(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name   string
		signer BunnySigner
		lib    string
		video  string
		want   string
	}{
		{
			name:   "missing pull zone",
			signer: BunnySigner{SecurityKey: "k"},
			lib:    "1",
			video:  "v",
			want:   "",
		},
		{
			name:   "missing video id",
			signer: BunnySigner{PullZone: "cdn.example.com"},
			lib:    "1",
			want:   "",
		},
		{
			name:   "unsigned without key",
			signer: BunnySigner{PullZone: "cdn.example.com"},
			lib:    "42",
			video:  "abc",
			want:   "https://cdn.example.com/hls/42/abc/playlist.m3u8",
		},
		{
			name:   "signed with default ttl",
			signer: BunnySigner{PullZone: "cdn.example.com", SecurityKey: "secret"},
			lib:    "42",
			video:  "abc",
			want: "https://cdn.example.com/hls/42/abc/playlist.m3u8?token=" +
				Token("secret", "/hls/42/abc/playlist.m3u8", "1700010800") + "&expires=1700010800",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.signer.PlaylistURL(tt.lib, tt.video, now))
		})
	}
}

func TestToken_URLSafe(t *testing.T) {
	for _, key := range []string{"a", "b", "secret", "another-key"} {
		token := Token(key, "/hls/1/2/playlist.m3u8", "1700000000")
		assert.NotContains(t, token, "=")
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "+")

		sum := sha256.Sum256([]byte(key + "/hls/1/2/playlist.m3u8" + "1700000000"))
		raw := base64.StdEncoding.EncodeToString(sum[:])
		expected := strings.TrimRight(raw, "=")
		expected = strings.ReplaceAll(strings.ReplaceAll(expected, "/", "_"), "+", "-")
		assert.Equal(t, expected, token)
	}
}
