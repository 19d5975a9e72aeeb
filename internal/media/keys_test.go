package media

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"testing"

	"photo-library/internal/catalog"
)

func TestQualityPercent(t *testing.T) {
	tests := []struct {
		quality float64
		want    int
	}{
		{0.5, 50},
		{0.125, 13},
		{0, 0},
		{1, 100},
		{-0.2, 0},
		{1.7, 100},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := QualityPercent(tt.quality); got != tt.want {
			t.Errorf("QualityPercent(%v) = %d, want %d", tt.quality, got, tt.want)
		}
	}
}

func TestGuessExtension(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"", ".dat"},
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"video/mp4", ".mp4"},
		{"video/quicktime", ".mov"},
		{"image/webp", ".webp"},
		{"video/x-matroska", ".x-matroska"},
		{"weird", ".weird"},
	}
	for _, tt := range tests {
		if got := GuessExtension(tt.mime); got != tt.want {
			t.Errorf("GuessExtension(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestKeyFileName(t *testing.T) {
	id := catalog.NewAssetID(catalog.KindImage, 42)
	sum := sha256.Sum256([]byte("image:42"))
	hash := hex.EncodeToString(sum[:])

	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"Default thumbnail", ThumbnailKey(id, 512, 384, 0.5), hash + "_512x384_q50.jpg"},
		{"Full quality thumbnail", ThumbnailKey(id, 100, 100, 1), hash + "_100x100_q100.jpg"},
		{"Full JPEG", FullKey(id, "image/jpeg"), hash + ".jpg"},
		{"Full without mime", FullKey(id, ""), hash + ".dat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.FileName(); got != tt.want {
				t.Errorf("FileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyFileNameDistinguishesAssets(t *testing.T) {
	a := ThumbnailKey(catalog.NewAssetID(catalog.KindImage, 7), 64, 64, 0.5).FileName()
	b := ThumbnailKey(catalog.NewAssetID(catalog.KindVideo, 7), 64, 64, 0.5).FileName()
	if a == b {
		t.Errorf("image:7 and video:7 share cache name %q", a)
	}

	q1 := ThumbnailKey(catalog.NewAssetID(catalog.KindImage, 7), 64, 64, 0.5).FileName()
	q2 := ThumbnailKey(catalog.NewAssetID(catalog.KindImage, 7), 64, 64, 0.8).FileName()
	if q1 == q2 {
		t.Errorf("different qualities share cache name %q", q1)
	}
}
