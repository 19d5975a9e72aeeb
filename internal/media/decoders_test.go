package media

import (
	"context"
	"errors"
	"image"
	"testing"

	"photo-library/internal/catalog"
)

type stubDecoder struct {
	name     string
	supports bool
	err      error
	called   bool
}

func (s *stubDecoder) Name() string               { return s.name }
func (s *stubDecoder) Supports(catalog.Kind) bool { return s.supports }
func (s *stubDecoder) Decode(context.Context, string, int, int) (image.Image, error) {
	s.called = true
	if s.err != nil {
		return nil, s.err
	}
	return image.NewGray(image.Rect(0, 0, 4, 4)), nil
}

func TestDecodeFallsThroughInOrder(t *testing.T) {
	unsupported := &stubDecoder{name: "vips"}
	failing := &stubDecoder{name: "imaging", supports: true, err: errors.New("bad header")}
	working := &stubDecoder{name: "ffmpeg", supports: true}
	never := &stubDecoder{name: "imaging", supports: true}

	img, err := decode(context.Background(), []Decoder{unsupported, failing, working, never}, catalog.KindImage, "x.jpg", 8, 8)
	if err != nil || img == nil {
		t.Fatalf("decode() = %v, %v", img, err)
	}
	if unsupported.called {
		t.Error("unsupported decoder was called")
	}
	if !failing.called || !working.called {
		t.Error("decoders were not tried in order")
	}
	if never.called {
		t.Error("decoder after the first success was called")
	}
}

func TestDecodeReportsUndecodable(t *testing.T) {
	decoders := []Decoder{
		&stubDecoder{name: "imaging", supports: true, err: errors.New("bad header")},
		&stubDecoder{name: "ffmpeg", supports: true, err: errors.New("no frames")},
	}

	_, err := decode(context.Background(), decoders, catalog.KindVideo, "x.mp4", 8, 8)
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("decode() error = %v, want ErrUndecodable", err)
	}
}

func TestDecodeWithNoCapableDecoder(t *testing.T) {
	_, err := decode(context.Background(), []Decoder{&stubDecoder{name: "vips"}}, catalog.KindImage, "x.jpg", 8, 8)
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("decode() error = %v, want ErrUndecodable", err)
	}
}

func TestDefaultDecodersOrder(t *testing.T) {
	want := []string{"vips", "imaging", "ffmpeg"}
	got := DefaultDecoders()
	if len(got) != len(want) {
		t.Fatalf("DefaultDecoders() has %d entries, want %d", len(got), len(want))
	}
	for i, d := range got {
		if d.Name() != want[i] {
			t.Errorf("decoder %d = %s, want %s", i, d.Name(), want[i])
		}
	}
}
