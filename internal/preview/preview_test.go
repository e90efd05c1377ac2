package preview

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/bmp"
)

type fakeStarter struct {
	calls [][]string
	err   error
}

func (f *fakeStarter) Start(_ context.Context, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.err
}

func TestOpenerCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos    string
		want    []string
		wantErr error
	}{
		{goos: "darwin", want: []string{"open", "/p.txt"}},
		{goos: "linux", want: []string{"xdg-open", "/p.txt"}},
		{goos: "windows", want: []string{"rundll32", "url.dll,FileProtocolHandler", "/p.txt"}},
		{goos: "plan9", wantErr: ErrUnsupportedPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			t.Parallel()

			name, args, err := NewOpener(WithGOOS(tt.goos)).Command("/p.txt")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Command() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if diff := cmp.Diff(tt.want, append([]string{name}, args...)); diff != "" {
				t.Errorf("Command() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenerOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "0-abbot.txt")
	if err := os.WriteFile(present, []byte("abbot"), 0o600); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "1-missing.txt")

	t.Run("reports missing files", func(t *testing.T) {
		t.Parallel()

		starter := &fakeStarter{}
		o := NewOpener(WithGOOS("darwin"), WithStarter(starter))

		res, err := o.Open(context.Background(), []string{present, missing})
		if err != nil {
			t.Fatal(err)
		}
		want := OpenResult{Opened: []string{present}, Missing: []string{missing}}
		if diff := cmp.Diff(want, res); diff != "" {
			t.Errorf("Open() mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([][]string{{"open", present}}, starter.calls); diff != "" {
			t.Errorf("started commands mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("launch failure", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("no viewer")
		o := NewOpener(WithGOOS("linux"), WithStarter(&fakeStarter{err: boom}))
		res, err := o.Open(context.Background(), []string{present})
		if !errors.Is(err, boom) {
			t.Fatalf("expected launch error, got %v", err)
		}
		if len(res.Opened) != 0 {
			t.Errorf("Opened = %v", res.Opened)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		t.Parallel()

		o := NewOpener(WithGOOS("plan9"), WithStarter(&fakeStarter{}))
		if _, err := o.Open(context.Background(), []string{present}); !errors.Is(err, ErrUnsupportedPlatform) {
			t.Errorf("expected ErrUnsupportedPlatform, got %v", err)
		}
	})
}

func testImage(w, h int) *image.Paletted {
	return image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.White, color.Black})
}

// exifBlock is a little-endian TIFF header with one IFD holding an
// Orientation tag.
func exifBlock(orientation uint16) []byte {
	var b bytes.Buffer
	b.WriteString("II")
	_ = binary.Write(&b, binary.LittleEndian, uint16(42))
	_ = binary.Write(&b, binary.LittleEndian, uint32(8))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, uint16(0x0112))
	_ = binary.Write(&b, binary.LittleEndian, uint16(3))
	_ = binary.Write(&b, binary.LittleEndian, uint32(1))
	_ = binary.Write(&b, binary.LittleEndian, orientation)
	_ = binary.Write(&b, binary.LittleEndian, uint16(0))
	_ = binary.Write(&b, binary.LittleEndian, uint32(0))
	return b.Bytes()
}

func TestInspect(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name string, data []byte) string {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			t.Fatal(err)
		}
		return p
	}

	var gifBuf, pngBuf, bmpBuf bytes.Buffer
	if err := gif.Encode(&gifBuf, testImage(40, 60), nil); err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(&pngBuf, testImage(7, 9)); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpBuf, testImage(3, 2)); err != nil {
		t.Fatal(err)
	}
	rotated := append(bytes.Clone(pngBuf.Bytes()), exifBlock(6)...)

	tests := []struct {
		name string
		file string
		want Info
	}{
		{
			name: "gif",
			file: write("0-a.gif", gifBuf.Bytes()),
			want: Info{MIME: "image/gif", Format: "gif", Width: 40, Height: 60},
		},
		{
			name: "png",
			file: write("1-b.png", pngBuf.Bytes()),
			want: Info{MIME: "image/png", Format: "png", Width: 7, Height: 9},
		},
		{
			name: "bmp",
			file: write("2-c.bmp", bmpBuf.Bytes()),
			want: Info{MIME: "image/bmp", Format: "bmp", Width: 3, Height: 2},
		},
		{
			name: "exif orientation",
			file: write("3-d.png", rotated),
			want: Info{MIME: "image/png", Format: "png", Width: 7, Height: 9, Orientation: 6},
		},
		{
			name: "text file",
			file: write("4-e.txt", []byte("ord | betydning\n")),
			want: Info{MIME: "text/plain; charset=utf-8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Inspect(tt.file)
			if err != nil {
				t.Fatal(err)
			}
			tt.want.Path = tt.file
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Inspect() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := Inspect(filepath.Join(dir, "missing.gif")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestInfoRotated(t *testing.T) {
	t.Parallel()

	if (Info{Orientation: 0}).Rotated() || (Info{Orientation: 1}).Rotated() {
		t.Error("orientation 0 and 1 are upright")
	}
	if !(Info{Orientation: 8}).Rotated() {
		t.Error("orientation 8 is rotated")
	}
}

func TestImagePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"0-abbot.gif", "1-ad.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		id      string
		want    string
		wantErr error
	}{
		{id: "0-abbot.txt", want: filepath.Join(dir, "0-abbot.gif")},
		{id: "1-ad.txt", want: filepath.Join(dir, "1-ad.png")},
		{id: "2-none.txt", wantErr: ErrNoImage},
	}

	for _, tt := range tests {
		got, err := ImagePath(dir, tt.id)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ImagePath(%q) error = %v, want %v", tt.id, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ImagePath(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
