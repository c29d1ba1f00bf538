package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// stubDecoder is a test decoder implementation
type stubDecoder struct {
	name string
}

func (d *stubDecoder) Decode(r io.Reader) (Source, error) {
	return nil, errors.New("not implemented")
}

// stubProber reports a fixed Info and records how much it read
type stubProber struct {
	info Info
	err  error
}

func (p *stubProber) Probe(r io.ReadSeeker) (Info, error) {
	if p.err != nil {
		return Info{}, p.err
	}
	return p.info, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &stubDecoder{name: "wav"}

	registry.Register(Format{Name: "wav", MIME: "audio/wav", Extensions: []string{"wav", "wave"}, Decoder: decoder})

	for _, ext := range []string{"wav", ".wav", "WAV", "wave"} {
		got, ok := registry.Get(ext)
		if !ok {
			t.Fatalf("Registry.Get(%q) failed to retrieve registered decoder", ext)
		}
		if got != decoder {
			t.Errorf("Registry.Get(%q) returned different decoder instance", ext)
		}
	}
}

func TestRegistry_GetNonExistent(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	if _, ok := registry.Get("nonexistent"); ok {
		t.Error("Registry.Get() returned ok=true for non-existent format")
	}
}

func TestRegistry_GetWithoutDecoder(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(Format{Name: "probe-only", Extensions: []string{"po"}, Prober: &stubProber{}})

	if _, ok := registry.Get("po"); ok {
		t.Error("Registry.Get() returned ok=true for a format without decoder")
	}
	if _, ok := registry.Lookup("po"); !ok {
		t.Error("Registry.Lookup() returned ok=false for registered format")
	}
}

func TestRegistry_ByMIME(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(Format{Name: "mp3", MIME: "audio/mpeg", Extensions: []string{"mp3"}})
	registry.Register(Format{Name: "ogg", MIME: "audio/ogg", Extensions: []string{"ogg", "oga"}})

	tests := []struct {
		mime   string
		want   string
		wantOK bool
	}{
		{"audio/mpeg", "mp3", true},
		{"AUDIO/OGG", "ogg", true},
		{"audio/flac", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			t.Parallel()

			got, ok := registry.ByMIME(tt.mime)
			if ok != tt.wantOK {
				t.Fatalf("Registry.ByMIME(%q) ok = %v, want %v", tt.mime, ok, tt.wantOK)
			}
			if got.Name != tt.want {
				t.Errorf("Registry.ByMIME(%q) = %q, want %q", tt.mime, got.Name, tt.want)
			}
		})
	}
}

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(Format{Name: "wav", Extensions: []string{"wav"}})

	tests := []struct {
		path   string
		wantOK bool
	}{
		{"/tmp/rec.wav", true},
		{"/tmp/REC.WAV", true},
		{"/tmp/rec", false},
		{"/tmp/rec.mp3", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if _, ok := registry.ForPath(tt.path); ok != tt.wantOK {
				t.Errorf("Registry.ForPath(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
		})
	}
}

func TestRegistry_Overwrite(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder1 := &stubDecoder{name: "first"}
	decoder2 := &stubDecoder{name: "second"}

	registry.Register(Format{Name: "a", Extensions: []string{"wav"}, Decoder: decoder1})
	registry.Register(Format{Name: "b", Extensions: []string{"wav"}, Decoder: decoder2})

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed after overwrite")
	}

	if got != decoder2 {
		t.Error("Registry.Get() did not return the overwritten decoder")
	}
}

func TestRegistry_Extensions(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(Format{Name: "ogg", Extensions: []string{"ogg", "oga"}})
	registry.Register(Format{Name: "aac", Extensions: []string{"AAC"}})

	got := registry.Extensions()
	want := []string{"aac", "oga", "ogg"}

	if len(got) != len(want) {
		t.Fatalf("Extensions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Extensions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &stubDecoder{name: "test"}
	format := Format{Name: "test", Extensions: []string{"fmt"}, Decoder: decoder}

	done := make(chan bool)
	for range 10 {
		go func() {
			registry.Register(format)
			done <- true
		}()
	}

	for range 10 {
		go func() {
			_, _ = registry.Get("fmt")
			done <- true
		}()
	}

	for range 20 {
		<-done
	}

	got, ok := registry.Get("fmt")
	if !ok {
		t.Error("Registry.Get() failed after concurrent operations")
	}
	if got != decoder {
		t.Error("Registry returned wrong decoder after concurrent operations")
	}
}

func TestNormalizeExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{".MP3", "mp3"},
		{"wav", "wav"},
		{"", ""},
		{".3GPP", "3gpp"},
	}

	for _, tt := range tests {
		if got := NormalizeExt(tt.in); got != tt.want {
			t.Errorf("NormalizeExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProbeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "clip.stub")
	if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
		t.Fatal(err)
	}

	want := Info{SampleRate: 8000, Channels: 1, Duration: 1500 * time.Millisecond}

	registry := NewRegistry()
	registry.Register(Format{Name: "stub", Extensions: []string{"stub"}, Prober: &stubProber{info: want}})
	registry.Register(Format{Name: "noprobe", Extensions: []string{"np"}})

	got, err := ProbeFile(registry, path)
	if err != nil {
		t.Fatalf("ProbeFile() error = %v", err)
	}
	if got != want {
		t.Errorf("ProbeFile() = %+v, want %+v", got, want)
	}

	if _, err := ProbeFile(registry, filepath.Join(dir, "clip.xyz")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ProbeFile(unknown) error = %v, want ErrUnknownFormat", err)
	}

	if _, err := ProbeFile(registry, filepath.Join(dir, "clip.np")); !errors.Is(err, ErrNoProber) {
		t.Errorf("ProbeFile(no prober) error = %v, want ErrNoProber", err)
	}

	if _, err := ProbeFile(registry, filepath.Join(dir, "missing.stub")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ProbeFile(missing) error = %v, want os.ErrNotExist", err)
	}
}

// BenchmarkRegistry_Get benchmarks retrieving decoders
func BenchmarkRegistry_Get(b *testing.B) {
	registry := NewRegistry()
	registry.Register(Format{Name: "wav", Extensions: []string{"wav"}, Decoder: &stubDecoder{}})

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		_, _ = registry.Get("wav")
	}
}

// BenchmarkRegistry_ByMIME benchmarks MIME lookups over several formats
func BenchmarkRegistry_ByMIME(b *testing.B) {
	registry := NewRegistry()
	registry.Register(Format{Name: "wav", MIME: "audio/wav", Extensions: []string{"wav"}})
	registry.Register(Format{Name: "mp3", MIME: "audio/mpeg", Extensions: []string{"mp3"}})
	registry.Register(Format{Name: "ogg", MIME: "audio/ogg", Extensions: []string{"ogg"}})

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		_, _ = registry.ByMIME("audio/ogg")
	}
}
