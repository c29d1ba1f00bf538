// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/formats"
	"github.com/ik5/audwave/internal/logging"
	"github.com/ik5/audwave/waveform"
)

// Result of a finished decode.
type Result struct {
	DurationUs int64
	Channels   int
	SampleRate int
	Gains      []int
	// Err is only set on results delivered by DecodeAsync.
	Err error
}

// Listener receives the outcome of a decode. OnStartDecode comes once before
// any gain is produced. Then exactly one of OnFinishDecode or OnError
// follows.
type Listener interface {
	OnStartDecode(durationUs int64, channels, sampleRate int)
	OnFinishDecode(res Result)
	OnError(err error)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Start  func(durationUs int64, channels, sampleRate int)
	Finish func(res Result)
	Error  func(err error)
}

func (f ListenerFuncs) OnStartDecode(durationUs int64, channels, sampleRate int) {
	if f.Start != nil {
		f.Start(durationUs, channels, sampleRate)
	}
}

func (f ListenerFuncs) OnFinishDecode(res Result) {
	if f.Finish != nil {
		f.Finish(res)
	}
}

func (f ListenerFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// Backend names the codec family used for a decode.
type Backend string

const (
	BackendNative Backend = "native"
	BackendFFmpeg Backend = "ffmpeg"
	// BackendAuto uses the native codec when the registry has a decoder for
	// the extension and ffmpeg otherwise.
	BackendAuto Backend = "auto"
)

type (
	CodecFactory     func(path string, track Track) (Codec, error)
	ExtractorFactory func(ctx context.Context, path string) (Extractor, error)
)

// StreamingDecoder turns audio files into gain series.
type StreamingDecoder struct {
	registry     *audio.Registry
	backend      Backend
	policy       waveform.Policy
	log          logging.Logger
	ffmpegPath   string
	ffprobePath  string
	cancelable   bool
	newCodec     CodecFactory
	newExtractor ExtractorFactory
}

type Option func(*StreamingDecoder)

func WithRegistry(r *audio.Registry) Option {
	return func(d *StreamingDecoder) { d.registry = r }
}

func WithBackend(b Backend) Option {
	return func(d *StreamingDecoder) { d.backend = b }
}

func WithPolicy(p waveform.Policy) Option {
	return func(d *StreamingDecoder) { d.policy = p }
}

func WithLogger(l logging.Logger) Option {
	return func(d *StreamingDecoder) { d.log = l }
}

// WithFFmpeg sets the ffmpeg and ffprobe binaries. Empty values keep the
// ones found on PATH.
func WithFFmpeg(ffmpeg, ffprobe string) Option {
	return func(d *StreamingDecoder) {
		d.ffmpegPath = ffmpeg
		d.ffprobePath = ffprobe
	}
}

// WithCodecFactory replaces codec construction.
func WithCodecFactory(f CodecFactory) Option {
	return func(d *StreamingDecoder) { d.newCodec = f }
}

// WithExtractorFactory replaces extractor construction.
func WithExtractorFactory(f ExtractorFactory) Option {
	return func(d *StreamingDecoder) { d.newExtractor = f }
}

// WithContextCancel lets a cancelled context abort a running decode between
// buffers. Without it a started decode always runs to completion.
func WithContextCancel() Option {
	return func(d *StreamingDecoder) { d.cancelable = true }
}

func New(opts ...Option) *StreamingDecoder {
	d := &StreamingDecoder{
		backend: BackendAuto,
		policy:  waveform.DefaultPolicy(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.registry == nil {
		d.registry = formats.Default()
	}
	if d.log == nil {
		d.log = logging.Nop()
	}

	return d
}

func (d *StreamingDecoder) useNative(path string) bool {
	switch d.backend {
	case BackendNative:
		return true
	case BackendFFmpeg:
		return false
	}

	_, ok := d.registry.Get(filepath.Ext(path))
	return ok
}

func (d *StreamingDecoder) extractor(ctx context.Context, path string) (Extractor, error) {
	if d.newExtractor != nil {
		return d.newExtractor(ctx, path)
	}
	if d.useNative(path) {
		return NewFileExtractor(d.registry, path)
	}
	return NewProbeExtractor(ctx, d.ffprobePath, path)
}

// Tracks lists the tracks of path as the decoder's extractor sees them.
func (d *StreamingDecoder) Tracks(ctx context.Context, path string) ([]Track, error) {
	ex, err := d.extractor(ctx, path)
	if err != nil {
		return nil, err
	}
	defer ex.Close()

	return ex.Tracks(), nil
}

func (d *StreamingDecoder) codec(path string, track Track) (Codec, error) {
	if d.newCodec != nil {
		return d.newCodec(path, track)
	}
	if !d.useNative(path) {
		return NewFFmpegCodec(d.ffmpegPath), nil
	}

	dec, ok := d.registry.Get(filepath.Ext(path))
	if !ok {
		return nil, fmt.Errorf("%s: %w", filepath.Ext(path), ErrNoDecoder)
	}
	return NewNativeCodec(dec), nil
}

// Decode runs a decode on the calling goroutine and reports through l as
// well as the return values. An effective feeding failure is retried once
// from scratch with simple feeding; only the outcome of the retry reaches
// l.
func (d *StreamingDecoder) Decode(ctx context.Context, path string, l Listener) (Result, error) {
	res, err := d.decode(ctx, path, l)
	if err != nil {
		l.OnError(err)
		return Result{}, err
	}

	l.OnFinishDecode(res)
	return res, nil
}

// DecodeAsync runs Decode on a new goroutine. The channel yields exactly one
// Result and is then closed.
func (d *StreamingDecoder) DecodeAsync(ctx context.Context, path string, l Listener) <-chan Result {
	ch := make(chan Result, 1)

	go func() {
		defer close(ch)

		res, err := d.Decode(ctx, path, l)
		res.Err = err
		ch <- res
	}()

	return ch
}

func (d *StreamingDecoder) decode(ctx context.Context, path string, l Listener) (Result, error) {
	log := d.log.With("file", filepath.Base(path))

	if !formats.IsDecodable(path) {
		return Result{}, fmt.Errorf("%s: %w", path, ErrUnsupportedExtension)
	}
	if _, err := os.Stat(path); err != nil {
		return Result{}, fmt.Errorf("%w", err)
	}

	began := time.Now()
	defer func() { log.Benchmark("decode", time.Since(began)) }()

	started := false
	onStart := func(t Track) {
		if started {
			return
		}
		started = true
		l.OnStartDecode(t.DurationUs, t.Channels, t.SampleRate)
	}

	res, err := d.attempt(ctx, path, Effective, onStart, log)

	var retry *errRetry
	if errors.As(err, &retry) {
		log.Warnf("effective feeding failed, retrying with simple feeding: %v", retry.err)

		res, err = d.attempt(ctx, path, Simple, onStart, log)
		if err != nil {
			var again *errRetry
			if errors.As(err, &again) {
				err = again.err
			}
			return Result{}, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
		}
	}
	if err != nil {
		return Result{}, err
	}

	log.Debugf("decoded %d gains", len(res.Gains))
	return res, nil
}

func (d *StreamingDecoder) attempt(ctx context.Context, path string, mode FeedMode, onStart func(Track), log logging.Logger) (Result, error) {
	ex, err := d.extractor(ctx, path)
	if err != nil {
		return Result{}, err
	}

	track, err := selectAudioTrack(ex)
	if err != nil {
		ex.Close()
		return Result{}, err
	}

	codec, err := d.codec(path, track)
	if err != nil {
		ex.Close()
		return Result{}, err
	}

	j := &job{
		ex:         ex,
		track:      track,
		codec:      codec,
		mode:       mode,
		policy:     d.policy,
		cancelable: d.cancelable,
		log:        log,
		onStart:    onStart,
	}

	return j.run(ctx)
}
