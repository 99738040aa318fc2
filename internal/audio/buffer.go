// Package audio holds the planar PCM buffers shared by the music generator,
// the voice decoder and the mixer.
package audio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// DefaultSampleRate matches the rate ffmpeg is asked to decode to.
const DefaultSampleRate = 48000

// Buffer is planar float32 PCM. Every channel has the same length.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// NewBuffer allocates a silent buffer.
func NewBuffer(channels, frames, sampleRate int) *Buffer {
	b := &Buffer{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for i := range b.Channels {
		b.Channels[i] = make([]float32, frames)
	}
	return b
}

// Frames returns the number of samples per channel.
func (b *Buffer) Frames() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration is the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Seconds is Duration expressed as a float.
func (b *Buffer) Seconds() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Source is one input of a Mix: a buffer played from t=0 at the given gain.
type Source struct {
	Buffer *Buffer
	Gain   float32
}

// Mix sums the sources into a stereo buffer of exactly frames samples.
// Mono sources are spread to both channels; sources shorter than frames
// fall silent, longer ones are truncated. The sum is clipped to [-1, 1].
func Mix(frames, sampleRate int, sources ...Source) (*Buffer, error) {
	if frames < 0 {
		return nil, errors.New("audio: negative frame count")
	}
	out := NewBuffer(2, frames, sampleRate)
	for i, src := range sources {
		if src.Buffer == nil || len(src.Buffer.Channels) == 0 {
			continue
		}
		if src.Buffer.SampleRate != sampleRate {
			return nil, fmt.Errorf("audio: source %d sample rate %d, want %d", i, src.Buffer.SampleRate, sampleRate)
		}
		for ch := range out.Channels {
			in := src.Buffer.Channels[min(ch, len(src.Buffer.Channels)-1)]
			dst := out.Channels[ch]
			n := min(len(in), frames)
			for j := 0; j < n; j++ {
				dst[j] += in[j] * src.Gain
			}
		}
	}
	for _, ch := range out.Channels {
		for j, v := range ch {
			ch[j] = max(-1, min(1, v))
		}
	}
	return out, nil
}

// WriteF32LE writes the buffer interleaved as little-endian float32, the
// layout ffmpeg reads with -f f32le.
func (b *Buffer) WriteF32LE(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var scratch [4]byte
	frames := b.Frames()
	for i := 0; i < frames; i++ {
		for _, ch := range b.Channels {
			binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(ch[i]))
			if _, err := bw.Write(scratch[:]); err != nil {
				return fmt.Errorf("audio: write pcm: %w", err)
			}
		}
	}
	return bw.Flush()
}

// ReadF32LE parses interleaved little-endian float32 samples.
func ReadF32LE(data []byte, channels, sampleRate int) (*Buffer, error) {
	if channels <= 0 {
		return nil, errors.New("audio: channels must be positive")
	}
	stride := 4 * channels
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("audio: %d bytes is not a whole number of %d-channel frames", len(data), channels)
	}
	frames := len(data) / stride
	b := NewBuffer(channels, frames, sampleRate)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := i*stride + ch*4
			b.Channels[ch][i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
		}
	}
	return b, nil
}
