package composer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"reelsmaker/internal/audio"
	"reelsmaker/internal/domain"
)

// commandRunner runs a process to completion, feeding stdin and returning stdout.
type commandRunner func(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error)

func defaultCommandRunner(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// FFmpeg decodes narration audio and encodes reels with the ffmpeg binary.
type FFmpeg struct {
	path       string
	sampleRate int
	run        commandRunner
	lookPath   func(string) (string, error)
}

// NewFFmpeg returns an adapter for the binary at path ("ffmpeg" resolves via PATH).
func NewFFmpeg(path string) *FFmpeg {
	if strings.TrimSpace(path) == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{
		path:       path,
		sampleRate: audio.DefaultSampleRate,
		run:        defaultCommandRunner,
		lookPath:   exec.LookPath,
	}
}

// Check reports ErrCaptureUnsupported when the binary cannot be found.
func (f *FFmpeg) Check() error {
	if _, err := f.lookPath(f.path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCaptureUnsupported, err)
	}
	return nil
}

// Decode turns an encoded narration (mp3) into stereo PCM.
func (f *FFmpeg) Decode(ctx context.Context, encoded []byte) (*audio.Buffer, error) {
	if len(encoded) == 0 {
		return nil, errors.New("ffmpeg: empty audio")
	}
	out, err := f.run(ctx, bytes.NewReader(encoded), f.path,
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "f32le", "-acodec", "pcm_f32le",
		"-ac", "2", "-ar", strconv.Itoa(f.sampleRate),
		"pipe:1",
	)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: decode audio: %w", err)
	}
	return audio.ReadF32LE(out, 2, f.sampleRate)
}

// Start launches a video-only encode fed with raw RGBA frames on stdin.
func (f *FFmpeg) Start(ctx context.Context, opts RecordOptions) (Recording, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("ffmpeg: ensure work dir: %w", err)
	}
	videoPath := filepath.Join(opts.Dir, "video-only.webm")
	cmd := exec.CommandContext(ctx, f.path, videoArgs(opts, videoPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg: start encoder: %w", err)
	}
	return &ffmpegRecording{
		ff:        f,
		opts:      opts,
		cmd:       cmd,
		stdin:     stdin,
		frames:    bufio.NewWriterSize(stdin, opts.Width*opts.Height*4),
		stderr:    &stderr,
		videoPath: videoPath,
	}, nil
}

func videoArgs(opts RecordOptions, output string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "rawvideo", "-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.Itoa(opts.FPS),
		"-i", "pipe:0",
		"-an",
		"-c:v", "libvpx-vp9", "-b:v", strconv.Itoa(opts.VideoBitrate),
		"-pix_fmt", "yuv420p",
		"-deadline", "realtime", "-cpu-used", "8",
		output,
	}
}

func muxArgs(videoPath, audioPath string, sampleRate int, output string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", videoPath,
		"-f", "f32le", "-ar", strconv.Itoa(sampleRate), "-ac", "2", "-i", audioPath,
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "libopus", "-b:a", "128k",
		output,
	}
}

type ffmpegRecording struct {
	ff        *FFmpeg
	opts      RecordOptions
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	frames    *bufio.Writer
	stderr    *bytes.Buffer
	videoPath string
	closed    bool
}

func (r *ffmpegRecording) WriteFrame(frame *image.RGBA) error {
	b := frame.Bounds()
	if b.Dx() != r.opts.Width || b.Dy() != r.opts.Height {
		return fmt.Errorf("ffmpeg: frame is %dx%d, want %dx%d", b.Dx(), b.Dy(), r.opts.Width, r.opts.Height)
	}
	row := 4 * r.opts.Width
	for y := 0; y < r.opts.Height; y++ {
		off := y * frame.Stride
		if _, err := r.frames.Write(frame.Pix[off : off+row]); err != nil {
			return fmt.Errorf("ffmpeg: write frame: %w", err)
		}
	}
	return nil
}

func (r *ffmpegRecording) closeVideo() error {
	if r.closed {
		return nil
	}
	r.closed = true
	flushErr := r.frames.Flush()
	closeErr := r.stdin.Close()
	if err := r.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: encoder: %w: %s", err, strings.TrimSpace(r.stderr.String()))
	}
	return errors.Join(flushErr, closeErr)
}

// Finish closes the video stream and muxes in the mixed soundtrack.
func (r *ffmpegRecording) Finish(ctx context.Context, mix *audio.Buffer) (string, error) {
	if err := r.closeVideo(); err != nil {
		return "", err
	}
	audioPath := filepath.Join(r.opts.Dir, "soundtrack.f32")
	f, err := os.Create(audioPath)
	if err != nil {
		return "", fmt.Errorf("ffmpeg: create soundtrack: %w", err)
	}
	if err := mix.WriteF32LE(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("ffmpeg: close soundtrack: %w", err)
	}

	output := filepath.Join(r.opts.Dir, "reel.webm")
	if _, err := r.ff.run(ctx, nil, r.ff.path, muxArgs(r.videoPath, audioPath, mix.SampleRate, output)...); err != nil {
		return "", fmt.Errorf("ffmpeg: mux: %w", err)
	}
	_ = os.Remove(audioPath)
	_ = os.Remove(r.videoPath)
	return output, nil
}

// Abort stops the encoder and discards its output.
func (r *ffmpegRecording) Abort() {
	if r.closed {
		return
	}
	r.closed = true
	_ = r.stdin.Close()
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	_ = r.cmd.Wait()
	_ = os.Remove(r.videoPath)
}
