package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Media types accepted by NewResolver
const (
	TypeAudio = "audio"
	TypeVideo = "video"
)

// Audio is a usable audio file. Close removes anything created to produce it.
type Audio struct {
	Path    string
	cleanup func() error
}

// Close releases temporary files backing the audio, if any
func (a *Audio) Close() error {
	if a == nil || a.cleanup == nil {
		return nil
	}
	err := a.cleanup()
	a.cleanup = nil
	return err
}

// Resolver yields an audio file the recognition engine can read
type Resolver interface {
	Resolve(ctx context.Context) (*Audio, error)
}

// DirectAudio serves an audio document as is
type DirectAudio struct {
	path string
}

// NewDirectAudio creates a resolver for an audio file
func NewDirectAudio(path string) *DirectAudio {
	return &DirectAudio{path: path}
}

// Resolve checks the audio file exists and returns it
func (d *DirectAudio) Resolve(ctx context.Context) (*Audio, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		return nil, fmt.Errorf("audio document %s is not readable: %w", d.path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("audio document %s is a directory", d.path)
	}
	return &Audio{Path: d.path}, nil
}

// TranscodedFromVideo extracts 16 kHz mono audio from a video document with ffmpeg
type TranscodedFromVideo struct {
	videoPath  string
	documentID string
	tmpDir     string
	ffmpegPath string
	logger     *zap.Logger
}

// NewTranscodedFromVideo creates a resolver for a video file
func NewTranscodedFromVideo(videoPath, documentID, tmpDir, ffmpegPath string, logger *zap.Logger) *TranscodedFromVideo {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscodedFromVideo{
		videoPath:  videoPath,
		documentID: documentID,
		tmpDir:     tmpDir,
		ffmpegPath: ffmpegPath,
		logger:     logger,
	}
}

// Resolve runs ffmpeg into a fresh temporary directory that Audio.Close removes
func (t *TranscodedFromVideo) Resolve(ctx context.Context) (*Audio, error) {
	if _, err := os.Stat(t.videoPath); err != nil {
		return nil, fmt.Errorf("video document %s is not readable: %w", t.videoPath, err)
	}

	dir, err := os.MkdirTemp(t.tmpDir, "transcriptgraph-audio-")
	if err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	cleanup := func() error { return os.RemoveAll(dir) }

	out := filepath.Join(dir, t.documentID+"_16kHz.wav")
	args := []string{
		"-y",
		"-i", t.videoPath,
		"-ac", "1", // Mono channel
		"-ar", "16000", // Sample rate: 16kHz (required for Whisper)
		out,
	}

	t.logger.Info("transcoding video document to audio",
		zap.String("video_path", t.videoPath),
		zap.String("audio_path", out))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(stderr.String())
		if containsFFmpegError(output) {
			t.logger.Warn("ffmpeg stderr", zap.String("output", output))
		}
		_ = cleanup()
		return nil, fmt.Errorf("ffmpeg failed to transcode %s: %w", t.videoPath, err)
	}

	if _, err := os.Stat(out); err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("ffmpeg produced no audio at %s: %w", out, err)
	}

	t.logger.Debug("ffmpeg finished", zap.String("audio_path", out))
	return &Audio{Path: out, cleanup: cleanup}, nil
}

// containsFFmpegError checks if stderr output contains actual errors vs info
func containsFFmpegError(output string) bool {
	errorIndicators := []string{
		"Error opening",
		"Invalid data",
		"No such file",
		"Permission denied",
		"does not contain any stream",
	}

	for _, indicator := range errorIndicators {
		if strings.Contains(output, indicator) {
			return true
		}
	}
	return false
}

// Options configure NewResolver
type Options struct {
	DocumentID string
	TmpDir     string
	FFmpegPath string
	Logger     *zap.Logger
}

// NewResolver picks the resolver variant for the media type
func NewResolver(mediaType, path string, opts Options) (Resolver, error) {
	if path == "" {
		return nil, fmt.Errorf("media path cannot be empty")
	}

	switch mediaType {
	case TypeAudio:
		return NewDirectAudio(path), nil
	case TypeVideo:
		if opts.DocumentID == "" {
			return nil, fmt.Errorf("document id is required to transcode video")
		}
		return NewTranscodedFromVideo(path, opts.DocumentID, opts.TmpDir, opts.FFmpegPath, opts.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
}
