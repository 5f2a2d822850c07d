package recognition

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Dump is the on-disk layout of a recognition result, as written by a
// faster-whisper helper with word timestamps enabled
type Dump struct {
	Language string    `json:"language" yaml:"language"`
	Duration float64   `json:"duration" yaml:"duration"`
	Segments []Segment `json:"segments" yaml:"segments"`
}

// FileEngine serves recognition results that were produced ahead of time
type FileEngine struct {
	logger    *zap.Logger
	inputPath string
}

// NewFileEngine creates a FileEngine. When inputPath is empty the dump is
// looked up next to the audio file, as <audio>.json.
func NewFileEngine(inputPath string, logger *zap.Logger) *FileEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileEngine{
		logger:    logger,
		inputPath: inputPath,
	}
}

// Recognize loads the segments recorded for audioPath
func (fe *FileEngine) Recognize(ctx context.Context, audioPath string) ([]Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := fe.inputPath
	if path == "" {
		if audioPath == "" {
			return nil, fmt.Errorf("no recognition input configured and no audio path given")
		}
		path = DumpPathFor(audioPath)
	}

	dump, err := LoadDump(path)
	if err != nil {
		return nil, err
	}

	fe.logger.Debug("loaded recognition dump",
		zap.String("path", path),
		zap.String("language", dump.Language),
		zap.Int("segments", len(dump.Segments)))

	return dump.Segments, nil
}

// DumpPathFor returns the default dump location for a media file, <media>.json
func DumpPathFor(mediaPath string) string {
	return strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + ".json"
}

// LoadDump reads a recognition dump, decoding YAML for .yaml/.yml files and JSON otherwise
func LoadDump(path string) (*Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recognition dump %s: %w", path, err)
	}

	var dump Dump
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &dump); err != nil {
			return nil, fmt.Errorf("failed to parse recognition dump %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &dump); err != nil {
			return nil, fmt.Errorf("failed to parse recognition dump %s: %w", path, err)
		}
	}

	return &dump, nil
}
