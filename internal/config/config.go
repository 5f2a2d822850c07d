package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Configuration provides type-safe access to application settings
type Configuration struct {
	viper *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("recognition.input_path", "")
	v.SetDefault("source.document_id", "d1")
	v.SetDefault("source.media_path", "")
	v.SetDefault("source.media_type", "audio")
	v.SetDefault("output.path", "")
	v.SetDefault("transcript.language", "en")
	v.SetDefault("transcript.separator", " ")
	v.SetDefault("transcript.view_id", "v_0")
	v.SetDefault("media.ffmpeg_path", "ffmpeg")
	v.SetDefault("media.tmp_dir", "")
	v.SetDefault("run.timeout_sec", 600)
	v.SetDefault("log.level", "info")
	v.SetDefault("debug_mode", false)
}

// NewConfiguration creates a new Configuration instance with default settings
func NewConfiguration() *Configuration {
	v := viper.New()
	setDefaults(v)
	return &Configuration{viper: v}
}

// NewConfigurationFromFile creates a Configuration instance from a config file
func NewConfigurationFromFile(configFile string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	return &Configuration{viper: v}, nil
}

// NewConfigurationFromEnv creates a Configuration instance that reads from environment variables
func NewConfigurationFromEnv() (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TRANSCRIPTGRAPH")
	v.AutomaticEnv()

	bindings := map[string]string{
		"recognition.input_path": "RECOGNITION_INPUT",
		"source.document_id":     "SOURCE_DOCUMENT_ID",
		"source.media_path":      "SOURCE_MEDIA_PATH",
		"source.media_type":      "SOURCE_MEDIA_TYPE",
		"output.path":            "OUTPUT_PATH",
		"transcript.language":    "TRANSCRIPT_LANGUAGE",
		"media.ffmpeg_path":      "FFMPEG_PATH",
		"media.tmp_dir":          "MEDIA_TMP_DIR",
		"run.timeout_sec":        "RUN_TIMEOUT_SEC",
		"log.level":              "LOG_LEVEL",
		"debug_mode":             "DEBUG_MODE",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s to %s: %w", key, env, err)
		}
	}

	return &Configuration{viper: v}, nil
}

// GetRecognitionInputPath returns the path of the recognition dump, empty to derive it from the media path
func (c *Configuration) GetRecognitionInputPath() string {
	return c.viper.GetString("recognition.input_path")
}

// GetSourceDocumentID returns the identifier of the source media document
func (c *Configuration) GetSourceDocumentID() string {
	return c.viper.GetString("source.document_id")
}

// GetSourceMediaPath returns the path of the source audio or video file
func (c *Configuration) GetSourceMediaPath() string {
	return c.viper.GetString("source.media_path")
}

// GetSourceMediaType returns "audio" or "video"
func (c *Configuration) GetSourceMediaType() string {
	return c.viper.GetString("source.media_type")
}

// GetOutputPath returns where the View is written, empty for stdout
func (c *Configuration) GetOutputPath() string {
	return c.viper.GetString("output.path")
}

// GetTranscriptLanguage returns the language tag of the produced TextDocument
func (c *Configuration) GetTranscriptLanguage() string {
	return c.viper.GetString("transcript.language")
}

// GetTranscriptSeparator returns the leading separator stripped from recognized text
func (c *Configuration) GetTranscriptSeparator() string {
	return c.viper.GetString("transcript.separator")
}

// GetViewID returns the identifier given to the produced View
func (c *Configuration) GetViewID() string {
	return c.viper.GetString("transcript.view_id")
}

// GetFFmpegPath returns the ffmpeg binary used for video transcoding
func (c *Configuration) GetFFmpegPath() string {
	return c.viper.GetString("media.ffmpeg_path")
}

// GetMediaTmpDir returns the directory for transcoded audio, empty for the system default
func (c *Configuration) GetMediaTmpDir() string {
	return c.viper.GetString("media.tmp_dir")
}

// GetRunTimeoutSec returns the bound on one recognize-and-assemble run
func (c *Configuration) GetRunTimeoutSec() int {
	return c.viper.GetInt("run.timeout_sec")
}

// GetLogLevel returns the configured log level name
func (c *Configuration) GetLogLevel() string {
	return c.viper.GetString("log.level")
}

// GetDebugMode returns whether debug mode is enabled
func (c *Configuration) GetDebugMode() bool {
	return c.viper.GetBool("debug_mode")
}

// SetDebugMode enables or disables debug mode
func (c *Configuration) SetDebugMode(enabled bool) {
	c.viper.Set("debug_mode", enabled)
}

// Set overrides a single setting, used for command line flags
func (c *Configuration) Set(key string, value interface{}) {
	c.viper.Set(key, value)
}

// Validate checks settings that would make every run fail
func (c *Configuration) Validate() error {
	if c.GetSourceDocumentID() == "" {
		return fmt.Errorf("source.document_id cannot be empty")
	}

	switch c.GetSourceMediaType() {
	case "audio", "video":
	default:
		return fmt.Errorf("source.media_type must be audio or video, got %q", c.GetSourceMediaType())
	}

	if c.GetRunTimeoutSec() <= 0 {
		return fmt.Errorf("run.timeout_sec must be positive")
	}

	return nil
}
