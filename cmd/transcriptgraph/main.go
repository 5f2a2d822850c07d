package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"transcriptgraph/internal/app"
)

const version = "1.0"

// options holds the parsed command line
type options struct {
	help       bool
	version    bool
	configPath string
	input      string
	media      string
	mediaType  string
	output     string
	documentID string
}

// main is the application entry point and orchestrator setup
func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	if opts.help {
		printHelp(os.Stdout)
		os.Exit(0)
	}

	if opts.version {
		printVersion(os.Stdout)
		os.Exit(0)
	}

	if err := runApplication(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags reads the command line into options
func parseFlags(args []string, errOut io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("transcriptgraph", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.BoolVar(&opts.help, "help", false, "Show help message")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.StringVar(&opts.configPath, "config", "", "Configuration file (overrides CONFIG_PATH)")
	fs.StringVar(&opts.input, "input", "", "Recognition dump to assemble (JSON or YAML)")
	fs.StringVar(&opts.media, "media", "", "Source media document")
	fs.StringVar(&opts.mediaType, "media-type", "", "Source media type: audio or video")
	fs.StringVar(&opts.output, "output", "", "Output file for the view, stdout when empty")
	fs.StringVar(&opts.documentID, "document", "", "Identifier of the source document")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// overrides maps the non-empty command line values to configuration keys
func (o options) overrides() map[string]string {
	values := map[string]string{
		"recognition.input_path": o.input,
		"source.media_path":      o.media,
		"source.media_type":      o.mediaType,
		"output.path":            o.output,
		"source.document_id":     o.documentID,
	}
	for key, value := range values {
		if value == "" {
			delete(values, key)
		}
	}
	return values
}

// runApplication contains the core application logic that can be tested
func runApplication(opts options) error {
	// Create structured logger for main
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("transcriptgraph starting up",
		zap.String("component", "main"),
		zap.String("version", version))

	configPath := opts.configPath
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	cfg, err := app.LoadConfiguration(configPath)
	if err != nil {
		logger.Error("Failed to load configuration",
			zap.Error(err),
			zap.String("component", "main"))
		return err
	}
	for key, value := range opts.overrides() {
		cfg.Set(key, value)
	}

	application, err := app.NewApplicationFromConfig(cfg)
	if err != nil {
		logger.Error("Failed to create application",
			zap.Error(err),
			zap.String("component", "main"))
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Set up context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received shutdown signal",
				zap.String("signal", sig.String()),
				zap.String("component", "main"))
			cancel()
		case <-ctx.Done():
		}
	}()

	runErr := application.Run(ctx)
	if runErr != nil {
		logger.Error("Application runtime error",
			zap.Error(runErr),
			zap.String("component", "main"))
	}

	if err := application.Shutdown(); err != nil {
		logger.Error("Error during application shutdown",
			zap.Error(err),
			zap.String("component", "main"))
		if runErr == nil {
			return fmt.Errorf("application shutdown error: %w", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("application runtime error: %w", runErr)
	}

	logger.Info("transcriptgraph finished successfully",
		zap.String("component", "main"))
	return nil
}

// printHelp displays command line usage information
func printHelp(w io.Writer) {
	fmt.Fprintln(w, "transcriptgraph - Speech Recognition Output to Annotation Graph")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    transcriptgraph [OPTIONS]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprintln(w, "    -help              Show this help message")
	fmt.Fprintln(w, "    -version           Show version information")
	fmt.Fprintln(w, "    -config <file>     Configuration file (default: $CONFIG_PATH, else environment)")
	fmt.Fprintln(w, "    -input <file>      Recognition dump (default: <media>.json)")
	fmt.Fprintln(w, "    -media <file>      Source audio or video document")
	fmt.Fprintln(w, "    -media-type <t>    audio or video")
	fmt.Fprintln(w, "    -document <id>     Source document identifier (default: d1)")
	fmt.Fprintln(w, "    -output <file>     Where to write the view (default: stdout)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CONFIGURATION:")
	fmt.Fprintln(w, "    Configuration is loaded from a YAML file or environment variables.")
	fmt.Fprintln(w, "    See config.example.yaml for available options.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "    transcriptgraph -media talk.wav -output talk.view.json")
	fmt.Fprintln(w, "    transcriptgraph -media show.mp4 -media-type video -input show.yaml")
	fmt.Fprintln(w, "    transcriptgraph -config config.yaml")
}

// printVersion displays version and build information
func printVersion(w io.Writer) {
	fmt.Fprintln(w, "transcriptgraph")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintln(w, "Architecture: Go 1.24 + FFmpeg + faster-whisper dumps")
}
