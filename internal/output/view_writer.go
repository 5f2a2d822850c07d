package output

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"transcriptgraph/internal/annotation"
)

// Envelope is the serialized form of one run's View
type Envelope struct {
	RunID            string       `json:"run_id"`
	SourceDocument   string       `json:"source_document"`
	TranscriptBLAKE3 string       `json:"transcript_blake3"`
	View             ViewDocument `json:"view"`
}

// ViewDocument mirrors the MMIF view layout: declared types, then annotations in emission order
type ViewDocument struct {
	ID          string             `json:"id"`
	Metadata    ViewMetadata       `json:"metadata"`
	Annotations []AnnotationRecord `json:"annotations"`
}

// ViewMetadata lists the annotation types the view contains
type ViewMetadata struct {
	Contains map[annotation.AnnotationType]map[string]string `json:"contains"`
}

// AnnotationRecord is one serialized annotation
type AnnotationRecord struct {
	Type       annotation.AnnotationType `json:"@type"`
	Properties interface{}               `json:"properties"`
}

// ViewWriter handles writing assembled views as JSON to a writer
type ViewWriter struct {
	writer io.Writer
	logger *zap.Logger
}

// NewViewWriter creates a new ViewWriter instance
func NewViewWriter(writer io.Writer, logger *zap.Logger) *ViewWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewWriter{
		writer: writer,
		logger: logger,
	}
}

// NewEnvelope builds the serialized form of a view
func NewEnvelope(runID, sourceDocID string, view *annotation.View) (*Envelope, error) {
	doc, ok := view.TextDocument()
	if !ok {
		return nil, fmt.Errorf("view %s has no text document", view.ID())
	}

	digest := blake3.Sum256([]byte(doc.Text))

	annotations := make([]AnnotationRecord, 0, len(view.Annotations()))
	for _, a := range view.Annotations() {
		annotations = append(annotations, AnnotationRecord{Type: a.Type, Properties: a.Properties})
	}

	return &Envelope{
		RunID:            runID,
		SourceDocument:   sourceDocID,
		TranscriptBLAKE3: hex.EncodeToString(digest[:]),
		View: ViewDocument{
			ID:          view.ID(),
			Metadata:    ViewMetadata{Contains: view.Contains()},
			Annotations: annotations,
		},
	}, nil
}

// WriteView writes the view of one run as indented JSON
func (vw *ViewWriter) WriteView(runID, sourceDocID string, view *annotation.View) error {
	if view == nil {
		return fmt.Errorf("invalid view: nil")
	}

	envelope, err := NewEnvelope(runID, sourceDocID, view)
	if err != nil {
		vw.logger.Error("invalid view", zap.Error(err))
		return fmt.Errorf("invalid view: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		vw.logger.Error("failed to marshal view to JSON", zap.Error(err))
		return fmt.Errorf("failed to marshal view to JSON: %w", err)
	}

	if _, err := fmt.Fprintf(vw.writer, "%s\n", jsonBytes); err != nil {
		vw.logger.Error("failed to write JSON output", zap.Error(err))
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	vw.logger.Debug("wrote view",
		zap.String("run_id", runID),
		zap.String("view", view.ID()),
		zap.Int("annotations", len(envelope.View.Annotations)),
		zap.String("transcript_blake3", envelope.TranscriptBLAKE3))

	return nil
}

// Close closes the underlying writer when it is closable
func (vw *ViewWriter) Close() error {
	vw.logger.Debug("closing view output")
	if closer, ok := vw.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ReadEnvelope decodes an envelope written by WriteView
func ReadEnvelope(r io.Reader) (*Envelope, error) {
	var raw struct {
		RunID            string `json:"run_id"`
		SourceDocument   string `json:"source_document"`
		TranscriptBLAKE3 string `json:"transcript_blake3"`
		View             struct {
			ID          string       `json:"id"`
			Metadata    ViewMetadata `json:"metadata"`
			Annotations []struct {
				Type       annotation.AnnotationType `json:"@type"`
				Properties json.RawMessage           `json:"properties"`
			} `json:"annotations"`
		} `json:"view"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode view envelope: %w", err)
	}

	env := &Envelope{
		RunID:            raw.RunID,
		SourceDocument:   raw.SourceDocument,
		TranscriptBLAKE3: raw.TranscriptBLAKE3,
		View: ViewDocument{
			ID:       raw.View.ID,
			Metadata: raw.View.Metadata,
		},
	}

	for i, a := range raw.View.Annotations {
		props, err := decodeProperties(a.Type, a.Properties)
		if err != nil {
			return nil, fmt.Errorf("annotation %d: %w", i, err)
		}
		env.View.Annotations = append(env.View.Annotations, AnnotationRecord{Type: a.Type, Properties: props})
	}

	return env, nil
}

func decodeProperties(kind annotation.AnnotationType, data json.RawMessage) (interface{}, error) {
	var target interface{}
	switch kind {
	case annotation.TypeToken:
		target = &annotation.Token{}
	case annotation.TypeTimeFrame:
		target = &annotation.TimeFrame{}
	case annotation.TypeSentence:
		target = &annotation.Sentence{}
	case annotation.TypeAlignment:
		target = &annotation.Alignment{}
	case annotation.TypeTextDocument:
		target = &annotation.TextDocument{}
	default:
		return nil, fmt.Errorf("unknown annotation type %q", kind)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
	}
	// dereference so decoded envelopes compare equal to freshly built ones
	switch v := target.(type) {
	case *annotation.Token:
		return *v, nil
	case *annotation.TimeFrame:
		return *v, nil
	case *annotation.Sentence:
		return *v, nil
	case *annotation.Alignment:
		return *v, nil
	default:
		return *target.(*annotation.TextDocument), nil
	}
}

// VerifyTranscript recomputes the transcript digest of a decoded envelope
func VerifyTranscript(env *Envelope) error {
	for _, a := range env.View.Annotations {
		doc, ok := a.Properties.(annotation.TextDocument)
		if !ok {
			continue
		}
		digest := blake3.Sum256([]byte(doc.Text))
		if hex.EncodeToString(digest[:]) != env.TranscriptBLAKE3 {
			return fmt.Errorf("transcript digest mismatch for %s", doc.ID)
		}
		return nil
	}
	return fmt.Errorf("envelope has no text document")
}
