package annotation

// AnnotationType identifies the kind of an entity stored in a View
type AnnotationType string

// Annotation type vocabulary, MMIF for time-based types and LAPPS for text spans
const (
	TypeTextDocument AnnotationType = "http://mmif.clams.ai/vocabulary/TextDocument/v1"
	TypeTimeFrame    AnnotationType = "http://mmif.clams.ai/vocabulary/TimeFrame/v5"
	TypeAlignment    AnnotationType = "http://mmif.clams.ai/vocabulary/Alignment/v1"
	TypeToken        AnnotationType = "http://vocab.lappsgrid.org/Token"
	TypeSentence     AnnotationType = "http://vocab.lappsgrid.org/Sentence"
)

// FrameTypeSpeech is the frame type of every TimeFrame produced from recognized speech
const FrameTypeSpeech = "speech"

// TimeUnitMilliseconds is the unit of all TimeFrame boundaries
const TimeUnitMilliseconds = "milliseconds"

// prefixes renders identifiers as <prefix>_<n>
var prefixes = map[AnnotationType]string{
	TypeTextDocument: "td",
	TypeTimeFrame:    "tf",
	TypeAlignment:    "a",
	TypeToken:        "t",
	TypeSentence:     "s",
}

// Token is a text-span annotation over the assembled transcript.
// Start and End are rune offsets, End exclusive.
type Token struct {
	ID    string `json:"id"`
	Text  string `json:"word"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// TimeFrame is a time-span annotation over the source media, in milliseconds
type TimeFrame struct {
	ID        string `json:"id"`
	FrameType string `json:"frameType"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
}

// Sentence groups the tokens produced from one recognized segment
type Sentence struct {
	ID      string   `json:"id"`
	Targets []string `json:"targets"`
	Text    string   `json:"text"`
}

// Alignment asserts correspondence from Source to Target
type Alignment struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// TextDocument holds the canonical transcript of a run
type TextDocument struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Language string `json:"lang"`
}
