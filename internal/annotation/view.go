package annotation

import (
	"errors"
	"fmt"
)

// ErrDocumentExists is returned when a second TextDocument is added to a View
var ErrDocumentExists = errors.New("view already holds a text document")

// Annotation is one entity of a View in emission order
type Annotation struct {
	Type       AnnotationType
	Properties interface{}
}

// View is the output container of one assembly run. Every entity is
// created through the View so identifiers come from its own allocator and
// cross references are checked against what already exists.
type View struct {
	id        string
	ids       *IdentifierAllocator
	known     map[string]AnnotationType
	external  map[string]struct{}
	contains  map[AnnotationType]map[string]string
	order     []Annotation
	tokens    []Token
	frames    []TimeFrame
	sentences []Sentence
	aligns    []Alignment
	document  *TextDocument
}

// NewView creates an empty View with a fresh IdentifierAllocator
func NewView(id string) *View {
	return &View{
		id:       id,
		ids:      NewIdentifierAllocator(),
		known:    make(map[string]AnnotationType),
		external: make(map[string]struct{}),
		contains: make(map[AnnotationType]map[string]string),
	}
}

// ID returns the view identifier
func (v *View) ID() string {
	return v.id
}

// NewContain declares an annotation type the view holds, with its metadata
func (v *View) NewContain(kind AnnotationType, props map[string]string) {
	if props == nil {
		props = map[string]string{}
	}
	v.contains[kind] = props
}

// Contains returns the declared annotation types and their metadata
func (v *View) Contains() map[AnnotationType]map[string]string {
	return v.contains
}

// RegisterExternal records an identifier owned outside this View (such as the
// source media document) so Alignments may point at it
func (v *View) RegisterExternal(id string) error {
	if id == "" {
		return fmt.Errorf("external identifier cannot be empty")
	}
	if err := v.ids.Reserve(id); err != nil {
		return err
	}
	v.external[id] = struct{}{}
	return nil
}

// Has reports whether id names an entity of this View or a registered external one
func (v *View) Has(id string) bool {
	if _, ok := v.known[id]; ok {
		return true
	}
	_, ok := v.external[id]
	return ok
}

// TypeOf returns the annotation type of an entity created by this View
func (v *View) TypeOf(id string) (AnnotationType, bool) {
	kind, ok := v.known[id]
	return kind, ok
}

func (v *View) allocate(kind AnnotationType) (string, error) {
	id, err := v.ids.Next(kind)
	if err != nil {
		return "", err
	}
	if _, dup := v.known[id]; dup {
		return "", &IdentifierCollisionError{ID: id, Type: kind}
	}
	v.known[id] = kind
	return id, nil
}

// NewToken adds a Token spanning [start, end) of the transcript
func (v *View) NewToken(text string, start, end int) (Token, error) {
	if start < 0 || end < start {
		return Token{}, fmt.Errorf("invalid token span [%d, %d)", start, end)
	}
	id, err := v.allocate(TypeToken)
	if err != nil {
		return Token{}, err
	}
	tok := Token{ID: id, Text: text, Start: start, End: end}
	v.tokens = append(v.tokens, tok)
	v.order = append(v.order, Annotation{Type: TypeToken, Properties: tok})
	return tok, nil
}

// NewTimeFrame adds a speech TimeFrame over [startMS, endMS]
func (v *View) NewTimeFrame(startMS, endMS int64) (TimeFrame, error) {
	if startMS < 0 || endMS < startMS {
		return TimeFrame{}, fmt.Errorf("invalid time frame [%d, %d] ms", startMS, endMS)
	}
	id, err := v.allocate(TypeTimeFrame)
	if err != nil {
		return TimeFrame{}, err
	}
	tf := TimeFrame{ID: id, FrameType: FrameTypeSpeech, Start: startMS, End: endMS}
	v.frames = append(v.frames, tf)
	v.order = append(v.order, Annotation{Type: TypeTimeFrame, Properties: tf})
	return tf, nil
}

// NewSentence adds a Sentence over already created tokens
func (v *View) NewSentence(targets []string, text string) (Sentence, error) {
	for _, target := range targets {
		if kind, ok := v.known[target]; !ok || kind != TypeToken {
			return Sentence{}, &UnknownReferenceError{From: "sentence", Ref: target}
		}
	}
	id, err := v.allocate(TypeSentence)
	if err != nil {
		return Sentence{}, err
	}
	s := Sentence{ID: id, Targets: append([]string(nil), targets...), Text: text}
	v.sentences = append(v.sentences, s)
	v.order = append(v.order, Annotation{Type: TypeSentence, Properties: s})
	return s, nil
}

// NewAlignment adds an edge between two entities that already exist
func (v *View) NewAlignment(source, target string) (Alignment, error) {
	if !v.Has(source) {
		return Alignment{}, &UnknownReferenceError{From: "alignment source", Ref: source}
	}
	if !v.Has(target) {
		return Alignment{}, &UnknownReferenceError{From: "alignment target", Ref: target}
	}
	id, err := v.allocate(TypeAlignment)
	if err != nil {
		return Alignment{}, err
	}
	a := Alignment{ID: id, Source: source, Target: target}
	v.aligns = append(v.aligns, a)
	v.order = append(v.order, Annotation{Type: TypeAlignment, Properties: a})
	return a, nil
}

// NewTextDocument adds the single TextDocument of the view
func (v *View) NewTextDocument(text, language string) (TextDocument, error) {
	if v.document != nil {
		return TextDocument{}, ErrDocumentExists
	}
	id, err := v.allocate(TypeTextDocument)
	if err != nil {
		return TextDocument{}, err
	}
	td := TextDocument{ID: id, Text: text, Language: language}
	v.document = &td
	v.order = append(v.order, Annotation{Type: TypeTextDocument, Properties: td})
	return td, nil
}

// Annotations returns every entity in emission order
func (v *View) Annotations() []Annotation {
	return v.order
}

// Tokens returns the tokens in emission order
func (v *View) Tokens() []Token {
	return v.tokens
}

// TimeFrames returns the time frames in emission order
func (v *View) TimeFrames() []TimeFrame {
	return v.frames
}

// Sentences returns the sentences in emission order
func (v *View) Sentences() []Sentence {
	return v.sentences
}

// Alignments returns the alignments in emission order
func (v *View) Alignments() []Alignment {
	return v.aligns
}

// TextDocument returns the view's document, if one was added
func (v *View) TextDocument() (TextDocument, bool) {
	if v.document == nil {
		return TextDocument{}, false
	}
	return *v.document, true
}
