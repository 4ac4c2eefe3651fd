package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"worldsmith/internal/ai"
	"worldsmith/internal/logger"
)

// MaxInputChars bounds the text sent for one document, in characters.
const MaxInputChars = 50000

var (
	ErrParse       = errors.New("failed to parse AI response as world-building data")
	ErrNoDocuments = errors.New("no documents to analyze")
)

// Document is one source text, typically a chapter or a whole book.
type Document struct {
	Name string
	Text string
}

// Progress is called after every document of a series, with err set when
// that document was skipped.
type Progress func(done, total int, name string, err error)

type Extractor struct {
	gen      ai.Generator
	log      *logger.Logger
	maxChars int
}

func NewExtractor(gen ai.Generator, log *logger.Logger) *Extractor {
	return &Extractor{
		gen:      gen,
		log:      log.With("service", "Extractor"),
		maxChars: MaxInputChars,
	}
}

// AnalyzeDocument extracts world-building data from one document.
func (e *Extractor) AnalyzeDocument(ctx context.Context, doc Document) (*Result, error) {
	text := Truncate(doc.Text, e.maxChars)
	if len(text) < len(doc.Text) {
		e.log.Debug("document truncated", "document", doc.Name, "max_chars", e.maxChars)
	}

	answer, err := e.gen.Generate(ctx, extractionSystemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", doc.Name, err)
	}
	return ParseResult(answer)
}

// AnalyzeSeries folds every document into one accumulator. A document whose
// analysis fails is logged and skipped. After the fold one series-level pass
// appends observations to WorldBuilding, or SeriesFallback if that pass
// fails. The returned result is cleaned.
func (e *Extractor) AnalyzeSeries(ctx context.Context, docs []Document, progress Progress) (*Result, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	acc := NewResult()
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := e.AnalyzeDocument(ctx, doc)
		if err != nil {
			e.log.Warn("skipping document", "document", doc.Name, "error", err)
		} else {
			acc = Merge(acc, part)
		}
		if progress != nil {
			progress(i+1, len(docs), doc.Name, err)
		}
	}

	acc.WorldBuilding = union(acc.WorldBuilding, e.seriesObservations(ctx, acc))
	return Clean(acc), nil
}

func (e *Extractor) seriesObservations(ctx context.Context, acc *Result) []string {
	summary, err := json.Marshal(acc)
	if err != nil {
		return []string{SeriesFallback}
	}
	answer, err := e.gen.Generate(ctx, seriesSystemPrompt, Truncate(string(summary), e.maxChars))
	if err != nil {
		e.log.Warn("series analysis failed", "error", err)
		return []string{SeriesFallback}
	}

	var parsed struct {
		Observations []string `json:"observations"`
	}
	if err := json.Unmarshal([]byte(jsonObject(answer)), &parsed); err != nil {
		e.log.Warn("series analysis unparseable", "error", err)
		return []string{SeriesFallback}
	}
	return parsed.Observations
}

// ParseResult decodes an AI answer. Code fences and chatter around the JSON
// object are ignored.
func ParseResult(answer string) (*Result, error) {
	body := jsonObject(answer)
	if body == "" {
		return nil, ErrParse
	}
	r := NewResult()
	if err := json.Unmarshal([]byte(body), r); err != nil {
		return nil, ErrParse
	}
	return fillEmpty(r), nil
}

func jsonObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}

// fillEmpty replaces lists the answer set to null.
func fillEmpty(r *Result) *Result {
	empty := NewResult()
	if r.Characters == nil {
		r.Characters = empty.Characters
	}
	if r.Locations == nil {
		r.Locations = empty.Locations
	}
	if r.Items == nil {
		r.Items = empty.Items
	}
	if r.Factions == nil {
		r.Factions = empty.Factions
	}
	if r.Events == nil {
		r.Events = empty.Events
	}
	if r.Themes == nil {
		r.Themes = empty.Themes
	}
	if r.PlotPoints == nil {
		r.PlotPoints = empty.PlotPoints
	}
	if r.WorldBuilding == nil {
		r.WorldBuilding = empty.WorldBuilding
	}
	return r
}

// Truncate cuts s to at most max characters without splitting a rune.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
