// Package slides turns a topic into structured slide records using a text model.
package slides

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/findosh/slideomni/internal/logging"
	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/services/llm"
	"go.uber.org/zap"
)

// ErrNoArray is returned when the model output contains no balanced JSON array
var ErrNoArray = errors.New("slides: no JSON array in model output")

// ParseError reports an array that was found but could not be used
type ParseError struct {
	Index int // record index, -1 when the array itself is invalid
	Err   error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("slides: invalid slide array: %v", e.Err)
	}
	return fmt.Sprintf("slides: record %d: %v", e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Request describes the deck to generate
type Request struct {
	Topic       string
	Description string
	SlideCount  int
}

// Result holds the parsed records. Warning is set when the model returned
// a different number of records than requested.
type Result struct {
	Slides  []models.SlideContent
	Warning string
	Usage   llm.TokenUsage
}

// Generator asks a model for slide content
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a content generator
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logging.OrNop(logger).Named("slides")}
}

// Generate issues one prompt to model and parses its answer
func (g *Generator) Generate(ctx context.Context, model llm.Model, req Request) (*Result, error) {
	completion, err := model.Generate(ctx, BuildPrompt(req))
	if err != nil {
		return nil, err
	}

	records, err := Parse(completion.Text)
	if err != nil {
		g.logger.Warn("unusable model output",
			zap.String("topic", req.Topic),
			zap.Int("output_bytes", len(completion.Text)),
			zap.Error(err),
		)
		return nil, err
	}

	res := &Result{Slides: records, Usage: completion.Usage}
	if len(records) != req.SlideCount {
		res.Warning = fmt.Sprintf("requested %d slides, model returned %d", req.SlideCount, len(records))
		g.logger.Warn("slide count mismatch",
			zap.String("topic", req.Topic),
			zap.Int("requested", req.SlideCount),
			zap.Int("returned", len(records)),
		)
	}
	return res, nil
}

// BuildPrompt renders the generation instructions for req
func BuildPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("You are an expert at building professional presentations.\n\n")
	fmt.Fprintf(&sb, "Topic: %q\n", req.Topic)
	if d := strings.TrimSpace(req.Description); d != "" {
		fmt.Fprintf(&sb, "Additional context: %s\n", d)
	}
	fmt.Fprintf(&sb, "Number of slides: %d\n\n", req.SlideCount)
	fmt.Fprintf(&sb, "Create a presentation outline with EXACTLY %d slides.\n\n", req.SlideCount)
	sb.WriteString(`For each slide provide:
1. A clear, impactful title
2. Relevant content (2-4 key points)
3. Optional speaker notes

Return ONLY valid JSON, with no additional text:
[
  {
    "title": "Slide title",
    "content": ["Point 1", "Point 2", "Point 3"],
    "notes": "Optional notes"
  }
]`)
	return sb.String()
}

// Parse extracts the first balanced JSON array from text and decodes it.
// Every record must carry a non-empty title.
func Parse(text string) ([]models.SlideContent, error) {
	raw, ok := ExtractArray(text)
	if !ok {
		return nil, ErrNoArray
	}

	var records []models.SlideContent
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, &ParseError{Index: -1, Err: err}
	}

	for i, r := range records {
		if strings.TrimSpace(r.Title) == "" {
			return nil, &ParseError{Index: i, Err: errors.New("empty title")}
		}
		if records[i].Content == nil {
			records[i].Content = []string{}
		}
	}
	return records, nil
}

// ExtractArray returns the first syntactically balanced [...] substring.
// Brackets inside JSON strings, including escaped quotes, are ignored.
func ExtractArray(text string) (string, bool) {
	for start := strings.IndexByte(text, '['); start >= 0; {
		if end, ok := matchBracket(text, start); ok {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBracket finds the ']' closing the '[' at text[start]
func matchBracket(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i, c == ']'
			}
			if depth < 0 {
				return 0, false
			}
		}
	}
	return 0, false
}
