package slides

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/services/llm"
	"go.uber.org/zap"
)

// ErrNotDocument is returned when the model answer is not a full HTML document
var ErrNotDocument = errors.New("slides: model output is not an HTML document")

var (
	openFence  = regexp.MustCompile("(?i)^```(?:html?)?[ \t]*\n?")
	closeFence = regexp.MustCompile("\n?```$")
)

// DesignRequest asks the model to lay out already generated records as one page
type DesignRequest struct {
	Topic  string
	Slides []models.SlideContent
}

// Design issues a second prompt asking model for a complete styled document
// holding one slide<N> container per record. Code fences are stripped and a
// missing doctype is added when the answer starts at the html element, and
// anything after the closing html tag is dropped.
func (g *Generator) Design(ctx context.Context, model llm.Model, req DesignRequest) (string, error) {
	completion, err := model.Generate(ctx, BuildDesignPrompt(req))
	if err != nil {
		return "", err
	}

	doc := StripFences(completion.Text)
	lower := strings.ToLower(doc)
	switch {
	case strings.HasPrefix(lower, "<!doctype"):
	case strings.HasPrefix(lower, "<html"):
		doc = "<!DOCTYPE html>\n" + doc
	default:
		g.logger.Warn("designed document has no doctype",
			zap.String("topic", req.Topic),
			zap.Int("output_bytes", len(doc)),
		)
		return "", fmt.Errorf("%w: missing doctype", ErrNotDocument)
	}
	end := strings.LastIndex(strings.ToLower(doc), "</html>")
	if end < 0 {
		return "", fmt.Errorf("%w: missing closing html tag", ErrNotDocument)
	}
	return doc[:end+len("</html>")], nil
}

// StripFences removes a surrounding markdown code fence
func StripFences(text string) string {
	out := strings.TrimSpace(text)
	out = openFence.ReplaceAllString(out, "")
	out = closeFence.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// BuildDesignPrompt renders the layout instructions for req
func BuildDesignPrompt(req DesignRequest) string {
	var outline strings.Builder
	for i, s := range req.Slides {
		fmt.Fprintf(&outline, "Slide %d:\n  Title: %s\n  Content: %s\n\n", i+1, s.Title, strings.Join(s.Content, " | "))
	}
	n := len(req.Slides)

	var sb strings.Builder
	sb.WriteString("You are an expert designer of modern HTML/CSS.\n\n")
	sb.WriteString("IMPORTANT: do NOT generate any navigation component, next/previous buttons or slide controls. They are injected automatically.\n\n")
	fmt.Fprintf(&sb, "Create ONE complete HTML5 document for a presentation about: %q\n\n", req.Topic)
	sb.WriteString("SLIDE STRUCTURE:\n")
	sb.WriteString(outline.String())
	sb.WriteString("REQUIREMENTS:\n\n")
	sb.WriteString("1. A single document: <!DOCTYPE html> first, one <html>, one <head> and one <body>.\n")
	fmt.Fprintf(&sb, "2. Each slide in its own element: <div id=\"slide1\" class=\"slide\">...</div> through <div id=\"slide%d\" class=\"slide\">...</div>, numbered sequentially.\n", n)
	sb.WriteString("3. All CSS in one <style> tag inside <head>: modern dark theme with vibrant blues, purples and cyans; each .slide fills 100vw x 100vh; flexbox centering; high contrast.\n")
	sb.WriteString("4. Each slide uses <h1> for the title and <ul> or <p> for the content.\n")
	sb.WriteString("5. Return ONLY raw HTML starting with <!DOCTYPE html> and ending with </html>, with no text before or after and no code fences.\n")
	return sb.String()
}
