package templates

import (
	"fmt"
	"strings"

	"github.com/findosh/slideomni/internal/models"
)

// DocumentLang is the lang attribute of rendered documents
const DocumentLang = "en"

// SelectLayout picks the layout for the slide at index i.
//
// Without mixing, the first layout is used unless the slide has bullets and
// the template has a content-capable layout, in which case the first of those
// wins. With mixing, layouts are cycled by index; slides with bullets cycle
// over the content-capable subset only.
func SelectLayout(t *Template, i int, slide models.SlideContent, mix bool) Layout {
	all := t.Layouts
	if slide.HasContent() {
		if content := t.ContentLayouts(); len(content) > 0 {
			all = content
		}
	}
	if !mix {
		return all[0]
	}
	return all[i%len(all)]
}

// RenderSlide wraps one layout fragment in its addressable slide container
func RenderSlide(layout Layout, slide models.SlideContent, number int) string {
	return fmt.Sprintf(`<div id="slide%d" class="slide">%s</div>`, number, layout.Render(slide.Title, slide.Content))
}

// Render builds the combined document for slides using template t.
// The result is checked with Validate before it is returned.
func Render(slides []models.SlideContent, t *Template, topic string, mix bool) (string, error) {
	if t == nil || len(t.Layouts) == 0 {
		return "", &RenderError{Reason: "template has no layouts"}
	}
	if len(slides) == 0 {
		return "", &RenderError{Reason: "no slides to render"}
	}

	var body strings.Builder
	for i, s := range slides {
		body.WriteString(RenderSlide(SelectLayout(t, i, s, mix), s, i+1))
		body.WriteByte('\n')
	}

	doc := Document(esc(topic), CSS(t), body.String(), NavScript(len(slides)))
	if err := Validate(doc, len(slides)); err != nil {
		return "", err
	}
	return doc, nil
}

// Document assembles a full HTML page. title must already be escaped.
func Document(title, css, body, script string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString(`<html lang="` + DocumentLang + `">` + "\n<head>\n")
	sb.WriteString(`<meta charset="UTF-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	sb.WriteString("<title>" + title + "</title>\n")
	sb.WriteString("<style>\n" + css + "</style>\n")
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("<script>\n" + script + "\n</script>\n")
	sb.WriteString("</body>\n</html>")
	return sb.String()
}
