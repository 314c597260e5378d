package presentations

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/templates"
)

var (
	bodyPattern    = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)
	doctypePattern = regexp.MustCompile(`(?i)<!?doctype[^>]*>`)
	htmlOpen       = regexp.MustCompile(`(?i)<html[^>]*>`)
	htmlClose      = regexp.MustCompile(`(?i)</html>`)
	headPattern    = regexp.MustCompile(`(?is)<head.*?</head>`)

	// nestedSlideID matches slide ids a fragment carried from its own page
	nestedSlideID = regexp.MustCompile(`(?i)\bid\s*=\s*(["']?)slide`)
)

const legacyStyle = `:root{--bg:#0b1020;--fg:#e6eef8;--accent:#7c5cff}
html,body{height:100%;width:100%;margin:0;padding:0;overflow:hidden;background:var(--bg);color:var(--fg);font-family:Inter,ui-sans-serif,system-ui,-apple-system,"Segoe UI",Roboto,"Helvetica Neue",Arial}
.slide{position:absolute;top:0;left:0;align-items:center;justify-content:center;width:100vw;height:100vh;padding:48px;box-sizing:border-box;margin:0;z-index:1}
.slide.active{z-index:10}
[id^="slide"]{position:absolute;top:0;left:0;width:100vw;height:100vh;margin:0;z-index:1}
[id^="slide"].active{z-index:10}
.card{max-width:1200px;width:100%;background:linear-gradient(180deg,rgba(255,255,255,0.03),rgba(255,255,255,0.01));box-shadow:0 10px 30px rgba(2,6,23,0.6);border-radius:16px;padding:40px;transition:transform .45s cubic-bezier(.2,.9,.3,1)}
h1{margin:0 0 16px;font-size:2.25rem}
p,li{color:var(--fg);line-height:1.5}
ul{padding-left:1.1rem}
`

// legacyScript activates slide1 and hides every other container
const legacyScript = `(function () {
  var slides = document.querySelectorAll('[id^="slide"]');
  for (var i = 0; i < slides.length; i++) {
    var on = slides[i].id === 'slide1';
    slides[i].style.display = on ? 'flex' : 'none';
    if (on) {
      slides[i].classList.add('active');
    } else {
      slides[i].classList.remove('active');
    }
  }
})();`

// extractBody returns the inner markup of a fragment's body element, or the
// fragment with its document scaffolding removed.
func extractBody(fragment string) string {
	if m := bodyPattern.FindStringSubmatch(fragment); m != nil && m[1] != "" {
		return m[1]
	}
	out := doctypePattern.ReplaceAllString(fragment, "")
	out = headPattern.ReplaceAllString(out, "")
	out = htmlOpen.ReplaceAllString(out, "")
	return htmlClose.ReplaceAllString(out, "")
}

// fragmentBody returns the card content for one legacy fragment. Slide ids
// inside the fragment are renamed so only the outer containers are addressable.
func fragmentBody(fragment string) string {
	body := strings.TrimSpace(extractBody(fragment))
	return nestedSlideID.ReplaceAllString(body, "id=${1}legacy-slide")
}

// legacySlides decodes a per-slide fragment list. It reports false when raw
// is not a non-empty list. Entries without markup still count as slides.
func legacySlides(raw json.RawMessage) ([]models.LegacySlide, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var slides []models.LegacySlide
	if err := json.Unmarshal(raw, &slides); err != nil || len(slides) == 0 {
		return nil, false
	}
	return slides, true
}

// normalize converts a legacy record into the combined document form.
// It returns false when p needs no conversion or cannot be converted, and an
// error when the converted document fails validation.
func normalize(p *models.Presentation) (*models.Presentation, bool, error) {
	if p.IsCanonical() {
		return p, false, nil
	}
	slides, ok := legacySlides(p.Slides)
	if !ok {
		return p, false, nil
	}

	var body strings.Builder
	for i, s := range slides {
		fmt.Fprintf(&body, "<div id=\"slide%d\" class=\"slide\" data-order=\"%d\"><div class=\"card\">%s</div></div>\n",
			i+1, i+1, fragmentBody(s.Markup()))
	}

	out := *p
	out.HTML = templates.Document(documentTitle(p.Title), legacyStyle, body.String(), legacyScript)
	out.SlideCount = len(slides)
	if err := templates.Validate(out.HTML, out.SlideCount); err != nil {
		return nil, false, err
	}
	return &out, true, nil
}

func documentTitle(title string) string {
	if title == "" {
		return "Presentation"
	}
	return html.EscapeString(title)
}
