package templates

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/findosh/slideomni/internal/models"
)

func deck(n int, withContent bool) []models.SlideContent {
	slides := make([]models.SlideContent, n)
	for i := range slides {
		slides[i] = models.SlideContent{Title: fmt.Sprintf("Slide %d", i+1)}
		if withContent {
			slides[i].Content = []string{"first point", "second point", "third point"}
		}
	}
	return slides
}

func TestCatalog(t *testing.T) {
	want := []string{"dark-premium", "gradient-modern", "minimal-clean", "corporate-pro"}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("len(All()) = %d, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("All()[%d].ID = %s, want %s", i, all[i].ID, id)
		}
		tpl, ok := ByID(id)
		if !ok || tpl.ID != id {
			t.Errorf("ByID(%s) not found", id)
		}
		if len(tpl.Layouts) == 0 || len(tpl.ContentLayouts()) == 0 {
			t.Errorf("%s has no content-capable layout", id)
		}
		if len(tpl.Variables) == 0 || tpl.Variables[0].Name != "--bg-primary" {
			t.Errorf("%s variables out of order", id)
		}
	}

	if _, ok := ByID("nope"); ok {
		t.Error("ByID(nope) should not be found")
	}

	// All returns a copy of the list
	all[0] = nil
	if All()[0] == nil {
		t.Error("All() leaked the catalog slice")
	}
}

func TestSelectLayout(t *testing.T) {
	dark, _ := ByID("dark-premium")
	bare := models.SlideContent{Title: "Only a title"}
	full := models.SlideContent{Title: "T", Content: []string{"a"}}

	tests := []struct {
		name  string
		i     int
		slide models.SlideContent
		mix   bool
		want  string
	}{
		{"no mix title only", 0, bare, false, "title-centered"},
		{"no mix title only later index", 4, bare, false, "title-centered"},
		{"no mix with content", 0, full, false, "title-content-left"},
		{"no mix with content later index", 3, full, false, "title-content-left"},
		{"mix title only cycles all", 1, bare, true, "title-content-left"},
		{"mix title only wraps", 3, bare, true, "title-centered"},
		{"mix content cycles subset", 0, full, true, "title-content-left"},
		{"mix content cycles subset second", 1, full, true, "two-column-split"},
		{"mix content wraps subset", 2, full, true, "title-content-left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectLayout(dark, tt.i, tt.slide, tt.mix)
			if got.ID != tt.want {
				t.Errorf("SelectLayout() = %s, want %s", got.ID, tt.want)
			}
		})
	}
}

func TestSelectLayoutWithoutContentLayouts(t *testing.T) {
	tpl := &Template{ID: "titles", Layouts: []Layout{
		{ID: "a", Category: CategoryTitleOnly, Render: titleCentered},
		{ID: "b", Category: CategoryTitleImage, Render: heroTitle},
	}}
	slide := models.SlideContent{Title: "T", Content: []string{"x"}}

	if got := SelectLayout(tpl, 1, slide, false); got.ID != "a" {
		t.Errorf("SelectLayout(no mix) = %s, want a", got.ID)
	}
	if got := SelectLayout(tpl, 1, slide, true); got.ID != "b" {
		t.Errorf("SelectLayout(mix) = %s, want b", got.ID)
	}
}

func TestRenderAllTemplates(t *testing.T) {
	for _, tpl := range All() {
		for n := 3; n <= 15; n++ {
			for _, mix := range []bool{false, true} {
				name := fmt.Sprintf("%s/%d/mix=%v", tpl.ID, n, mix)
				t.Run(name, func(t *testing.T) {
					doc, err := Render(deck(n, true), tpl, "Topic", mix)
					if err != nil {
						t.Fatalf("Render() error = %v", err)
					}
					if !strings.HasPrefix(doc, "<!DOCTYPE html>") {
						t.Error("missing doctype")
					}
					if !strings.HasSuffix(doc, "</html>") {
						t.Error("missing closing tag")
					}
					for i := 1; i <= n; i++ {
						id := fmt.Sprintf(`id="slide%d"`, i)
						if c := strings.Count(doc, id); c != 1 {
							t.Errorf("count(%s) = %d, want 1", id, c)
						}
					}
					if strings.Contains(doc, fmt.Sprintf(`id="slide%d"`, n+1)) {
						t.Error("extra slide container")
					}
					if !strings.Contains(doc, fmt.Sprintf("window.totalSlides = %d;", n)) {
						t.Error("nav script missing slide total")
					}
				})
			}
		}
	}
}

func TestRenderUsesContentLayoutWithoutMix(t *testing.T) {
	dark, _ := ByID("dark-premium")
	doc, err := Render(deck(5, true), dark, "Remote Work", false)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if c := strings.Count(doc, `<div class="layout-content-left">`); c != 5 {
		t.Errorf("content-left layouts = %d, want 5", c)
	}
	if strings.Contains(doc, `<div class="layout-title-centered">`) {
		t.Error("title-only layout used for a slide with content")
	}
	if !strings.Contains(doc, "<title>Remote Work</title>") {
		t.Error("document title not set")
	}
}

func TestRenderEscapesText(t *testing.T) {
	tpl, _ := ByID("minimal-clean")
	slides := []models.SlideContent{
		{Title: `<script>alert("x")</script>`, Content: []string{"a & b", `<img src=x onerror=y>`}},
	}
	doc, err := Render(slides, tpl, "Q&A <live>", false)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(doc, `<script>alert`) || strings.Contains(doc, "<img") {
		t.Error("unescaped markup in output")
	}
	for _, want := range []string{"&lt;script&gt;", "a &amp; b", "<title>Q&amp;A &lt;live&gt;</title>"} {
		if !strings.Contains(doc, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	dark, _ := ByID("dark-premium")
	if _, err := Render(nil, dark, "T", false); err == nil {
		t.Error("Render(no slides) should fail")
	}
	if _, err := Render(deck(3, false), &Template{ID: "empty"}, "T", false); err == nil {
		t.Error("Render(no layouts) should fail")
	}
}

func TestLayoutFragments(t *testing.T) {
	items := []string{"one", "two", "three", "four", "five"}

	two := twoColumnSplit("T", items)
	if strings.Contains(two, "five") {
		t.Error("two-column should render at most four paragraphs")
	}
	if strings.Count(two, "<p>") != 4 {
		t.Errorf("two-column paragraphs = %d, want 4", strings.Count(two, "<p>"))
	}

	list := listDecorated("T", items[:3])
	for i, delay := range []string{"0.0s", "0.1s", "0.2s"} {
		if !strings.Contains(list, "animation-delay: "+delay) {
			t.Errorf("missing delay %s", delay)
		}
		if !strings.Contains(list, fmt.Sprintf(`<div class="item-number">%d</div>`, i+1)) {
			t.Errorf("missing number %d", i+1)
		}
	}

	if c := strings.Count(corporateContent("T", items[:2]), `class="corporate-item"`); c != 2 {
		t.Errorf("corporate items = %d, want 2", c)
	}
}

func TestCSS(t *testing.T) {
	tpl, _ := ByID("corporate-pro")
	css := CSS(tpl)
	if !strings.HasPrefix(css, ":root {\n  --bg-primary: #1e3a5f;") {
		t.Errorf("CSS() prefix = %q", css[:40])
	}
	for _, want := range []string{".slide.active", "@keyframes float", "@media (max-width: 1024px)"} {
		if !strings.Contains(css, want) {
			t.Errorf("CSS() missing %s", want)
		}
	}
}

func TestValidate(t *testing.T) {
	ok := Document("t", "", `<div id="slide1"></div><div id="slide2"></div>`, "")

	tests := []struct {
		name    string
		doc     string
		n       int
		wantErr bool
	}{
		{"valid", ok, 2, false},
		{"surrounding whitespace", "\n  " + ok + "\n", 2, false},
		{"no doctype", strings.TrimPrefix(ok, "<!DOCTYPE html>"), 2, true},
		{"no closing tag", strings.TrimSuffix(ok, "</html>"), 2, true},
		{"missing container", ok, 3, true},
		{"extra container", ok, 1, true},
		{"duplicate container", Document("t", "", `<div id="slide1"></div><div id="slide1"></div>`, ""), 1, true},
		{"zero slides", ok, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc, tt.n)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNavScript(t *testing.T) {
	for _, n := range []int{1, 3, 15} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			js := NavScript(n)
			want := []string{
				fmt.Sprintf("window.totalSlides = %d;", n),
				"window.currentSlide = 1;",
				"if (n < 1 || n > window.totalSlides) return;",
				`document.querySelectorAll('[id^="slide"]')`,
				"s.id === 'slide' + n",
				"s.style.display = on ? 'flex' : 'none';",
				"e.key === 'ArrowRight'",
				"window.showSlide(Math.min(window.currentSlide + 1, window.totalSlides));",
				"e.key === 'ArrowLeft'",
				"window.showSlide(Math.max(window.currentSlide - 1, 1));",
				"if (document.readyState === 'loading') {",
				"document.addEventListener('DOMContentLoaded', init, { once: true });",
				"function init() { window.showSlide(1); }",
			}
			for _, w := range want {
				if !strings.Contains(js, w) {
					t.Errorf("NavScript(%d) missing %q", n, w)
				}
			}
			if strings.Contains(js, "%!") {
				t.Error("unformatted verb in script")
			}
			if strings.Contains(js, `id="slide`) {
				t.Error("script must not contain a slide container id")
			}
		})
	}
}

func TestRenderEmbedsNavScriptOnce(t *testing.T) {
	tpl, _ := ByID("minimal-clean")
	doc, err := Render(deck(4, true), tpl, "Topic", false)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if c := strings.Count(doc, "window.showSlide = function"); c != 1 {
		t.Errorf("nav controller count = %d, want 1", c)
	}
	script := strings.Index(doc, "<script>")
	if script < strings.LastIndex(doc, `id="slide4"`) {
		t.Error("script must follow the last slide container")
	}
}

func TestInjectNavScript(t *testing.T) {
	page := "<!DOCTYPE html>\n<html><body>\n<div id=\"slide1\" class=\"slide\"></div>\n<div id=\"slide2\" class=\"slide\"></div>\n</BODY>\n</html>"

	doc, err := InjectNavScript(page, 2)
	if err != nil {
		t.Fatalf("InjectNavScript() error = %v", err)
	}
	if !strings.Contains(doc, "window.totalSlides = 2;") {
		t.Error("script total not set")
	}
	if !strings.Contains(doc, "})();\n</script>\n</BODY>") {
		t.Errorf("script not placed before closing body:\n%s", doc)
	}
	if err := Validate(doc, 2); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	nested := "<html><body><iframe srcdoc=\"<body></body>\"></iframe></body></html>"
	doc, err = InjectNavScript(nested, 1)
	if err != nil {
		t.Fatalf("InjectNavScript() error = %v", err)
	}
	if !strings.HasSuffix(doc, "</script>\n</body></html>") {
		t.Errorf("script not placed before last closing body: %s", doc)
	}

	_, err = InjectNavScript("<html><div id=\"slide1\"></div></html>", 1)
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("InjectNavScript() error = %v, want *RenderError", err)
	}
}
