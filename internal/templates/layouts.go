package templates

import (
	"fmt"
	"html"
	"strings"
)

func esc(s string) string { return html.EscapeString(s) }

func each(content []string, format string) string {
	var sb strings.Builder
	for _, item := range content {
		fmt.Fprintf(&sb, format, esc(item))
	}
	return sb.String()
}

func titleCentered(title string, _ []string) string {
	return `<div class="layout-title-centered">
  <div class="title-wrapper">
    <h1 class="slide-title">` + esc(title) + `</h1>
    <div class="title-underline"></div>
  </div>
</div>`
}

func contentLeft(title string, content []string) string {
	return `<div class="layout-content-left">
  <div class="content-wrapper">
    <h2 class="slide-title">` + esc(title) + `</h2>
    <ul class="content-list">` + each(content, `<li class="list-item">%s</li>`) + `</ul>
  </div>
  <div class="accent-shape"></div>
</div>`
}

func twoColumnSplit(title string, content []string) string {
	para := func(i int) string {
		if i < len(content) && content[i] != "" {
			return "<p>" + esc(content[i]) + "</p>"
		}
		return ""
	}
	return `<div class="layout-two-column">
  <h2 class="slide-title">` + esc(title) + `</h2>
  <div class="columns">
    <div class="column left">` + para(0) + para(1) + `</div>
    <div class="column right">` + para(2) + para(3) + `</div>
  </div>
</div>`
}

func heroTitle(title string, _ []string) string {
	return `<div class="layout-hero">
  <div class="hero-background"></div>
  <h1 class="hero-title">` + esc(title) + `</h1>
</div>`
}

func contentRight(title string, content []string) string {
	return `<div class="layout-content-right">
  <div class="gradient-accent"></div>
  <div class="content-section">
    <h2 class="slide-title">` + esc(title) + `</h2>
    <div class="content-items">` +
		each(content, `<div class="content-item"><div class="item-bullet"></div><span>%s</span></div>`) +
		`</div>
  </div>
</div>`
}

func listDecorated(title string, content []string) string {
	var items strings.Builder
	for i, item := range content {
		fmt.Fprintf(&items,
			`<li class="decorated-item" style="animation-delay: %.1fs"><div class="item-number">%d</div><span class="item-text">%s</span></li>`,
			float64(i)*0.1, i+1, esc(item))
	}
	return `<div class="layout-list-decorated">
  <h2 class="slide-title">` + esc(title) + `</h2>
  <ul class="decorated-list">` + items.String() + `</ul>
</div>`
}

func minimalTitle(title string, _ []string) string {
	return `<div class="layout-minimal-title">
  <h1 class="minimal-title">` + esc(title) + `</h1>
  <div class="minimal-line"></div>
</div>`
}

func contentSimple(title string, content []string) string {
	return `<div class="layout-content-simple">
  <h2 class="slide-title">` + esc(title) + `</h2>
  <div class="content-area">` + each(content, `<p class="content-text">%s</p>`) + `</div>
</div>`
}

func corporateTitle(title string, _ []string) string {
	return `<div class="layout-corporate-title">
  <div class="corporate-header">
    <div class="header-bar"></div>
    <h1 class="corporate-title">` + esc(title) + `</h1>
  </div>
</div>`
}

func corporateContent(title string, content []string) string {
	return `<div class="layout-corporate-content">
  <div class="content-header">
    <div class="header-accent"></div>
    <h2 class="slide-title">` + esc(title) + `</h2>
  </div>
  <div class="corporate-list">` +
		each(content, `<div class="corporate-item"><span class="item-bullet">&#9656;</span><span>%s</span></div>`) +
		`</div>
</div>`
}
