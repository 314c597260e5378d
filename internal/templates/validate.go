package templates

import (
	"regexp"
	"strconv"
	"strings"
)

// RenderError reports a document that cannot be produced or fails validation
type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string {
	return "render: " + e.Reason
}

var slideIDPattern = regexp.MustCompile(`id="slide(\d+)"`)

// Validate checks the structural invariants of a combined document:
// the doctype prefix, the closing html tag and exactly one container
// per slide number 1..n.
func Validate(doc string, n int) error {
	trimmed := strings.TrimSpace(doc)
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "<!doctype html>") {
		return &RenderError{Reason: "missing doctype"}
	}
	if !strings.HasSuffix(lower, "</html>") {
		return &RenderError{Reason: "missing closing html tag"}
	}
	if n < 1 {
		return &RenderError{Reason: "no slides"}
	}

	seen := make(map[int]int, n)
	for _, m := range slideIDPattern.FindAllStringSubmatch(trimmed, -1) {
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[num]++
	}
	for i := 1; i <= n; i++ {
		switch seen[i] {
		case 1:
		case 0:
			return &RenderError{Reason: "missing container slide" + strconv.Itoa(i)}
		default:
			return &RenderError{Reason: "duplicate container slide" + strconv.Itoa(i)}
		}
	}
	for num := range seen {
		if num < 1 || num > n {
			return &RenderError{Reason: "unexpected container slide" + strconv.Itoa(num)}
		}
	}
	return nil
}
