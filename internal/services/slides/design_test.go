package slides

import (
	"context"
	"errors"
	"testing"

	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/services/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = "<!DOCTYPE html>\n<html><body><div id=\"slide1\" class=\"slide\"></div></body></html>"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", page, page},
		{"html fence", "```html\n" + page + "\n```", page},
		{"plain fence", "```\n" + page + "\n```", page},
		{"upper case tag", "```HTML\n" + page + "\n```\n", page},
		{"surrounding space", "\n\n  " + page + "  \n", page},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestDesign(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{"complete", page, page, false},
		{"fenced", "```html\n" + page + "\n```", page, false},
		{"starts at html", page[len("<!DOCTYPE html>\n"):], page, false},
		{"trailing prose", page + "\nEnjoy your deck!", page, false},
		{"prose", "Sure, here is a deck.", "", true},
		{"truncated", "<!DOCTYPE html>\n<html><body><div id=\"slide1\">", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewGenerator(nil).Design(context.Background(), &stubModel{text: tt.text}, DesignRequest{Topic: "Go"})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotDocument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc)
		})
	}
}

func TestDesignPassesUpstreamErrors(t *testing.T) {
	upstream := &llm.UpstreamError{Provider: "azure", StatusCode: 429, Err: errors.New("slow down")}
	_, err := NewGenerator(nil).Design(context.Background(), &stubModel{err: upstream}, DesignRequest{Topic: "Go"})

	var ue *llm.UpstreamError
	assert.ErrorAs(t, err, &ue)
}

func TestBuildDesignPrompt(t *testing.T) {
	p := BuildDesignPrompt(DesignRequest{
		Topic: "Oceans",
		Slides: []models.SlideContent{
			{Title: "Tides", Content: []string{"moon", "sun"}},
			{Title: "Reefs"},
			{Title: "Deep sea", Content: []string{"pressure"}},
		},
	})

	assert.Contains(t, p, `"Oceans"`)
	assert.Contains(t, p, "Slide 1:\n  Title: Tides\n  Content: moon | sun")
	assert.Contains(t, p, "Slide 3:\n  Title: Deep sea")
	assert.Contains(t, p, `<div id="slide3" class="slide">`)
	assert.Contains(t, p, "do NOT generate any navigation")
}
