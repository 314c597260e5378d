package presentations

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/findosh/slideomni/internal/metrics"
	"github.com/findosh/slideomni/internal/models"
	"github.com/findosh/slideomni/internal/storage"
	"github.com/findosh/slideomni/internal/templates"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyFragments = `[
	{"id":"s1","title":"Intro","htmlContent":"<!DOCTYPE html><html><head><title>x</title></head><body class=\"b\"><h1>Intro</h1></body></html>"},
	{"id":"s2","html":"<!doctype html><html lang=\"en\"><head><style>p{}</style></head><p>Loose body</p></html>"},
	{"id":"s3","htmlContent":"<ul><li>plain fragment</li></ul>"}
]`

func legacyRecord(owner uuid.UUID) *models.Presentation {
	return &models.Presentation{
		ID:      "pres-legacy",
		OwnerID: owner,
		Title:   "Old & Busted",
		Slides:  json.RawMessage(legacyFragments),
	}
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	store := NewStore(storage.NewMemoryPresentations(), nil)
	fixed := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	p := &models.Presentation{OwnerID: uuid.New(), Title: "T", HTML: "<!DOCTYPE html></html>", SlideCount: 1}
	require.NoError(t, store.Create(context.Background(), p))

	assert.True(t, strings.HasPrefix(p.ID, IDPrefix))
	assert.Len(t, p.ID, len(IDPrefix)+26)
	assert.Equal(t, fixed, p.CreatedAt)
	assert.Equal(t, fixed, p.UpdatedAt)
	assert.NotEqual(t, p.ID, NewID())
}

func TestGetCanonicalUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryPresentations()
	store := NewStore(repo, nil)

	p := &models.Presentation{ID: "pres-1", OwnerID: uuid.New(), HTML: "<!DOCTYPE html><html></html>", SlideCount: 1,
		Slides: json.RawMessage(`[{"htmlContent":"<p>ignored</p>"}]`)}
	require.NoError(t, store.Create(ctx, p))

	before := testutil.ToFloat64(metrics.PresentationsNormalized)
	got, err := store.Get(ctx, "pres-1")
	require.NoError(t, err)
	assert.Equal(t, p.HTML, got.HTML)
	assert.Equal(t, before, testutil.ToFloat64(metrics.PresentationsNormalized))
}

func TestGetNotFound(t *testing.T) {
	store := NewStore(storage.NewMemoryPresentations(), nil)
	_, err := store.Get(context.Background(), "pres-missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetNormalizesLegacy(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryPresentations()
	require.NoError(t, repo.Create(ctx, legacyRecord(uuid.New())))
	store := NewStore(repo, nil, WithRewrite(false))

	before := testutil.ToFloat64(metrics.PresentationsNormalized)
	got, err := store.Get(ctx, "pres-legacy")
	require.NoError(t, err)

	assert.Equal(t, 3, got.SlideCount)
	require.NoError(t, templates.Validate(got.HTML, 3))
	assert.Contains(t, got.HTML, `<div id="slide1" class="slide" data-order="1"><div class="card"><h1>Intro</h1></div></div>`)
	assert.Contains(t, got.HTML, `<div id="slide2" class="slide" data-order="2"><div class="card"><p>Loose body</p></div></div>`)
	assert.Contains(t, got.HTML, `<div class="card"><ul><li>plain fragment</li></ul></div>`)
	assert.Contains(t, got.HTML, "<title>Old &amp; Busted</title>")
	assert.Equal(t, 1, strings.Count(got.HTML, "<!DOCTYPE html>"))
	assert.NotContains(t, got.HTML, "p{}")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PresentationsNormalized))

	// Without rewrite the stored row stays legacy
	stored, err := repo.Get(ctx, "pres-legacy")
	require.NoError(t, err)
	assert.False(t, stored.IsCanonical())
}

func TestGetRewritesNormalized(t *testing.T) {
	ctx := context.Background()
	db, err := storage.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	users := storage.NewUserRepository(db)
	owner := models.NewUser("owner", "", "h", "s", models.Permissions{})
	require.NoError(t, users.Create(ctx, owner))

	repo := storage.NewPresentationRepository(db)
	require.NoError(t, repo.Create(ctx, legacyRecord(owner.ID)))

	store := NewStore(repo, nil)
	first, err := store.Get(ctx, "pres-legacy")
	require.NoError(t, err)

	stored, err := repo.Get(ctx, "pres-legacy")
	require.NoError(t, err)
	assert.True(t, stored.IsCanonical())
	assert.Equal(t, first.HTML, stored.HTML)
	assert.Equal(t, 3, stored.SlideCount)

	before := testutil.ToFloat64(metrics.PresentationsNormalized)
	_, err = store.Get(ctx, "pres-legacy")
	require.NoError(t, err)
	assert.Equal(t, before, testutil.ToFloat64(metrics.PresentationsNormalized))
}

func TestGetLeavesUnconvertibleRecords(t *testing.T) {
	tests := []struct {
		name   string
		slides string
	}{
		{"no slides", ``},
		{"empty list", `[]`},
		{"not a list", `{"title":"a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := storage.NewMemoryPresentations()
			p := &models.Presentation{ID: "pres-x", OwnerID: uuid.New()}
			if tt.slides != "" {
				p.Slides = json.RawMessage(tt.slides)
			}
			require.NoError(t, repo.Create(ctx, p))

			got, err := NewStore(repo, nil).Get(ctx, "pres-x")
			require.NoError(t, err)
			assert.Empty(t, got.HTML)
			assert.Zero(t, got.SlideCount)
		})
	}
}

func TestGetRenamesSlideIDsInsideFragments(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryPresentations()
	require.NoError(t, repo.Create(ctx, &models.Presentation{
		ID:      "pres-nested",
		OwnerID: uuid.New(),
		Slides: json.RawMessage(`[
			{"htmlContent":"<body><div id=\"slide1\" class=\"slide\"><h1>One</h1></div></body>"},
			{"htmlContent":"<div id=\"slide2\" class=\"slide\"><h1>Two</h1></div>"},
			{"html":"<section ID='slide3'><h1>Three</h1></section>"}
		]`),
	}))

	got, err := NewStore(repo, nil, WithRewrite(false)).Get(ctx, "pres-nested")
	require.NoError(t, err)
	assert.Equal(t, 3, got.SlideCount)
	require.NoError(t, templates.Validate(got.HTML, got.SlideCount))
	assert.Contains(t, got.HTML, `<div class="card"><div id="legacy-slide1" class="slide"><h1>One</h1></div></div>`)
	assert.Contains(t, got.HTML, `<section id='legacy-slide3'>`)
	assert.Equal(t, 3, strings.Count(got.HTML, `id="slide`))
}

func TestGetNormalizesFragmentsWithoutMarkup(t *testing.T) {
	tests := []struct {
		name   string
		slides string
		want   int
	}{
		{"empty markup", `[{"htmlContent":""},{"htmlContent":""},{"html":""}]`, 3},
		{"content records", `[{"title":"a","content":["b"]}]`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := storage.NewMemoryPresentations()
			require.NoError(t, repo.Create(ctx, &models.Presentation{ID: "pres-x", OwnerID: uuid.New(), Slides: json.RawMessage(tt.slides)}))

			got, err := NewStore(repo, nil, WithRewrite(false)).Get(ctx, "pres-x")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.SlideCount)
			require.NoError(t, templates.Validate(got.HTML, tt.want))
			assert.Equal(t, tt.want, strings.Count(got.HTML, `<div class="card"></div>`))
		})
	}
}

func TestFragmentBody(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`<div id="slide1">a</div>`, `<div id="legacy-slide1">a</div>`},
		{`<p id = 'slide12'>b</p>`, `<p id='legacy-slide12'>b</p>`},
		{`<p id=slide4>c</p>`, `<p id=legacy-slide4>c</p>`},
		{`<p class="slide">d</p>`, `<p class="slide">d</p>`},
		{`<p id="intro">e</p>`, `<p id="intro">e</p>`},
	}
	for _, tt := range tests {
		if got := fragmentBody(tt.in); got != tt.want {
			t.Errorf("fragmentBody(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryPresentations(), nil)
	owner := uuid.New()

	empty, err := store.List(ctx, owner)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"pres-a", "pres-b"} {
		require.NoError(t, store.Create(ctx, &models.Presentation{
			ID: id, OwnerID: owner, Title: id, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.Create(ctx, &models.Presentation{ID: "pres-other", OwnerID: uuid.New()}))

	list, err := store.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "pres-b", list[0].ID)
	assert.Equal(t, "pres-a", list[1].ID)
}

func TestExtractBody(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<html><body><p>x</p></body></html>", "<p>x</p>"},
		{"<BODY id=a>\n<p>y</p>\n</BODY>", "\n<p>y</p>\n"},
		{"<!DOCTYPE html><html><head><meta charset=utf-8></head><div>z</div></html>", "<div>z</div>"},
		{"<span>bare</span>", "<span>bare</span>"},
	}
	for _, tt := range tests {
		if got := extractBody(tt.in); got != tt.want {
			t.Errorf("extractBody(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
