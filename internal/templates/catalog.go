// Package templates holds the compiled-in slide template catalog and renders
// slide records into a single self-contained HTML document.
package templates

// Category classifies what a layout can display
type Category string

const (
	CategoryTitleOnly    Category = "title-only"
	CategoryTitleContent Category = "title-content"
	CategoryTwoColumn    Category = "two-column"
	CategoryTitleImage   Category = "title-image"
	CategoryCentered     Category = "centered"
	CategoryList         Category = "list"
)

// ContentCapable reports whether the layout renders bullet content
func (c Category) ContentCapable() bool {
	return c != CategoryTitleOnly && c != CategoryTitleImage
}

// Theme is the visual family of a template
type Theme string

const (
	ThemeDark     Theme = "dark"
	ThemeLight    Theme = "light"
	ThemeGradient Theme = "gradient"
	ThemeMinimal  Theme = "minimal"
	ThemeModern   Theme = "modern"
)

// Variable is one CSS custom property
type Variable struct {
	Name  string
	Value string
}

// Layout renders one slide body. Render must be pure and escape its input.
type Layout struct {
	ID          string
	Name        string
	Description string
	Category    Category
	Render      func(title string, content []string) string
}

// Template is a named set of layouts sharing one palette.
// Catalog entries are shared and must not be modified.
type Template struct {
	ID          string
	Name        string
	Description string
	Theme       Theme
	Variables   []Variable
	Layouts     []Layout
}

// ContentLayouts returns the layouts able to show bullet content, in order
func (t *Template) ContentLayouts() []Layout {
	var out []Layout
	for _, l := range t.Layouts {
		if l.Category.ContentCapable() {
			out = append(out, l)
		}
	}
	return out
}

func palette(bgPrimary, bgSecondary, textPrimary, textSecondary, accent1, accent2, accent3 string) []Variable {
	return []Variable{
		{"--bg-primary", bgPrimary},
		{"--bg-secondary", bgSecondary},
		{"--text-primary", textPrimary},
		{"--text-secondary", textSecondary},
		{"--accent-1", accent1},
		{"--accent-2", accent2},
		{"--accent-3", accent3},
	}
}

var catalog = []*Template{
	{
		ID:          "dark-premium",
		Name:        "Dark Premium",
		Description: "Sophisticated dark design with vibrant gradients",
		Theme:       ThemeDark,
		Variables:   palette("#0f1419", "#1a1f2e", "#ffffff", "#b0b8c1", "#7c5cff", "#00d9ff", "#ff006e"),
		Layouts: []Layout{
			{ID: "title-centered", Name: "Title Centered", Description: "Centered, highlighted title", Category: CategoryTitleOnly, Render: titleCentered},
			{ID: "title-content-left", Name: "Content Left", Description: "Title and content aligned left", Category: CategoryTitleContent, Render: contentLeft},
			{ID: "two-column-split", Name: "Two Column Split", Description: "Content split over two columns", Category: CategoryTwoColumn, Render: twoColumnSplit},
		},
	},
	{
		ID:          "gradient-modern",
		Name:        "Gradient Modern",
		Description: "Modern design with dynamic gradients",
		Theme:       ThemeGradient,
		Variables:   palette("#ffffff", "#f5f7fa", "#1a202c", "#718096", "#6366f1", "#ec4899", "#14b8a6"),
		Layouts: []Layout{
			{ID: "hero-title", Name: "Hero Title", Description: "Hero-style title over a gradient background", Category: CategoryTitleOnly, Render: heroTitle},
			{ID: "content-right", Name: "Content Right", Description: "Content on the right with a clean look", Category: CategoryTitleContent, Render: contentRight},
			{ID: "list-decorated", Name: "Decorated List", Description: "Numbered, decorated list", Category: CategoryList, Render: listDecorated},
		},
	},
	{
		ID:          "minimal-clean",
		Name:        "Minimal Clean",
		Description: "Minimalist, clean design",
		Theme:       ThemeMinimal,
		Variables:   palette("#fafafa", "#f0f0f0", "#000000", "#666666", "#000000", "#cccccc", "#333333"),
		Layouts: []Layout{
			{ID: "minimal-title", Name: "Minimal Title", Description: "Pure minimalist title", Category: CategoryTitleOnly, Render: minimalTitle},
			{ID: "content-simple", Name: "Simple Content", Description: "Simple, elegant content", Category: CategoryTitleContent, Render: contentSimple},
		},
	},
	{
		ID:          "corporate-pro",
		Name:        "Corporate Professional",
		Description: "Corporate, professional design",
		Theme:       ThemeDark,
		Variables:   palette("#1e3a5f", "#2d4a73", "#ffffff", "#b8c5d6", "#3b82f6", "#1e40af", "#93c5fd"),
		Layouts: []Layout{
			{ID: "corporate-title", Name: "Corporate Title", Description: "Corporate title", Category: CategoryTitleOnly, Render: corporateTitle},
			{ID: "corporate-content", Name: "Corporate Content", Description: "Structured corporate content", Category: CategoryTitleContent, Render: corporateContent},
		},
	},
}

// All returns every template in catalog order
func All() []*Template {
	out := make([]*Template, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks up a template
func ByID(id string) (*Template, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}
