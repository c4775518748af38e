package scraper

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const longParagraph = "We are looking for a backend engineer to build and run our services."

func TestExtract_AllFieldsPresentOnEmptyPage(t *testing.T) {
	posting, err := Extract("", "https://example.com/job/1")
	require.NoError(t, err)
	assert.Equal(t, Posting{Tags: []string{}}, posting)

	raw, err := json.Marshal(posting)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"title", "company", "description", "location", "salary", "tags"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, []any{}, fields["tags"])
}

func TestExtract_Title(t *testing.T) {
	posting, err := Extract("<html><head><title>  Foo \n</title></head><body></body></html>", "")
	require.NoError(t, err)
	assert.Equal(t, "Foo", posting.Title)
}

func TestExtract_CompanyCandidates(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "test id wins",
			html: `<div data-testid="company-name"> Acme Corp </div><span class="company">Other</span>`,
			want: "Acme Corp",
		},
		{
			name: "banned phrase falls through to class",
			html: `<div data-testid="company-name">You may also apply to Acme Corp</div><span class="company-name">Acme Corp</span>`,
			want: "Acme Corp",
		},
		{
			name: "single character rejected",
			html: `<div data-testid="company-name">X</div><a aria-label="Company page">Globex</a>`,
			want: "Globex",
		},
		{
			name: "aria label matched case-insensitively",
			html: `<a aria-label="View COMPANY profile">Initech</a>`,
			want: "Initech",
		},
		{
			name: "too long rejected",
			html: `<div class="company">` + strings.Repeat("a", 100) + `</div>`,
			want: "",
		},
		{
			name: "none",
			html: `<p>nothing here</p>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posting, err := Extract(tt.html, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, posting.Company)
		})
	}
}

func TestExtract_Location(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "test id",
			html: `<span data-testid="job-location">Berlin, Germany</span>`,
			want: "Berlin, Germany",
		},
		{
			name: "clear text rejected",
			html: `<button data-testid="location-input">Clear Text</button><div class="job-location">Paris</div>`,
			want: "Paris",
		},
		{
			name: "missing",
			html: `<div>Remote</div>`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posting, err := Extract(tt.html, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, posting.Location)
		})
	}
}

func TestExtractDescription_SkipsShortBlocks(t *testing.T) {
	doc := mustDoc(t, `<div class="job-description">Too short to count.</div>
<article>
  <p>`+longParagraph+`</p>
  <!-- tracking -->
  <p>  Second&nbsp;paragraph. </p>
</article>`)

	got := extractDescription(doc, "https://example.com/job")
	assert.Equal(t, longParagraph+"\n\nSecond paragraph.", got)
}

func TestExtractDescription_PriorityOrder(t *testing.T) {
	doc := mustDoc(t, `<main><p>`+longParagraph+` (main)</p></main>
<div data-testid="job-description"><p>`+longParagraph+` (test id)</p></div>`)

	got := extractDescription(doc, "")
	assert.Equal(t, longParagraph+" (test id)", got)
}

func TestExtractDescription_MetaFallback(t *testing.T) {
	page := `<html><head><meta name="description" content="Backend role at Acme"></head><body><main>short</main></body></html>`

	assert.Equal(t, "Backend role at Acme", extractDescription(mustDoc(t, page), "https://jobs.example.com/1"))
	assert.Equal(t, "", extractDescription(mustDoc(t, page), "https://www.linkedin.com/jobs/view/1"))
	assert.Equal(t, "", extractDescription(mustDoc(t, "<main>short</main>"), "https://jobs.example.com/1"))
}

func TestExtract_SalaryFromDescription(t *testing.T) {
	page := `<article><p>` + longParagraph + `</p><p>Salary: 50,000-60,000 USD. We offer great benefits.</p></article>`
	posting, err := Extract(page, "")
	require.NoError(t, err)
	assert.Equal(t, "50,000-60,000 USD", posting.Salary)
}

func TestExtractSalary(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{
			name:        "label truncated at period",
			description: "Salary: 50,000-60,000 USD. We offer great benefits.",
			want:        "50,000-60,000 USD",
		},
		{
			name:        "label truncated at newline",
			description: "salary\n  80k - 90k USD\nApply now",
			want:        "80k - 90k USD",
		},
		{
			name:        "label truncated at perks",
			description: "Salary: competitive plus equity Perks include lunch",
			want:        "competitive plus equity",
		},
		{
			name:        "euro range without label",
			description: "Compensation is 40.000 € - 50.000 € per year",
			want:        "40.000 € - 50.000 €",
		},
		{
			name:        "euro range with to",
			description: "Pay: 3.500€ to 4.200€ monthly",
			want:        "3.500€ to 4.200€",
		},
		{
			name:        "label beats euro range",
			description: "Range 40.000 € - 50.000 €\nSalary: 45,000 EUR gross",
			want:        "45,000 EUR gross",
		},
		{
			name:        "label beats euro range even when empty",
			description: "Salary: Benefits are great\n40.000 € - 50.000 €",
			want:        "",
		},
		{
			name:        "astral characters count as two units",
			description: "Salary: \U0001F600\U0001F600",
			want:        "\U0001F600\U0001F600",
		},
		{
			name:        "label span capped at two hundred units",
			description: "Salary: " + strings.Repeat("\U0001F600", 150),
			want:        strings.Repeat("\U0001F600", 100),
		},
		{
			name:        "separator given back to reach five units",
			description: "Salary: abc",
			want:        ": abc",
		},
		{
			name:        "label too close to the end falls back to euro range",
			description: "40.000 € - 50.000 € Salary: ab",
			want:        "40.000 € - 50.000 €",
		},
		{
			name:        "nothing",
			description: "No compensation details here",
			want:        "",
		},
		{
			name:        "empty description",
			description: "",
			want:        "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSalary(tt.description))
		})
	}
}

func TestExtract_TagsDeduplicatedInOrder(t *testing.T) {
	page := `<body>
<span class="tag">Go</span>
<span class="badge">Remote</span>
<li data-testid="skill-tag">Postgres</li>
<span class="tag">Go</span>
<span class="tags-item">Docker</span>
<span class="tag">` + strings.Repeat("x", 40) + `</span>
<span class="tag">   </span>
</body>`
	posting, err := Extract(page, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Remote", "Postgres", "Docker"}, posting.Tags)
}

func TestExtract_MalformedHTML(t *testing.T) {
	page := `<html><head><title>Broken</title><body><div class="location">Lisbon<div><p>unclosed <b>bold`
	posting, err := Extract(page, "")
	require.NoError(t, err)
	assert.Equal(t, "Broken", posting.Title)
	assert.Equal(t, "", posting.Company)
	assert.Equal(t, "", posting.Salary)
	assert.NotNil(t, posting.Tags)
}

func TestTextLen(t *testing.T) {
	assert.Equal(t, 3, textLen("abc"))
	assert.Equal(t, 1, textLen("€"))
	assert.Equal(t, 2, textLen("😀"))
}
