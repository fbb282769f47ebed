// Package promptgen renders customer-style search questions from fixed
// per-language template sets, one batch per category.
package promptgen

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandscope/brandscope/internal/models"
)

var (
	interrogativeRe = regexp.MustCompile(`(?i)\b(how|what|should|best|which|when)\b`)
	commercialRe    = regexp.MustCompile(`(?i)\b(cost|price|compare|choose|recommend)\b`)
	yesNoRe         = regexp.MustCompile(`(?i)\b(is|are|does|can)\b`)
)

// Generator renders question templates for a run's language and locale.
type Generator struct {
	// MaxPerCategory caps how many questions each category yields.
	// Zero means all available templates.
	MaxPerCategory int
}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders prompts for every category using the run's language,
// country and region. Unknown languages and category names fall back to the
// English Product templates.
func (g *Generator) Generate(input models.RunInput, categories []models.Category) []models.Prompt {
	product := ProductName(input.WebsiteURL)
	now := time.Now().UTC()

	var prompts []models.Prompt
	for _, cat := range categories {
		list := templatesFor(input.Language, cat.Name)
		if g.MaxPerCategory > 0 && len(list) > g.MaxPerCategory {
			list = list[:g.MaxPerCategory]
		}
		for _, tpl := range list {
			question := renderTemplate(tpl, product, input)
			prompts = append(prompts, models.Prompt{
				ID:         uuid.NewString(),
				CategoryID: cat.ID,
				Question:   question,
				Language:   input.Language,
				Country:    input.Country,
				Region:     input.Region,
				Intent:     ClassifyIntent(question),
				CreatedAt:  now,
			})
		}
	}
	return prompts
}

// ProductName derives a display name from the website URL by capitalizing
// the first label of the hostname: "https://acme-tools.io/x" -> "Acme-tools".
func ProductName(websiteURL string) string {
	raw := websiteURL
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "The product"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	label := strings.SplitN(host, ".", 2)[0]
	if label == "" {
		return "The product"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// ClassifyIntent labels buying intent from question phrasing. Questions that
// combine an interrogative with a commercial term signal high intent; plain
// yes/no phrasing signals medium; everything else low.
func ClassifyIntent(question string) string {
	if interrogativeRe.MatchString(question) && commercialRe.MatchString(question) {
		return models.IntentHigh
	}
	if yesNoRe.MatchString(question) {
		return models.IntentMedium
	}
	return models.IntentLow
}

func renderTemplate(tpl, product string, input models.RunInput) string {
	region := input.Region
	if region == "" {
		region = input.Country
	}
	r := strings.NewReplacer(
		"{product}", product,
		"{country}", input.Country,
		"{region}", region,
		"{industry}", "your industry",
		"{competitor}", "its competitors",
		"{tool}", "tool",
	)
	return r.Replace(tpl)
}
