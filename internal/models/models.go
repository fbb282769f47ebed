package models

import "time"

// Run status values persisted on AnalysisRun.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Workflow steps, in execution order. A run's Step records the current stage
// of work; failed status is reachable from any step.
const (
	StepSitemap    = "sitemap"
	StepContent    = "content"
	StepCategories = "categories"
	StepPrompts    = "prompts"
	StepExecution  = "execution"
	StepCompleted  = "completed"
)

// AnalysisRun is the root record of one brand-visibility analysis. It is
// created when the workflow starts and mutated at every step transition.
type AnalysisRun struct {
	ID           string    `json:"id"`
	WebsiteURL   string    `json:"website_url"`
	Country      string    `json:"country"`
	Region       string    `json:"region,omitempty"`
	Language     string    `json:"language"`
	Status       string    `json:"status"` // pending, running, completed, failed
	Step         string    `json:"step"`
	Progress     string    `json:"progress,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Category is a topical theme derived from the website's content, either by
// the deterministic generator or by the LLM-assisted path.
type Category struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"` // 0.0 to 1.0
	SourcePages []string `json:"source_pages"`
}

// Prompt intent labels (heuristic, assigned once at generation time).
const (
	IntentLow    = "low"
	IntentMedium = "medium"
	IntentHigh   = "high"
)

// Prompt is one natural-language question a customer might ask an AI
// assistant about the category's topic.
type Prompt struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	Question   string    `json:"question"`
	Language   string    `json:"language"`
	Country    string    `json:"country"`
	Region     string    `json:"region,omitempty"`
	Intent     string    `json:"intent"` // low, medium, high
	CreatedAt  time.Time `json:"created_at"`
}

// Citation is a single web-search-derived source backing part of a response.
type Citation struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// LLMResponse is the answer text plus citations returned for one executed
// prompt. Citations are ordered and de-duplicated by URL.
type LLMResponse struct {
	PromptID   string     `json:"prompt_id"`
	OutputText string     `json:"output_text"`
	Citations  []Citation `json:"citations"`
	Model      string     `json:"model"`
	Timestamp  time.Time  `json:"timestamp"`
}

// BrandMentions holds exact and fuzzy occurrence counts of the brand in a
// response, plus surrounding context snippets (capped at 5).
type BrandMentions struct {
	Exact    int      `json:"exact"`
	Fuzzy    int      `json:"fuzzy"`
	Contexts []string `json:"contexts"`
}

// SentimentResult is the lexicon-based tone classification of a response.
type SentimentResult struct {
	Tone       string   `json:"tone"` // positive, negative, neutral, mixed
	Confidence float64  `json:"confidence"`
	Keywords   []string `json:"keywords"`
}

// CompetitorMention is one detected competitor with mention evidence.
type CompetitorMention struct {
	Name      string   `json:"name"`
	Count     int      `json:"count"`
	Contexts  []string `json:"contexts"`
	Citations []string `json:"citations"`
}

// BrandCitation is a citation attributed to the brand, with the matched
// context sentence and how the attribution was made.
type BrandCitation struct {
	URL        string `json:"url"`
	Context    string `json:"context"`
	MatchedVia string `json:"matched_via"` // text, url
}

// PromptAnalysis is the full structured result of analyzing one
// (prompt, response) pair. It is a pure function of its inputs, so
// recomputation is idempotent.
type PromptAnalysis struct {
	PromptID          string              `json:"prompt_id"`
	BrandMentions     BrandMentions       `json:"brand_mentions"`
	CitationCount     int                 `json:"citation_count"`
	CitationURLs      []string            `json:"citation_urls"`
	BrandCitations    int                 `json:"brand_citations"`
	Competitors       []CompetitorMention `json:"competitors"`
	Sentiment         SentimentResult     `json:"sentiment"`
	IsMentioned       bool                `json:"is_mentioned"`
	MentionCount      int                 `json:"mention_count"`
	IsCited           bool                `json:"is_cited"`
	CitationDetails   []BrandCitation     `json:"citation_details"`
	CompetitorDetails []CompetitorMention `json:"competitor_details"`
	Timestamp         time.Time           `json:"timestamp"`
}

// CategoryMetrics aggregates all prompt analyses of one category.
type CategoryMetrics struct {
	CategoryID            string    `json:"category_id"`
	VisibilityScore       float64   `json:"visibility_score"` // 0 to 100
	CitationRate          float64   `json:"citation_rate"`
	BrandMentionRate      float64   `json:"brand_mention_rate"`
	CompetitorMentionRate float64   `json:"competitor_mention_rate"`
	Timestamp             time.Time `json:"timestamp"`
}

// CompetitiveAnalysis is the run-wide share-of-voice summary. The prompt
// lists hold prompt IDs; white-space topics hold question text.
type CompetitiveAnalysis struct {
	BrandShare          float64            `json:"brand_share"`
	CompetitorShares    map[string]float64 `json:"competitor_shares"`
	WhiteSpaceTopics    []string           `json:"white_space_topics"`
	DominatedPrompts    []string           `json:"dominated_prompts"`
	MissingBrandPrompts []string           `json:"missing_brand_prompts"`
	Timestamp           time.Time          `json:"timestamp"`
}

// AnalysisSummary is an append-only dashboard rollup for one run.
type AnalysisSummary struct {
	RunID            string    `json:"run_id"`
	TotalPrompts     int       `json:"total_prompts"`
	AnalyzedPrompts  int       `json:"analyzed_prompts"`
	MentionedPrompts int       `json:"mentioned_prompts"`
	CitedPrompts     int       `json:"cited_prompts"`
	TotalCitations   int       `json:"total_citations"`
	BrandShare       float64   `json:"brand_share"`
	AvgVisibility    float64   `json:"avg_visibility"`
	Timestamp        time.Time `json:"timestamp"`
}

// Metric names recorded as time series points after each aggregation.
const (
	MetricAvgVisibility = "avg_visibility"
	MetricBrandShare    = "brand_share"
)

// TimeSeriesPoint is one dashboard data point of a metric over time.
type TimeSeriesPoint struct {
	RunID     string    `json:"run_id"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// PageContent is one fetched and cleaned page of the analyzed website.
type PageContent struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Headings string `json:"headings"`
	Content  string `json:"content"`
}

// RunInput is the caller-supplied input that starts a workflow run.
type RunInput struct {
	WebsiteURL string `json:"website_url"`
	Country    string `json:"country"`
	Region     string `json:"region,omitempty"`
	Language   string `json:"language"`
}
