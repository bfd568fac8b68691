package models

import "encoding/json"

// User is the caller identity resolved from a hosted-auth bearer token.
type User struct {
	Id    string
	Email string
}

type Secret struct {
	UserId           string `json:"-"`
	KeyName          string `json:"keyName"`
	EncryptedPayload string `json:"-"`
	Updated          int64  `json:"updated"`
}

type PageType string

const (
	PageHomepage PageType = "homepage"
	PageService  PageType = "service"
	PageLocation PageType = "location"
	PageAbout    PageType = "about"
	PageContact  PageType = "contact"
	PageBlog     PageType = "blog"
	PageOther    PageType = "other"
)

type SchemaFlags struct {
	LocalBusiness  bool `json:"localBusiness"`
	Organization   bool `json:"organization"`
	Service        bool `json:"service"`
	FAQPage        bool `json:"faqPage"`
	BreadcrumbList bool `json:"breadcrumbList"`
	Review         bool `json:"review"`
}

// PageSignal is the heuristic summary of one fetched HTML document.
type PageSignal struct {
	URL             string      `json:"url"`
	PageType        PageType    `json:"pageType"`
	Title           string      `json:"title"`
	MetaDescription string      `json:"metaDescription"`
	H1              string      `json:"h1"`
	H2Count         int         `json:"h2Count"`
	H3Count         int         `json:"h3Count"`
	WordCount       int         `json:"wordCount"`
	Schema          SchemaFlags `json:"schema"`

	HasGeoKeywords     bool `json:"hasGeoKeywords"`
	HasServiceKeywords bool `json:"hasServiceKeywords"`
	HasPhone           bool `json:"hasPhone"`
	HasEmail           bool `json:"hasEmail"`
	HasAddress         bool `json:"hasAddress"`
	HasFAQ             bool `json:"hasFaq"`
	HasCanonical       bool `json:"hasCanonical"`
	Noindex            bool `json:"noindex"`

	InternalLinks int     `json:"internalLinks"`
	ExternalLinks int     `json:"externalLinks"`
	ImageCount    int     `json:"imageCount"`
	ImagesWithAlt int     `json:"imagesWithAlt"`
	AltCoverage   float64 `json:"altCoverage"`

	TextSignature string `json:"textSignature"`
}

// Indexable reports whether search engines may index the page.
func (p PageSignal) Indexable() bool {
	return !p.Noindex
}

type PageSection struct {
	Title  string `json:"title"`
	Intent string `json:"intent"`
}

// PageDraft is a generated landing page checked for near-duplicates.
type PageDraft struct {
	Slug     string        `json:"slug"`
	H1       string        `json:"h1"`
	Intro    string        `json:"intro"`
	Sections []PageSection `json:"sections"`
}

type SimilarityStatus string

const (
	SimilarityPass SimilarityStatus = "pass"
	SimilarityWarn SimilarityStatus = "warn"
	SimilarityFail SimilarityStatus = "fail"
)

type SimilarityResult struct {
	PageSlug    string           `json:"pageSlug"`
	MatchedSlug string           `json:"matchedSlug"`
	Score       float64          `json:"score"`
	Status      SimilarityStatus `json:"status"`
}

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type AuditIssue struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       Priority `json:"priority"`
	Category       string   `json:"category"`
	Evidence       string   `json:"evidence"`
	PageURL        string   `json:"pageUrl"`
	Impact         string   `json:"impact"`
	Recommendation string   `json:"recommendation"`
	ScoreImpact    int      `json:"scoreImpact"`
}

type AuditRun struct {
	Id          string             `json:"id"`
	UserId      string             `json:"-"`
	SiteURL     string             `json:"siteUrl"`
	HealthScore int                `json:"healthScore"`
	Issues      []AuditIssue       `json:"issues"`
	Pages       []PageSignal       `json:"pages"`
	Similarity  []SimilarityResult `json:"similarity"`
	Created     int64              `json:"created"`
}

type SeoCheck struct {
	Pass    bool   `json:"pass"`
	Message string `json:"message"`
}

type ContentSeoResult struct {
	Title       string              `json:"title"`
	Content     string              `json:"content"`
	WordCount   int                 `json:"wordCount"`
	SeoScore    int                 `json:"seoScore"`
	SeoAnalysis map[string]SeoCheck `json:"seoAnalysis"`
}

type Article struct {
	Id          string              `json:"id"`
	UserId      string              `json:"-"`
	Keyword     string              `json:"keyword"`
	Title       string              `json:"title"`
	Content     string              `json:"content"`
	WordCount   int                 `json:"wordCount"`
	SeoScore    int                 `json:"seoScore"`
	SeoAnalysis map[string]SeoCheck `json:"seoAnalysis"`
	Model       string              `json:"model"`
	Created     int64               `json:"created"`
}

type ResearchKind string

const (
	ResearchVolume ResearchKind = "volume"
	ResearchSERP   ResearchKind = "serp"
	ResearchDomain ResearchKind = "domain"
)

// KeywordResearch is one persisted keyword-volume lookup or SERP snapshot.
type KeywordResearch struct {
	Id           string          `json:"id"`
	UserId       string          `json:"-"`
	Kind         ResearchKind    `json:"kind"`
	Query        string          `json:"query"`
	LocationCode int             `json:"locationCode"`
	LanguageCode string          `json:"languageCode"`
	Result       json.RawMessage `json:"result"`
	Created      int64           `json:"created"`
}

type KeywordMetric struct {
	Keyword          string  `json:"keyword"`
	SearchVolume     int     `json:"searchVolume"`
	CPC              float64 `json:"cpc"`
	Competition      float64 `json:"competition"`
	CompetitionLevel string  `json:"competitionLevel"`
}

type SerpItem struct {
	Rank        int    `json:"rank"`
	Type        string `json:"type"`
	Domain      string `json:"domain"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type DomainMetrics struct {
	Domain          string `json:"domain"`
	Rank            int    `json:"rank"`
	Backlinks       int64  `json:"backlinks"`
	ReferringDomain int64  `json:"referringDomains"`
}

type PerformanceRow struct {
	Keys        []string `json:"keys"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"`
	Position    float64  `json:"position"`
}

type GSCSite struct {
	SiteURL         string `json:"siteUrl"`
	PermissionLevel string `json:"permissionLevel"`
}

type Zone struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Paused bool   `json:"paused"`
}

type DNSRecord struct {
	Id      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

// AvailabilityReport never inspects certificates; the SSL detail fields stay nil.
// The ssl_* keys keep the snake_case names the dashboard already reads.
type AvailabilityReport struct {
	URL              string  `json:"url"`
	Reachable        bool    `json:"reachable"`
	StatusCode       int     `json:"statusCode"`
	ResponseTimeMs   int64   `json:"responseTimeMs"`
	HasRobotsTxt     bool    `json:"hasRobotsTxt"`
	HasSitemap       bool    `json:"hasSitemap"`
	SSLValid         bool    `json:"ssl_valid"`
	SSLIssuer        *string `json:"ssl_issuer"`
	SSLExpiresAt     *string `json:"ssl_expires_at"`
	SSLDaysRemaining *int    `json:"ssl_days_remaining"`
}

// Settings is the effective per-request dashboard configuration.
type Settings struct {
	ContentModel        string  `yaml:"content_model" json:"contentModel"`
	ContentMaxTokens    int     `yaml:"content_max_tokens" json:"contentMaxTokens"`
	Temperature         float64 `yaml:"temperature" json:"temperature"`
	Tone                string  `yaml:"tone" json:"tone"`
	TargetWordCount     int     `yaml:"target_word_count" json:"targetWordCount"`
	DefaultLocationCode int     `yaml:"default_location_code" json:"defaultLocationCode"`
	DefaultLanguageCode string  `yaml:"default_language_code" json:"defaultLanguageCode"`
	AuditMaxPages       int     `yaml:"audit_max_pages" json:"auditMaxPages"`
	SystemPrompt        string  `yaml:"system_prompt" json:"systemPrompt"`
}

// SettingsOverrides holds only the fields a user has changed.
type SettingsOverrides struct {
	ContentModel        *string  `json:"contentModel,omitempty"`
	ContentMaxTokens    *int     `json:"contentMaxTokens,omitempty"`
	Temperature         *float64 `json:"temperature,omitempty"`
	Tone                *string  `json:"tone,omitempty"`
	TargetWordCount     *int     `json:"targetWordCount,omitempty"`
	DefaultLocationCode *int     `json:"defaultLocationCode,omitempty"`
	DefaultLanguageCode *string  `json:"defaultLanguageCode,omitempty"`
	AuditMaxPages       *int     `json:"auditMaxPages,omitempty"`
	SystemPrompt        *string  `json:"systemPrompt,omitempty"`
}

const (
	UsageContentGenerated = "content_generated"
	UsageKeywordLookups   = "keyword_lookups"
	UsageAuditsRun        = "audits_run"
)
