package analysis

import (
	"fmt"
	"strings"

	"github.com/zlnvch/seodash/models"
)

const (
	ThinContentWords  = 300
	MinAltCoverage    = 80.0
	MaxHealthScore    = 100
	importantPageNote = "service, location, about and contact pages"
)

var scoreImpacts = map[models.Priority]int{
	models.PriorityCritical: 20,
	models.PriorityHigh:     12,
	models.PriorityMedium:   6,
	models.PriorityLow:      2,
}

func ScoreImpact(p models.Priority) int {
	return scoreImpacts[p]
}

// Rule inspects the homepage signal (and the whole batch when needed) and
// returns an issue, or nil when the page passes.
type Rule func(home models.PageSignal, all []models.PageSignal) *models.AuditIssue

type issueTemplate struct {
	title          string
	description    string
	priority       models.Priority
	category       string
	impact         string
	recommendation string
}

func (t issueTemplate) issue(pageURL string, evidence string) *models.AuditIssue {
	return &models.AuditIssue{
		Title:          t.title,
		Description:    t.description,
		Priority:       t.priority,
		Category:       t.category,
		Evidence:       evidence,
		PageURL:        pageURL,
		Impact:         t.impact,
		Recommendation: t.recommendation,
		ScoreImpact:    ScoreImpact(t.priority),
	}
}

// Rules is the fixed, ordered audit rule list.
var Rules = []Rule{
	ruleMissingTitle,
	ruleMissingH1,
	ruleThinContent,
	ruleMissingBusinessSchema,
	ruleMissingMetaDescription,
	ruleNoGeoKeywords,
	ruleNoContactInfo,
	ruleNoFAQ,
	ruleMissingServiceSchema,
	ruleMissingCanonical,
	ruleLowAltCoverage,
	ruleImportantPageNoindex,
	ruleNoH2,
	ruleMissingBreadcrumbs,
}

// EvaluateRules runs every rule and collects the triggered issues in rule
// order. No rule short-circuits another.
func EvaluateRules(home models.PageSignal, all []models.PageSignal) []models.AuditIssue {
	issues := make([]models.AuditIssue, 0, len(Rules))
	for _, rule := range Rules {
		if issue := rule(home, all); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}

// HealthScore is 100 minus the summed impacts, floored at 0.
func HealthScore(issues []models.AuditIssue) int {
	score := MaxHealthScore
	for _, issue := range issues {
		score -= issue.ScoreImpact
	}
	if score < 0 {
		return 0
	}
	return score
}

// SelectHomepage returns the batch's homepage signal, falling back to the
// first page.
func SelectHomepage(all []models.PageSignal) (models.PageSignal, bool) {
	if len(all) == 0 {
		return models.PageSignal{}, false
	}
	for _, s := range all {
		if s.PageType == models.PageHomepage {
			return s, true
		}
	}
	return all[0], true
}

var (
	missingTitle = issueTemplate{
		title:          "Missing page title",
		description:    "The homepage has no <title> tag.",
		priority:       models.PriorityCritical,
		category:       "on-page",
		impact:         "Search engines fall back to guessed titles and click-through drops.",
		recommendation: "Add a unique title of 50-60 characters that names the main service and location.",
	}
	missingH1 = issueTemplate{
		title:          "Missing H1 heading",
		description:    "The homepage has no <h1> heading.",
		priority:       models.PriorityCritical,
		category:       "on-page",
		impact:         "The primary topic of the page is unclear to search engines and AI answer engines.",
		recommendation: "Add a single H1 that states the core service and area served.",
	}
	thinContent = issueTemplate{
		title:          "Thin content",
		description:    fmt.Sprintf("The homepage has fewer than %d words of visible text.", ThinContentWords),
		priority:       models.PriorityCritical,
		category:       "content",
		impact:         "Thin pages rarely rank and give answer engines nothing to cite.",
		recommendation: "Expand the page with service detail, proof points and local context.",
	}
	missingBusinessSchema = issueTemplate{
		title:          "Missing LocalBusiness or Organization schema",
		description:    "No LocalBusiness or Organization structured data was found.",
		priority:       models.PriorityCritical,
		category:       "schema",
		impact:         "Business details are not machine-readable for rich results or knowledge panels.",
		recommendation: "Add JSON-LD LocalBusiness markup with name, address, phone and opening hours.",
	}
	missingMetaDescription = issueTemplate{
		title:          "Missing meta description",
		description:    "The homepage has no meta description.",
		priority:       models.PriorityHigh,
		category:       "on-page",
		impact:         "Search snippets are generated from arbitrary page text.",
		recommendation: "Write a 140-160 character description with the main service and a call to action.",
	}
	noGeoKeywords = issueTemplate{
		title:          "No location keywords",
		description:    "The homepage text does not mention the areas served.",
		priority:       models.PriorityHigh,
		category:       "geo",
		impact:         "Local and AI-driven searches cannot tie the business to a place.",
		recommendation: "Name the towns, cities or regions served in headings and body copy.",
	}
	noContactInfo = issueTemplate{
		title:          "No contact information",
		description:    "No phone number, email address or postal address was detected.",
		priority:       models.PriorityHigh,
		category:       "trust",
		impact:         "Visitors and search engines cannot verify the business.",
		recommendation: "Show a phone number, email and address on the homepage, ideally in the footer.",
	}
	noFAQ = issueTemplate{
		title:          "No FAQ content",
		description:    "No FAQ section or question-and-answer markup was found.",
		priority:       models.PriorityHigh,
		category:       "geo",
		impact:         "Answer engines favour pages that answer common questions directly.",
		recommendation: "Add an FAQ section covering pricing, coverage area and turnaround questions.",
	}
	missingServiceSchema = issueTemplate{
		title:          "Missing Service schema",
		description:    "No page in the audit declares Service structured data.",
		priority:       models.PriorityMedium,
		category:       "schema",
		impact:         "Individual services are not described in machine-readable form.",
		recommendation: "Add Service JSON-LD to each service page.",
	}
	missingCanonical = issueTemplate{
		title:          "Missing canonical tag",
		description:    "The homepage has no rel=canonical link.",
		priority:       models.PriorityMedium,
		category:       "technical",
		impact:         "Duplicate URL variants can split ranking signals.",
		recommendation: "Add a self-referencing canonical link tag.",
	}
	lowAltCoverage = issueTemplate{
		title:          "Low image alt-text coverage",
		description:    fmt.Sprintf("Fewer than %.0f%% of images have alt text.", MinAltCoverage),
		priority:       models.PriorityMedium,
		category:       "accessibility",
		impact:         "Images are invisible to screen readers and image search.",
		recommendation: "Describe every meaningful image with concise alt text.",
	}
	importantPageNoindex = issueTemplate{
		title:          "Important page blocked from indexing",
		description:    "One or more " + importantPageNote + " carry a noindex directive.",
		priority:       models.PriorityCritical,
		category:       "technical",
		impact:         "Blocked pages cannot rank at all.",
		recommendation: "Remove the noindex robots meta tag from pages that should appear in search.",
	}
	noH2 = issueTemplate{
		title:          "No H2 subheadings",
		description:    "The homepage has no H2 subheadings.",
		priority:       models.PriorityLow,
		category:       "content",
		impact:         "Long content is harder to scan and to split into answerable sections.",
		recommendation: "Break the page into sections with descriptive H2 headings.",
	}
	missingBreadcrumbs = issueTemplate{
		title:          "Missing breadcrumb schema",
		description:    "No page in the audit declares BreadcrumbList structured data.",
		priority:       models.PriorityLow,
		category:       "schema",
		impact:         "Search results cannot show the site hierarchy.",
		recommendation: "Add BreadcrumbList JSON-LD to inner pages.",
	}
)

func ruleMissingTitle(home models.PageSignal, _ []models.PageSignal) *models.AuditIssue {
	if home.Title != "" {
		return nil
	}
	return missingTitle.issue(home.URL, "no <title> element found")
}

func ruleMissingH1(home models.PageSignal, _ []models.PageSignal) *models.AuditIssue {
	if home.H1 != "" {
		return nil
	}
	return missingH1.issue(home.URL, "no <h1> element found")
}

func ruleThinContent(home models.PageSignal, _ []models.PageSignal) *models.AuditIssue {
	if home.WordCount >= ThinContentWords {
		return nil
	}
	return thinContent.issue(home.URL, fmt.Sprintf("%d words of visible text", home.WordCount))
}

func ruleMissingBusinessSchema(home models.PageSignal, _ []models.PageSignal) *models.AuditIssue {
	if home.Schema.LocalBusiness || home.Schema.Organization {
		return nil
	}
	return missingBusinessSchema.issue(home.URL, "no LocalBusiness or Organization @type found")
}

func ruleMissingMetaDescription(home models.PageSignal, _ []models.PageSignal) *models.AuditIssue {
	if home.MetaDescription != "" {
		return nil
	}
	return missingMetaDescription.issue(home.URL, `no <meta name="description"> found`)
}

func ruleNoGeoKeywords(home models.PageSignal, _ []models.PageSignal) *models.AuditIssue {
	if home.HasGeoKeywords {
		return nil
	}
	return noGeoKeywords.issue(home.URL, "no location terms found in visible text")
}

func ruleNoContactInfo(home models.PageSignal, _ []models.PageSignal) *models.AuditIssue {
	if home.HasPhone || home.HasEmail || home.HasAddress {
		return nil
	}
	return noContactInfo.issue(home.URL, "no phone, email or address pattern matched")
}

func ruleNoFAQ(home models.PageSignal, _ []models.PageSignal) *models.AuditIssue {
	if home.HasFAQ || home.Schema.FAQPage {
		return nil
	}
	return noFAQ.issue(home.URL, "no FAQ markup or FAQ wording found")
}

func ruleMissingServiceSchema(home models.PageSignal, all []models.PageSignal) *models.AuditIssue {
	for _, s := range batchOrHome(home, all) {
		if s.Schema.Service {
			return nil
		}
	}
	return missingServiceSchema.issue(home.URL, fmt.Sprintf("checked %d page(s)", len(batchOrHome(home, all))))
}

func ruleMissingCanonical(home models.PageSignal, _ []models.PageSignal) *models.AuditIssue {
	if home.HasCanonical {
		return nil
	}
	return missingCanonical.issue(home.URL, `no <link rel="canonical"> found`)
}

func ruleLowAltCoverage(home models.PageSignal, _ []models.PageSignal) *models.AuditIssue {
	if home.ImageCount == 0 || home.AltCoverage >= MinAltCoverage {
		return nil
	}
	return lowAltCoverage.issue(home.URL, fmt.Sprintf("%d of %d images have alt text (%.0f%%)", home.ImagesWithAlt, home.ImageCount, home.AltCoverage))
}

func ruleImportantPageNoindex(_ models.PageSignal, all []models.PageSignal) *models.AuditIssue {
	var blocked []string
	for _, s := range all {
		if s.Indexable() || !isImportantPage(s.PageType) {
			continue
		}
		blocked = append(blocked, s.URL)
	}
	if len(blocked) == 0 {
		return nil
	}
	return importantPageNoindex.issue(blocked[0], "noindex on: "+strings.Join(blocked, ", "))
}

func ruleNoH2(home models.PageSignal, _ []models.PageSignal) *models.AuditIssue {
	if home.H2Count > 0 {
		return nil
	}
	return noH2.issue(home.URL, "0 <h2> elements")
}

func ruleMissingBreadcrumbs(home models.PageSignal, all []models.PageSignal) *models.AuditIssue {
	if len(all) <= 1 {
		return nil
	}
	for _, s := range all {
		if s.Schema.BreadcrumbList {
			return nil
		}
	}
	return missingBreadcrumbs.issue(home.URL, fmt.Sprintf("none of %d pages declare BreadcrumbList", len(all)))
}

func isImportantPage(t models.PageType) bool {
	switch t {
	case models.PageService, models.PageLocation, models.PageAbout, models.PageContact:
		return true
	}
	return false
}

func batchOrHome(home models.PageSignal, all []models.PageSignal) []models.PageSignal {
	if len(all) == 0 {
		return []models.PageSignal{home}
	}
	return all
}
