package analysis

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/zlnvch/seodash/models"
)

var (
	phonePattern   = regexp.MustCompile(`(?:\+44\s?\(?0?\)?\s?\d{2,5}|\(?0\d{2,5}\)?)[\s.-]?\d{3,4}[\s.-]?\d{3,4}`)
	emailPattern   = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	streetPattern  = regexp.MustCompile(`(?i)\b\d{1,4}[a-z]?,?\s+(?:[a-z'-]+\s+){1,3}(?:street|st|road|rd|avenue|ave|lane|ln|drive|dr|close|way|crescent|place|court|square|terrace|grove|gardens|parade|hill|row|mews)\b`)
	postcodeFormat = regexp.MustCompile(`\b[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}\b`)
)

// Elements whose text never reaches the reader.
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"title":    true,
	"#comment": true,
}

var schemaTypes = map[string]*regexp.Regexp{
	"LocalBusiness":  schemaTypePattern("LocalBusiness"),
	"Organization":   schemaTypePattern("Organization"),
	"Service":        schemaTypePattern("Service"),
	"FAQPage":        schemaTypePattern("FAQPage"),
	"BreadcrumbList": schemaTypePattern("BreadcrumbList"),
	"Review":         schemaTypePattern("Review"),
}

func schemaTypePattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`"@type"\s*:\s*(?:"` + name + `"|\[[^\]]*"` + name + `")|schema\.org/` + name + `\b`)
}

// Location-intent phrases a local page is expected to carry.
var geoKeywords = []string{
	"near me", "local", "areas we cover", "areas we serve", "service area",
	"serving", "based in", "across", "nearby", "county", "town", "city",
	"london", "manchester", "birmingham", "leeds", "glasgow", "liverpool",
	"bristol", "sheffield", "edinburgh", "cardiff", "newcastle", "york",
}

var serviceKeywords = []string{
	"services", "service", "repair", "repairs", "installation", "install",
	"maintenance", "emergency", "consultation", "quote", "specialist",
	"professional", "solutions", "treatment",
}

var pageTypeKeywords = []struct {
	pageType models.PageType
	keywords []string
}{
	{models.PageService, []string{"service", "what-we-do", "treatments", "solutions"}},
	{models.PageLocation, []string{"location", "areas", "area", "near-me", "coverage", "branches"}},
	{models.PageAbout, []string{"about", "our-story", "team", "who-we-are"}},
	{models.PageContact, []string{"contact", "get-in-touch", "enquiry", "find-us"}},
	{models.PageBlog, []string{"blog", "news", "article", "insights", "guides", "posts"}},
}

// ExtractSignals summarizes one HTML document. Fields that cannot be found
// are left at their zero value; malformed markup never causes an error.
func ExtractSignals(rawHTML string, sourceURL string) models.PageSignal {
	signal := models.PageSignal{
		URL:         sourceURL,
		PageType:    ClassifyPageType(sourceURL),
		AltCoverage: 100,
	}

	doc, err := parseHTML(rawHTML)
	if err != nil {
		return signal
	}

	signal.Title = cleanText(doc.Find("title").First().Text())
	signal.H1 = cleanText(doc.Find("h1").First().Text())

	var h2Texts []string
	doc.Find("h2").Each(func(_ int, h2 *goquery.Selection) {
		h2Texts = append(h2Texts, cleanText(h2.Text()))
	})
	signal.H2Count = len(h2Texts)
	signal.H3Count = doc.Find("h3").Length()

	doc.Find("meta[name]").Each(func(_ int, meta *goquery.Selection) {
		name := strings.ToLower(meta.AttrOr("name", ""))
		content := meta.AttrOr("content", "")
		switch {
		case name == "description" && signal.MetaDescription == "":
			signal.MetaDescription = cleanText(content)
		case name == "robots" || name == "googlebot":
			if strings.Contains(strings.ToLower(content), "noindex") {
				signal.Noindex = true
			}
		}
	})

	doc.Find("link[rel]").Each(func(_ int, link *goquery.Selection) {
		for _, rel := range strings.Fields(strings.ToLower(link.AttrOr("rel", ""))) {
			if rel == "canonical" {
				signal.HasCanonical = true
			}
		}
	})

	signal.Schema = schemaFlags(rawHTML)

	text := visibleText(doc)
	lowerText := strings.ToLower(text)
	signal.WordCount = CountWords(text)
	signal.HasGeoKeywords = containsAny(lowerText, geoKeywords)
	signal.HasServiceKeywords = containsAny(lowerText, serviceKeywords)

	links := countLinks(doc, sourceURL)
	signal.InternalLinks, signal.ExternalLinks = links.internal, links.external

	signal.HasPhone = links.tel || phonePattern.MatchString(text)
	signal.HasEmail = links.mailto || emailPattern.MatchString(text)
	signal.HasAddress = streetPattern.MatchString(text) || postcodeFormat.MatchString(text)

	signal.HasFAQ = doc.Find(`details, dt, [class*="faq"], [class*="FAQ"], [id*="faq"]`).Length() > 0 ||
		strings.Contains(lowerText, "faq") ||
		strings.Contains(lowerText, "frequently asked")

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		signal.ImageCount++
		if strings.TrimSpace(img.AttrOr("alt", "")) != "" {
			signal.ImagesWithAlt++
		}
	})
	if signal.ImageCount > 0 {
		signal.AltCoverage = float64(signal.ImagesWithAlt) * 100 / float64(signal.ImageCount)
	}

	parts := append([]string{signal.H1, signal.MetaDescription}, h2Texts...)
	signal.TextSignature = normalizeSignature(strings.Join(parts, " "))

	return signal
}

func parseHTML(rawHTML string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
}

// schemaFlags matches "@type" declarations and schema.org type URLs anywhere
// in the markup, so JSON-LD with a charset parameter, inline app state and
// microdata all count.
func schemaFlags(rawHTML string) models.SchemaFlags {
	return models.SchemaFlags{
		LocalBusiness:  schemaTypes["LocalBusiness"].MatchString(rawHTML),
		Organization:   schemaTypes["Organization"].MatchString(rawHTML),
		Service:        schemaTypes["Service"].MatchString(rawHTML),
		FAQPage:        schemaTypes["FAQPage"].MatchString(rawHTML),
		BreadcrumbList: schemaTypes["BreadcrumbList"].MatchString(rawHTML),
		Review:         schemaTypes["Review"].MatchString(rawHTML),
	}
}

// ClassifyPageType picks a page type from URL path keywords. The first
// matching type in precedence order wins.
func ClassifyPageType(rawURL string) models.PageType {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.ToLower(strings.Trim(path, "/"))
	if path == "" || path == "index.html" || path == "index.php" {
		return models.PageHomepage
	}

	for _, entry := range pageTypeKeywords {
		if containsAny(path, entry.keywords) {
			return entry.pageType
		}
	}
	return models.PageOther
}

// VisibleText drops scripts, styles, the title and comments, then joins the
// remaining text with whitespace collapsed.
func VisibleText(rawHTML string) string {
	doc, err := parseHTML(rawHTML)
	if err != nil {
		return ""
	}
	return visibleText(doc)
}

func visibleText(doc *goquery.Document) string {
	var parts []string
	collectText(doc.Selection, &parts)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		name := goquery.NodeName(child)
		switch {
		case name == "#text":
			*parts = append(*parts, child.Text())
		case hiddenElements[name]:
		default:
			collectText(child, parts)
		}
	})
}

// CountWords counts whitespace-separated tokens that contain at least one
// letter or digit.
func CountWords(text string) int {
	count := 0
	for _, tok := range strings.Fields(text) {
		if strings.IndexFunc(tok, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
			count++
		}
	}
	return count
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type linkCounts struct {
	internal int
	external int
	tel      bool
	mailto   bool
}

func countLinks(doc *goquery.Document, sourceURL string) linkCounts {
	var counts linkCounts

	base, err := url.Parse(sourceURL)
	if err != nil {
		base = &url.URL{}
	}
	baseHost := normalizeHost(base.Hostname())

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		lower := strings.ToLower(href)
		switch {
		case strings.HasPrefix(lower, "tel:"):
			counts.tel = true
			return
		case strings.HasPrefix(lower, "mailto:"):
			counts.mailto = true
			return
		case strings.HasPrefix(lower, "javascript:"):
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		target := base.ResolveReference(ref)
		host := normalizeHost(target.Hostname())
		if host == "" || host == baseHost {
			counts.internal++
		} else {
			counts.external++
		}
	})
	return counts
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
