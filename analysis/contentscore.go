package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zlnvch/seodash/models"
)

const (
	baseSeoScore    = 50
	maxSeoScore     = 100
	minDensity      = 1.0
	maxDensity      = 3.0
	minArticleWords = 1000
	minHeaders      = 3
)

const (
	CheckKeywordInTitle = "keywordInTitle"
	CheckKeywordDensity = "keywordDensity"
	CheckContentLength  = "contentLength"
	CheckHeaders        = "headers"
)

var markdownHeader = regexp.MustCompile(`(?m)^[ \t]{0,3}#{2,3}[ \t]+\S`)

// ScoreContent grades an article against a fixed SEO checklist. The result
// depends only on its inputs.
func ScoreContent(title string, content string, keyword string) models.ContentSeoResult {
	keyword = strings.TrimSpace(keyword)
	lowerKeyword := strings.ToLower(keyword)

	wordCount := CountWords(content)
	occurrences := 0
	if lowerKeyword != "" {
		occurrences = strings.Count(strings.ToLower(content), lowerKeyword)
	}
	density := 0.0
	if wordCount > 0 {
		density = float64(occurrences) * 100 / float64(wordCount)
	}
	headers := len(markdownHeader.FindAllStringIndex(content, -1))

	score := baseSeoScore
	analysis := make(map[string]models.SeoCheck, 4)

	inTitle := lowerKeyword != "" && strings.Contains(strings.ToLower(title), lowerKeyword)
	if inTitle {
		score += 15
		analysis[CheckKeywordInTitle] = models.SeoCheck{Pass: true, Message: fmt.Sprintf("Title contains %q.", keyword)}
	} else {
		analysis[CheckKeywordInTitle] = models.SeoCheck{Pass: false, Message: fmt.Sprintf("Add %q to the title.", keyword)}
	}

	if density >= minDensity && density <= maxDensity {
		score += 15
		analysis[CheckKeywordDensity] = models.SeoCheck{Pass: true, Message: fmt.Sprintf("Keyword density is %.2f%%, within %.0f-%.0f%%.", density, minDensity, maxDensity)}
	} else {
		analysis[CheckKeywordDensity] = models.SeoCheck{Pass: false, Message: fmt.Sprintf("Keyword density is %.2f%%; aim for %.0f-%.0f%%.", density, minDensity, maxDensity)}
	}

	if wordCount >= minArticleWords {
		score += 10
		analysis[CheckContentLength] = models.SeoCheck{Pass: true, Message: fmt.Sprintf("%d words meets the %d word minimum.", wordCount, minArticleWords)}
	} else {
		analysis[CheckContentLength] = models.SeoCheck{Pass: false, Message: fmt.Sprintf("%d words; expand to at least %d.", wordCount, minArticleWords)}
	}

	if headers >= minHeaders {
		score += 10
		analysis[CheckHeaders] = models.SeoCheck{Pass: true, Message: fmt.Sprintf("%d H2/H3 headers structure the article.", headers)}
	} else {
		analysis[CheckHeaders] = models.SeoCheck{Pass: false, Message: fmt.Sprintf("%d H2/H3 headers; use at least %d.", headers, minHeaders)}
	}

	if score > maxSeoScore {
		score = maxSeoScore
	}

	return models.ContentSeoResult{
		Title:       title,
		Content:     content,
		WordCount:   wordCount,
		SeoScore:    score,
		SeoAnalysis: analysis,
	}
}
