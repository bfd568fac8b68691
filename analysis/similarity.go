package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/zlnvch/seodash/models"
)

const (
	SimilarityFailThreshold = 0.7
	SimilarityWarnThreshold = 0.5
)

// Signature is the lowercased, whitespace-normalized text of a page draft.
func Signature(page models.PageDraft) string {
	parts := []string{page.H1, page.Intro}
	for _, s := range page.Sections {
		parts = append(parts, s.Title, s.Intent)
	}
	return normalizeSignature(strings.Join(parts, " "))
}

func normalizeSignature(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func tokenSet(signature string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(signature) {
		if utf8.RuneCountInString(tok) > 2 {
			set[tok] = struct{}{}
		}
	}
	return set
}

// Similarity is the Jaccard index of the two signatures' token sets.
func Similarity(a, b string) float64 {
	return jaccard(tokenSet(a), tokenSet(b))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection

	return float64(intersection) / float64(union)
}

func ClassifySimilarity(score float64) models.SimilarityStatus {
	switch {
	case score >= SimilarityFailThreshold:
		return models.SimilarityFail
	case score >= SimilarityWarnThreshold:
		return models.SimilarityWarn
	default:
		return models.SimilarityPass
	}
}

// SignedPage is anything that can be compared by text signature.
type SignedPage struct {
	Slug      string
	Signature string
}

// CompareDrafts finds the closest other draft for every draft in the batch.
func CompareDrafts(pages []models.PageDraft) []models.SimilarityResult {
	signed := make([]SignedPage, len(pages))
	for i, p := range pages {
		signed[i] = SignedPage{Slug: p.Slug, Signature: Signature(p)}
	}
	return CompareSignatures(signed)
}

// CompareSignatures returns one result per page, in input order. When two
// candidates score the same, the one that appears first in the batch wins.
func CompareSignatures(pages []SignedPage) []models.SimilarityResult {
	sets := make([]map[string]struct{}, len(pages))
	for i, p := range pages {
		sets[i] = tokenSet(normalizeSignature(p.Signature))
	}

	results := make([]models.SimilarityResult, len(pages))
	for i, p := range pages {
		best := -1
		bestScore := 0.0
		for j := range pages {
			if i == j {
				continue
			}
			score := jaccard(sets[i], sets[j])
			if best == -1 || score > bestScore {
				best = j
				bestScore = score
			}
		}

		result := models.SimilarityResult{
			PageSlug: p.Slug,
			Score:    bestScore,
			Status:   ClassifySimilarity(bestScore),
		}
		if best >= 0 {
			result.MatchedSlug = pages[best].Slug
		}
		results[i] = result
	}

	return results
}
