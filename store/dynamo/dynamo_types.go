package dynamo

import (
	"encoding/json"
	"strings"

	"github.com/zlnvch/seodash/models"
)

const (
	skSecret   = "SECRET#"
	skArticle  = "ARTICLE#"
	skAudit    = "AUDIT#"
	skResearch = "RESEARCH#"
	skUsage    = "USAGE#"
	skSettings = "SETTINGS"
)

func userPK(userId string) string {
	return "USER#" + userId
}

type dynamoSecret struct {
	PK               string `dynamodbav:"PK"`
	SK               string `dynamodbav:"SK"`
	EncryptedPayload string `dynamodbav:"EncryptedPayload"`
	Updated          int64  `dynamodbav:"Updated"`
}

func secretToDynamo(s models.Secret) dynamoSecret {
	return dynamoSecret{
		PK:               userPK(s.UserId),
		SK:               skSecret + s.KeyName,
		EncryptedPayload: s.EncryptedPayload,
		Updated:          s.Updated,
	}
}

func secretFromDynamo(ds dynamoSecret) models.Secret {
	return models.Secret{
		UserId:           strings.TrimPrefix(ds.PK, "USER#"),
		KeyName:          strings.TrimPrefix(ds.SK, skSecret),
		EncryptedPayload: ds.EncryptedPayload,
		Updated:          ds.Updated,
	}
}

type dynamoArticle struct {
	PK          string                     `dynamodbav:"PK"`
	SK          string                     `dynamodbav:"SK"`
	Keyword     string                     `dynamodbav:"Keyword"`
	Title       string                     `dynamodbav:"Title"`
	Content     string                     `dynamodbav:"Content"`
	WordCount   int                        `dynamodbav:"WordCount"`
	SeoScore    int                        `dynamodbav:"SeoScore"`
	SeoAnalysis map[string]models.SeoCheck `dynamodbav:"SeoAnalysis"`
	Model       string                     `dynamodbav:"Model"`
	Created     int64                      `dynamodbav:"Created"`
}

func articleToDynamo(a models.Article) dynamoArticle {
	return dynamoArticle{
		PK:          userPK(a.UserId),
		SK:          skArticle + a.Id,
		Keyword:     a.Keyword,
		Title:       a.Title,
		Content:     a.Content,
		WordCount:   a.WordCount,
		SeoScore:    a.SeoScore,
		SeoAnalysis: a.SeoAnalysis,
		Model:       a.Model,
		Created:     a.Created,
	}
}

func articleFromDynamo(da dynamoArticle) models.Article {
	return models.Article{
		Id:          strings.TrimPrefix(da.SK, skArticle),
		UserId:      strings.TrimPrefix(da.PK, "USER#"),
		Keyword:     da.Keyword,
		Title:       da.Title,
		Content:     da.Content,
		WordCount:   da.WordCount,
		SeoScore:    da.SeoScore,
		SeoAnalysis: da.SeoAnalysis,
		Model:       da.Model,
		Created:     da.Created,
	}
}

// Audit detail is kept as JSON blobs so a large crawl stays one compact attribute each.
type dynamoAudit struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	SiteURL     string `dynamodbav:"SiteURL"`
	HealthScore int    `dynamodbav:"HealthScore"`
	Issues      []byte `dynamodbav:"Issues,omitempty"`
	Pages       []byte `dynamodbav:"Pages,omitempty"`
	Similarity  []byte `dynamodbav:"Similarity,omitempty"`
	Created     int64  `dynamodbav:"Created"`
}

func auditToDynamo(run models.AuditRun) (dynamoAudit, error) {
	issues, err := json.Marshal(run.Issues)
	if err != nil {
		return dynamoAudit{}, err
	}
	pages, err := json.Marshal(run.Pages)
	if err != nil {
		return dynamoAudit{}, err
	}
	similarity, err := json.Marshal(run.Similarity)
	if err != nil {
		return dynamoAudit{}, err
	}

	return dynamoAudit{
		PK:          userPK(run.UserId),
		SK:          skAudit + run.Id,
		SiteURL:     run.SiteURL,
		HealthScore: run.HealthScore,
		Issues:      issues,
		Pages:       pages,
		Similarity:  similarity,
		Created:     run.Created,
	}, nil
}

// auditFromDynamo leaves the detail slices nil when the projection skipped them.
func auditFromDynamo(da dynamoAudit) (models.AuditRun, error) {
	run := models.AuditRun{
		Id:          strings.TrimPrefix(da.SK, skAudit),
		UserId:      strings.TrimPrefix(da.PK, "USER#"),
		SiteURL:     da.SiteURL,
		HealthScore: da.HealthScore,
		Created:     da.Created,
	}
	if len(da.Issues) > 0 {
		if err := json.Unmarshal(da.Issues, &run.Issues); err != nil {
			return models.AuditRun{}, err
		}
	}
	if len(da.Pages) > 0 {
		if err := json.Unmarshal(da.Pages, &run.Pages); err != nil {
			return models.AuditRun{}, err
		}
	}
	if len(da.Similarity) > 0 {
		if err := json.Unmarshal(da.Similarity, &run.Similarity); err != nil {
			return models.AuditRun{}, err
		}
	}
	return run, nil
}

type dynamoResearch struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	Kind         string `dynamodbav:"Kind"`
	Query        string `dynamodbav:"Query"`
	LocationCode int    `dynamodbav:"LocationCode"`
	LanguageCode string `dynamodbav:"LanguageCode"`
	Result       []byte `dynamodbav:"Result"`
	Created      int64  `dynamodbav:"Created"`
}

func researchToDynamo(r models.KeywordResearch) dynamoResearch {
	return dynamoResearch{
		PK:           userPK(r.UserId),
		SK:           skResearch + r.Id,
		Kind:         string(r.Kind),
		Query:        r.Query,
		LocationCode: r.LocationCode,
		LanguageCode: r.LanguageCode,
		Result:       r.Result,
		Created:      r.Created,
	}
}

func researchFromDynamo(dr dynamoResearch) models.KeywordResearch {
	return models.KeywordResearch{
		Id:           strings.TrimPrefix(dr.SK, skResearch),
		UserId:       strings.TrimPrefix(dr.PK, "USER#"),
		Kind:         models.ResearchKind(dr.Kind),
		Query:        dr.Query,
		LocationCode: dr.LocationCode,
		LanguageCode: dr.LanguageCode,
		Result:       json.RawMessage(dr.Result),
		Created:      dr.Created,
	}
}

type dynamoSettings struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Overrides string `dynamodbav:"Overrides"`
	Updated   int64  `dynamodbav:"Updated"`
}
