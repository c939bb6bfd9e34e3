package service

import (
	"strings"

	"educareer/backend/internal/model"
)

// certificationRule 关键词命中任一课程名即推荐，relevant 决定列出哪些相关课程
type certificationRule struct {
	keywords []string
	relevant []string
	rec      model.CertificationRecommendation
}

var certificationRules = []certificationRule{
	{
		keywords: []string{"data", "machine learning"},
		relevant: []string{"data", "machine"},
		rec: model.CertificationRecommendation{
			ID:          "1",
			Title:       "Google Data Analytics Professional Certificate",
			Description: "Perfect complement to your data-focused curriculum. Learn industry-standard tools like Tableau, R, and SQL.",
			Provider:    "Google via Coursera",
			Duration:    "3-6 months",
			Difficulty:  "beginner",
			Priority:    "high",
		},
	},
	{
		keywords: []string{"web", "programming"},
		relevant: []string{"web", "programming"},
		rec: model.CertificationRecommendation{
			ID:          "2",
			Title:       "AWS Certified Developer Associate",
			Description: "Enhance your web development skills with cloud computing expertise. High demand in the job market.",
			Provider:    "Amazon Web Services",
			Duration:    "2-3 months",
			Difficulty:  "intermediate",
			Priority:    "high",
		},
	},
	{
		keywords: []string{"software", "engineering"},
		relevant: []string{"software", "engineering"},
		rec: model.CertificationRecommendation{
			ID:          "3",
			Title:       "Certified ScrumMaster (CSM)",
			Description: "Learn agile project management methodologies that complement your software engineering studies.",
			Provider:    "Scrum Alliance",
			Duration:    "2-4 weeks",
			Difficulty:  "beginner",
			Priority:    "medium",
		},
	},
	{
		keywords: []string{"database", "sql"},
		relevant: []string{"database"},
		rec: model.CertificationRecommendation{
			ID:          "4",
			Title:       "Microsoft Azure Database Administrator",
			Description: "Specialize in database management with cloud technologies, perfect for your database coursework.",
			Provider:    "Microsoft",
			Duration:    "3-4 months",
			Difficulty:  "intermediate",
			Priority:    "medium",
		},
	},
}

// RecommendCertifications 按课程名关键词（不区分大小写）推荐认证，每条规则至多一次
func RecommendCertifications(subjects []string) []model.CertificationRecommendation {
	lowered := make([]string, len(subjects))
	for i, s := range subjects {
		lowered[i] = strings.ToLower(s)
	}

	result := make([]model.CertificationRecommendation, 0)
	for _, rule := range certificationRules {
		if !anySubjectContains(lowered, rule.keywords) {
			continue
		}
		rec := rule.rec
		rec.RelevantSubjects = make([]string, 0)
		for i, s := range lowered {
			if containsAny(s, rule.relevant) {
				rec.RelevantSubjects = append(rec.RelevantSubjects, subjects[i])
			}
		}
		result = append(result, rec)
	}
	return result
}

func anySubjectContains(subjects, keywords []string) bool {
	for _, s := range subjects {
		if containsAny(s, keywords) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
