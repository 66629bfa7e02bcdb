// File: internal/services/bridge/classifier.go
package bridge

import "strings"

// studyKeywords are matched as plain substrings of the lower-cased title,
// so "pec" also matches "pecuniario".
var studyKeywords = []string{
	"uned",
	"psico",
	"psicología",
	"psicologia",
	"pec",
	"tfg",
	"apuntes",
	"asignaturas",
	"social aplicada",
	"alteración",
	"alteracion",
	"desarrollo",
	"lenguaje",
}

// IsStudyChat reports whether a chat title belongs to the study allow-list.
func IsStudyChat(title string) bool {
	t := strings.ToLower(title)
	for _, keyword := range studyKeywords {
		if strings.Contains(t, keyword) {
			return true
		}
	}
	return false
}
