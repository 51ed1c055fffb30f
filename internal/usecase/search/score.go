package search

import (
	"github.com/kailas-cloud/lexrag/internal/domain/document"
	"github.com/kailas-cloud/lexrag/internal/domain/token"
)

// titleBonus is added per query token that also appears in the title.
// The sum is not normalized and may push scores above 1.
const titleBonus = 0.2

// Score returns the Jaccard similarity between query and the document's
// title+content tokens, plus titleBonus per query token found in the title.
func Score(query token.Set, doc *document.Document) float64 {
	terms := doc.Terms()
	if query.Len() == 0 || terms.Len() == 0 {
		return 0
	}

	union := query.UnionLen(terms)
	if union == 0 {
		return 0
	}
	jaccard := float64(query.IntersectionLen(terms)) / float64(union)

	return jaccard + float64(query.IntersectionLen(doc.TitleTerms()))*titleBonus
}
