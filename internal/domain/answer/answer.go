// Package answer turns ranked documents into a readable answer with cited sources.
package answer

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/lexrag/internal/domain/search/result"
)

const (
	// DefaultSnippetChars is the snippet budget in characters.
	DefaultSnippetChars = 240

	// FallbackAnswer is returned when no document scores above zero.
	FallbackAnswer = "No relevant information was found in the knowledge base. Try rephrasing your question."

	leadIn   = "Based on the knowledge base we found:"
	ellipsis = "..."
)

// Source is a cited document in a response.
type Source struct {
	ID      string
	Title   string
	Score   float64
	Snippet string
	Tags    []string
}

// Response is the outcome of one query.
type Response struct {
	Question string
	Answer   string
	Sources  []Source
	// SnapshotID identifies the document collection the response was computed against.
	SnapshotID string
}

// Found reports whether the response cites any source.
func (r *Response) Found() bool { return len(r.Sources) > 0 }

// Synthesizer builds responses from ranked results.
type Synthesizer struct {
	snippetChars int
}

// NewSynthesizer creates a Synthesizer. snippetChars <= 0 selects DefaultSnippetChars.
func NewSynthesizer(snippetChars int) *Synthesizer {
	if snippetChars <= 0 {
		snippetChars = DefaultSnippetChars
	}
	return &Synthesizer{snippetChars: snippetChars}
}

// Synthesize builds the answer for question from selected results in rank order.
func (s *Synthesizer) Synthesize(question string, selected []result.Result) Response {
	if len(selected) == 0 || selected[0].Score() == 0 {
		return Response{
			Question: question,
			Answer:   FallbackAnswer,
			Sources:  []Source{},
		}
	}

	sources := make([]Source, 0, len(selected))
	lines := make([]string, 0, len(selected)+1)
	lines = append(lines, leadIn)
	for i := range selected {
		doc := selected[i].Document()
		snippet := Snippet(doc.Content(), s.snippetChars)
		sources = append(sources, Source{
			ID:      doc.ID(),
			Title:   doc.Title(),
			Score:   RoundScore(selected[i].Score()),
			Snippet: snippet,
			Tags:    doc.Tags(),
		})
		lines = append(lines, "- "+doc.Title()+": "+snippet)
	}

	return Response{
		Question: question,
		Answer:   strings.Join(lines, "\n"),
		Sources:  sources,
	}
}

// Snippet cuts content to limit characters, appending an ellipsis when cut.
// The cut counts code points and ignores word boundaries.
func Snippet(content string, limit int) string {
	n := 0
	for i := range content {
		if n == limit {
			return content[:i] + ellipsis
		}
		n++
	}
	return content
}

// RoundScore rounds a score to three decimal places. Ties on the exact
// binary value go to the even digit, so 0.0625 becomes 0.062.
func RoundScore(score float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(score, 'f', 3, 64), 64)
	if err != nil {
		return score
	}
	return rounded
}
