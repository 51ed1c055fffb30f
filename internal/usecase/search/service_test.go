package search

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexrag/internal/domain/answer"
	"github.com/kailas-cloud/lexrag/internal/domain/document"
	"github.com/kailas-cloud/lexrag/internal/usecase/store"
)

// --- Mocks ---

type mockLoader struct {
	docs []document.Document
	err  error
}

func (m *mockLoader) Load(_ context.Context) ([]document.Document, error) {
	return m.docs, m.err
}

func newStore(t *testing.T, docs ...document.Document) *store.Store {
	t.Helper()
	s := store.New(&mockLoader{docs: docs}, zap.NewNop())
	if r := s.Load(context.Background()); !r.OK() {
		t.Fatalf("load: %v", r.Err)
	}
	return s
}

func petDocs() []document.Document {
	return []document.Document{
		document.Reconstruct("d1", "Cats", "Cats are small domesticated carnivorous mammals.", []string{}),
		document.Reconstruct("d2", "Dogs", "Dogs are loyal domesticated companions.", []string{}),
	}
}

// --- Tests ---

func TestQuery_WorkedExample(t *testing.T) {
	svc := New(newStore(t, petDocs()...), nil)

	resp := svc.Query(context.Background(), "Tell me about cats", 1)

	if len(resp.Sources) != 1 {
		t.Fatalf("len(Sources) = %d, want 1", len(resp.Sources))
	}
	src := resp.Sources[0]
	if src.ID != "d1" {
		t.Errorf("top source = %q, want d1", src.ID)
	}
	if src.Score != 0.311 {
		t.Errorf("Score = %v, want 0.311", src.Score)
	}
	if !strings.HasPrefix(resp.Answer, "Based on the knowledge base we found:") {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if !strings.Contains(resp.Answer, "\n- Cats: Cats are small domesticated carnivorous mammals.") {
		t.Errorf("Answer missing d1 bullet: %q", resp.Answer)
	}
	if resp.Question != "Tell me about cats" {
		t.Errorf("Question = %q", resp.Question)
	}
}

func TestQuery_NoMatch(t *testing.T) {
	svc := New(newStore(t, petDocs()...), nil)

	resp := svc.Query(context.Background(), "xyznotfound", 3)

	if resp.Answer != answer.FallbackAnswer {
		t.Errorf("Answer = %q, want fallback", resp.Answer)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("Sources = %v, want empty", resp.Sources)
	}
}

func TestQuery_EmptyQuestion(t *testing.T) {
	svc := New(newStore(t, petDocs()...), nil)

	for _, q := range []string{"", "   ", "?!?", "..."} {
		resp := svc.Query(context.Background(), q, 10)
		if resp.Answer != answer.FallbackAnswer || len(resp.Sources) != 0 {
			t.Errorf("Query(%q) = %+v, want fallback", q, resp)
		}
	}
}

func TestQuery_EmptyStore(t *testing.T) {
	s := store.New(&mockLoader{}, zap.NewNop())
	svc := New(s, nil)

	resp := svc.Query(context.Background(), "Tell me about cats", 3)

	if resp.Answer != answer.FallbackAnswer {
		t.Errorf("Answer = %q, want fallback", resp.Answer)
	}
	if resp.SnapshotID == "" {
		t.Error("SnapshotID should be set even for an empty collection")
	}
}

func TestQuery_BoundedCardinality(t *testing.T) {
	var docs []document.Document
	for i := range 8 {
		docs = append(docs, document.Reconstruct(
			fmt.Sprintf("d%d", i), fmt.Sprintf("Note %d", i), "shared words about kubernetes", nil,
		))
	}
	docs = append(docs, document.Reconstruct("other", "Unrelated", "nothing in common", nil))
	svc := New(newStore(t, docs...), nil)

	for topK := 1; topK <= 10; topK++ {
		resp := svc.Query(context.Background(), "kubernetes", topK)
		want := min(topK, 8)
		if len(resp.Sources) != want {
			t.Errorf("topK=%d: len(Sources) = %d, want %d", topK, len(resp.Sources), want)
		}
		for _, src := range resp.Sources {
			if src.Score <= 0 {
				t.Errorf("topK=%d: zero-score source %q", topK, src.ID)
			}
			if src.ID == "other" {
				t.Errorf("topK=%d: unrelated document selected", topK)
			}
		}
	}
}

func TestQuery_TiesFollowLoadOrder(t *testing.T) {
	svc := New(newStore(t,
		document.Reconstruct("z", "Alpha", "same body", nil),
		document.Reconstruct("a", "Alpha", "same body", nil),
		document.Reconstruct("m", "Alpha", "same body", nil),
	), nil)

	resp := svc.Query(context.Background(), "alpha", 3)

	got := []string{resp.Sources[0].ID, resp.Sources[1].ID, resp.Sources[2].ID}
	if !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Errorf("tie order = %v, want load order [z a m]", got)
	}
}

func TestQuery_Deterministic(t *testing.T) {
	svc := New(newStore(t, petDocs()...), nil)

	first := svc.Query(context.Background(), "domesticated cats and dogs", 2)
	for range 20 {
		again := svc.Query(context.Background(), "domesticated cats and dogs", 2)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("non-deterministic response:\n%+v\n%+v", first, again)
		}
	}
}

func TestQuery_SnippetTruncation(t *testing.T) {
	long := strings.Repeat("lorem ipsum ", 40) // 480 chars
	svc := New(newStore(t, document.Reconstruct("long", "Lorem", long, []string{"filler"})), nil)

	resp := svc.Query(context.Background(), "lorem", 1)

	if len(resp.Sources) != 1 {
		t.Fatalf("len(Sources) = %d", len(resp.Sources))
	}
	snippet := resp.Sources[0].Snippet
	if snippet != long[:240]+"..." {
		t.Errorf("Snippet = %q", snippet)
	}
	if resp.Sources[0].Tags[0] != "filler" {
		t.Errorf("Tags = %v", resp.Sources[0].Tags)
	}
}

func TestQuery_CustomSynthesizer(t *testing.T) {
	svc := New(newStore(t, petDocs()...), answer.NewSynthesizer(4))

	resp := svc.Query(context.Background(), "cats", 1)

	if resp.Sources[0].Snippet != "Cats..." {
		t.Errorf("Snippet = %q", resp.Sources[0].Snippet)
	}
}

func TestListDocuments(t *testing.T) {
	svc := New(newStore(t, petDocs()...), nil)

	docs := svc.ListDocuments(context.Background())

	if len(docs) != 2 || docs[0].ID() != "d1" || docs[1].ID() != "d2" {
		t.Errorf("ListDocuments = %v", docs)
	}
	if docs[1].Content() != "Dogs are loyal domesticated companions." {
		t.Errorf("content not verbatim: %q", docs[1].Content())
	}
}

type switchingLoader struct {
	mu   sync.Mutex
	next bool
}

func (l *switchingLoader) Load(_ context.Context) ([]document.Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prefix := "a"
	if l.next {
		prefix = "b"
	}
	l.next = !l.next
	docs := make([]document.Document, 5)
	for i := range docs {
		docs[i] = document.Reconstruct(fmt.Sprintf("%s%d", prefix, i), "Shared topic", "shared", nil)
	}
	return docs, nil
}

func TestQuery_ConsistentSnapshotDuringRefresh(t *testing.T) {
	s := store.New(&switchingLoader{}, zap.NewNop())
	s.Load(context.Background())
	svc := New(s, nil)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				resp := svc.Query(context.Background(), "shared topic", 5)
				prefix := resp.Sources[0].ID[:1]
				for _, src := range resp.Sources {
					if src.ID[:1] != prefix {
						select {
						case errs <- fmt.Sprintf("mixed sources: %v", resp.Sources):
						default:
						}
						return
					}
				}
			}
		}()
	}
	for range 100 {
		s.Refresh(context.Background())
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
