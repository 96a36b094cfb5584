package chunker

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.chunkSize)
		}
		if s.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, s.overlap)
		}
		if s.window != DefaultSentenceWindow {
			t.Errorf("expected window %d, got %d", DefaultSentenceWindow, s.window)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		s := New(WithChunkSize(500), WithOverlap(100), WithSentenceWindow(0))
		if s.ChunkSize() != 500 || s.Overlap() != 100 || s.window != 0 {
			t.Errorf("unexpected config: size=%d overlap=%d window=%d", s.chunkSize, s.overlap, s.window)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		if s.overlap >= s.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1), WithSentenceWindow(-5))
		if s.chunkSize != DefaultChunkSize || s.overlap != DefaultChunkOverlap || s.window != DefaultSentenceWindow {
			t.Errorf("expected defaults, got size=%d overlap=%d window=%d", s.chunkSize, s.overlap, s.window)
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	s := New()
	if chunks := s.Split(""); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty text, got %d", len(chunks))
	}
	if chunks := s.Split("   \n\t  "); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for whitespace, got %d", len(chunks))
	}
}

func TestSplit_ShorterThanChunkSize(t *testing.T) {
	s := New()
	chunks := s.Split("  The Warren Commission report.  \n")

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "The Warren Commission report." {
		t.Errorf("expected trimmed content, got %q", chunks[0].Content)
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
}

func TestSplit_2500CharacterDocument(t *testing.T) {
	s := New()
	text := strings.Repeat("abcdefghij", 250)

	chunks := s.Split(text)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	expected := [][2]int{{0, 1000}, {800, 1800}, {1600, 2500}}
	for i, span := range expected {
		if chunks[i].Start != span[0] || chunks[i].End != span[1] {
			t.Errorf("chunk %d: expected span %v, got [%d,%d)", i, span, chunks[i].Start, chunks[i].End)
		}
		if chunks[i].Content != strings.TrimSpace(chunks[i].Content) || chunks[i].Content == "" {
			t.Errorf("chunk %d should be non-empty and trimmed", i)
		}
	}
}

func TestSplit_SnapsToPeriodBeforeBoundary(t *testing.T) {
	s := New()
	text := strings.Repeat("a", 979) + "." + strings.Repeat("b", 1500)

	chunks := s.Split(text)

	if chunks[0].End != 980 {
		t.Errorf("expected first chunk to end just past the period at 980, got %d", chunks[0].End)
	}
	if !strings.HasSuffix(chunks[0].Content, ".") {
		t.Error("first chunk should end with the period")
	}
	if chunks[1].Start != 780 {
		t.Errorf("expected second chunk to start at 780, got %d", chunks[1].Start)
	}
}

func TestSplit_SnapsToPeriodAfterBoundary(t *testing.T) {
	s := New()
	text := strings.Repeat("a", 1020) + "." + strings.Repeat("b", 1500)

	chunks := s.Split(text)

	if chunks[0].End != 1021 {
		t.Errorf("expected first chunk to end at 1021, got %d", chunks[0].End)
	}
}

func TestSplit_HardCutWhenNoPeriodNearby(t *testing.T) {
	s := New()
	text := strings.Repeat("a", 1200) + "." + strings.Repeat("b", 1000)

	chunks := s.Split(text)

	if chunks[0].End != 1000 {
		t.Errorf("expected hard cut at 1000, got %d", chunks[0].End)
	}
}

func TestSplit_ForwardProgress(t *testing.T) {
	// A wide window and dense periods snap boundaries close to the cursor,
	// so boundary-overlap would not advance without the guard.
	s := New(WithChunkSize(20), WithOverlap(15), WithSentenceWindow(50))
	text := strings.Repeat("a.", 200)

	chunks := s.Split(text)

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	assertInvariants(t, text, chunks, 15)
}

func TestSplit_MultibyteText(t *testing.T) {
	s := New(WithChunkSize(101), WithOverlap(33))
	text := strings.Repeat("é", 500) + strings.Repeat("日本", 100)

	chunks := s.Split(text)

	for _, c := range chunks {
		if !utf8.ValidString(c.Content) {
			t.Errorf("chunk %d is not valid UTF-8", c.Index)
		}
	}
	assertInvariants(t, text, chunks, 33)
}

func TestSplit_MultibyteSizesCountCharacters(t *testing.T) {
	s := New(WithChunkSize(1000), WithOverlap(200), WithSentenceWindow(0))
	text := strings.Repeat("é", 2500)

	chunks := s.Split(text)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if n := utf8.RuneCountInString(chunks[0].Content); n != 1000 {
		t.Errorf("expected first chunk of 1000 characters, got %d", n)
	}
	if chunks[1].Start != len("é")*800 {
		t.Errorf("expected second chunk at byte %d, got %d", len("é")*800, chunks[1].Start)
	}
	assertInvariants(t, text, chunks, 200)
}

func TestSplit_Deterministic(t *testing.T) {
	s := New()
	text := randomText(rand.New(rand.NewSource(7)), 5000)

	first := s.Split(text)
	second := s.Split(text)

	if len(first) != len(second) {
		t.Fatalf("expected identical chunk counts, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplit_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	configs := []struct {
		size, overlap, window int
	}{
		{DefaultChunkSize, DefaultChunkOverlap, DefaultSentenceWindow},
		{100, 20, 10},
		{50, 45, 30},
		{300, 0, 0},
	}

	for _, cfg := range configs {
		s := New(WithChunkSize(cfg.size), WithOverlap(cfg.overlap), WithSentenceWindow(cfg.window))
		for i := 0; i < 25; i++ {
			text := randomText(rng, 1+rng.Intn(6000))
			assertInvariants(t, text, s.Split(text), s.Overlap())
		}
	}
}

// assertInvariants checks contiguous indices, coverage of the input, and bounded overlap.
func assertInvariants(t *testing.T, text string, chunks []domain.ChunkCandidate, overlap int) {
	t.Helper()

	if len(chunks) == 0 {
		if strings.TrimSpace(text) != "" {
			t.Error("non-blank text produced no chunks")
		}
		return
	}

	// Spans dropped for being blank may leave whitespace-only gaps.
	if strings.TrimSpace(text[:chunks[0].Start]) != "" {
		t.Errorf("text before first chunk at %d is not covered", chunks[0].Start)
	}
	if last := chunks[len(chunks)-1]; strings.TrimSpace(text[last.End:]) != "" {
		t.Errorf("text after last chunk at %d is not covered", last.End)
	}

	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("expected index %d, got %d", i, c.Index)
		}
		if c.Content == "" || c.Content != strings.TrimSpace(c.Content) {
			t.Errorf("chunk %d should be non-empty and trimmed", i)
		}
		if c.Content != strings.TrimSpace(text[c.Start:c.End]) {
			t.Errorf("chunk %d content does not match its span", i)
		}
		if i == 0 {
			continue
		}
		prev := chunks[i-1]
		if c.Start > prev.End && strings.TrimSpace(text[prev.End:c.Start]) != "" {
			t.Errorf("gap between chunk %d and %d: [%d,%d) then [%d,%d)", i-1, i, prev.Start, prev.End, c.Start, c.End)
		}
		if c.Start <= prev.Start {
			t.Errorf("chunk %d does not advance past chunk %d", i, i-1)
		}
		if c.Start < prev.End {
			if n := utf8.RuneCountInString(text[c.Start:prev.End]); n > overlap {
				t.Errorf("chunks %d and %d overlap by %d characters, limit %d", i-1, i, n, overlap)
			}
		}
	}
}

func randomText(rng *rand.Rand, n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	var b strings.Builder
	for b.Len() < n {
		switch r := rng.Intn(100); {
		case r < 3:
			b.WriteByte('.')
		case r < 15:
			b.WriteByte(' ')
		default:
			b.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
	}
	return "x" + b.String()[1:]
}
