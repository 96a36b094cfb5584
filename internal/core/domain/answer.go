package domain

// InsufficientInformationAnswer is returned when no chunk is relevant enough to answer.
const InsufficientInformationAnswer = "I apologize, but I couldn't find any relevant information " +
	"to answer your question. Could you please try rephrasing your question or ask about a different topic?"

// AnswerKind tags the variant held by an Answer.
type AnswerKind string

// Available answer kinds.
const (
	// AnswerAnswered means the LLM produced text from retrieved context.
	AnswerAnswered AnswerKind = "answered"

	// AnswerNoContext means nothing passed the similarity threshold; the LLM was not called.
	AnswerNoContext AnswerKind = "no_context"
)

// Source is a cited document in an answer.
type Source struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Similarity float64 `json:"similarity"`
}

// Answer is the outcome of a question.
// Exactly one variant is populated depending on Kind.
type Answer struct {
	Kind AnswerKind

	// Text is the generated answer, or InsufficientInformationAnswer.
	Text string

	// Sources lists cited documents in rank order. Empty for AnswerNoContext.
	Sources []Source

	// MaxSimilarity is the best raw similarity found in the corpus.
	// Only set for AnswerNoContext.
	MaxSimilarity float64
}

// NewAnswered creates an answered result.
func NewAnswered(text string, sources []Source) Answer {
	if sources == nil {
		sources = []Source{}
	}
	return Answer{Kind: AnswerAnswered, Text: text, Sources: sources}
}

// NewNoContext creates an insufficient-information result carrying the diagnostic score.
func NewNoContext(maxSimilarity float64) Answer {
	return Answer{
		Kind:          AnswerNoContext,
		Text:          InsufficientInformationAnswer,
		Sources:       []Source{},
		MaxSimilarity: maxSimilarity,
	}
}

// HasContext returns true if the answer was generated from retrieved context.
func (a Answer) HasContext() bool {
	return a.Kind == AnswerAnswered
}
