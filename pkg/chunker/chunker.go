package chunker

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"podcast-rag/pkg/domain"
)

// Chunker splits a transcript into coherent passages sized for embedding.
// Passages are built from whole sentences: sentences accumulate until the
// passage reaches the target token count, and the tail sentences of each
// passage are carried into the next one so context is not cut mid-thought.
type Chunker struct {
	encoder *tiktoken.Tiktoken

	targetTokens  int
	overlapTokens int
}

const (
	defaultTargetTokens  = 500
	defaultOverlapTokens = 100
)

// New creates a chunker using the cl100k_base encoding, the tokenizer family
// of the embedding models in use.
func New() (*Chunker, error) {
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding: %w", err)
	}
	return &Chunker{
		encoder:       encoder,
		targetTokens:  defaultTargetTokens,
		overlapTokens: defaultOverlapTokens,
	}, nil
}

// Chunk splits the transcript of an episode into passages. An empty or
// whitespace-only transcript yields no chunks.
func (c *Chunker) Chunk(transcript, episodeTitle, episodeDate string) []domain.Chunk {
	if strings.TrimSpace(transcript) == "" {
		return nil
	}

	sentences := splitSentences(transcript)

	var chunks []domain.Chunk
	var current []string
	currentTokens := 0
	carried := 0 // sentences in current that came from the previous passage

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{
			Text:         strings.Join(current, " "),
			EpisodeTitle: episodeTitle,
			EpisodeDate:  episodeDate,
		})
	}

	for _, sentence := range sentences {
		tokens := len(c.encoder.Encode(sentence, nil, nil))
		current = append(current, sentence)
		currentTokens += tokens

		if currentTokens >= c.targetTokens {
			flush()
			current, currentTokens = c.overlapTail(current)
			carried = len(current)
		}
	}
	// A tail made only of carried-over sentences is already part of the
	// previous passage.
	if len(current) > carried {
		flush()
	}

	return chunks
}

// overlapTail returns the trailing sentences of a finished passage that seed
// the next one, up to the overlap token budget.
func (c *Chunker) overlapTail(sentences []string) ([]string, int) {
	total := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		tokens := len(c.encoder.Encode(sentences[i], nil, nil))
		if total+tokens > c.overlapTokens {
			tail := sentences[i+1:]
			return append([]string(nil), tail...), total
		}
		total += tokens
	}
	// The whole passage fits in the overlap budget; carrying all of it
	// would duplicate the chunk, so start the next one fresh.
	return nil, 0
}

// splitSentences breaks text on sentence-ending punctuation followed by
// whitespace. Spoken-word transcripts have no structure beyond that.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(strings.TrimSpace(text))
	for i, r := range runes {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i == len(runes)-1 || runes[i+1] == ' ' || runes[i+1] == '\n' {
				if s := strings.TrimSpace(b.String()); s != "" {
					sentences = append(sentences, s)
				}
				b.Reset()
			}
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
