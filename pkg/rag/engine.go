package rag

import (
	"context"
	"fmt"
	"strings"

	"podcast-rag/pkg/embedder"
	"podcast-rag/pkg/index"
	"podcast-rag/pkg/logger"
	"podcast-rag/pkg/rerank"
)

const (
	// retrievalTopK passages are fetched from the index per question.
	retrievalTopK = 10

	// rerankTopN passages survive reranking, when a reranker is configured.
	rerankTopN = 3

	// datePrefixSep joins a passage's episode date to its text so the model
	// can ground its answer in time.
	datePrefixSep = " – "
)

// systemPrompt matches the deployed agent: the podcast is French, so the
// instructions are too.
const systemPrompt = `Vous êtes un assistant conçu pour répondre aux questions sur le podcast 'Not Patrick'.
Utilisez les informations pertinentes des épisodes du podcast pour fournir une réponse complète et conversationnelle.
Chaque information est précédée de sa date d'épisode. Utilisez cette date pour contextualiser votre réponse.
Ne vous contentez pas de répéter le texte brut des sources.
Si vous ne trouvez pas d'information pertinente, indiquez que vous n'avez pas pu trouver l'information dans le podcast.
Soyez amical et engageant.`

// Generator produces the final answer text. Satisfied by llm.OpenAI.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Engine answers questions over the indexed transcripts. Every call is
// independent: there is no conversational memory between questions.
type Engine struct {
	embedder  embedder.Embedder
	index     index.Index
	reranker  rerank.Reranker // nil disables reranking
	generator Generator
	log       *logger.Logger
}

// New builds a retrieval engine. reranker may be nil, in which case the
// top-K retrieved passages pass through unranked.
func New(e embedder.Embedder, ix index.Index, r rerank.Reranker, g Generator, log *logger.Logger) *Engine {
	return &Engine{
		embedder:  e,
		index:     ix,
		reranker:  r,
		generator: g,
		log:       log,
	}
}

// Answer responds to a question about the podcast. It always returns a
// string: failures come back as readable error text, never as an error
// value, so the protocol layer upstream has a single result shape.
func (e *Engine) Answer(ctx context.Context, question string) string {
	answer, err := e.answer(ctx, question)
	if err != nil {
		e.log.WithError(err).Warn("query failed")
		return fmt.Sprintf("Error querying podcast: %s", err)
	}
	return answer
}

func (e *Engine) answer(ctx context.Context, question string) (string, error) {
	vector, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return "", err
	}

	matches, err := e.index.Query(ctx, vector, "", retrievalTopK)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return e.generator.Generate(ctx, systemPrompt, question)
	}

	matches, err = e.rerankMatches(ctx, question, matches)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Contexte:\n")
	for _, m := range matches {
		if m.Metadata.EpisodeDate != "" {
			sb.WriteString(m.Metadata.EpisodeDate)
			sb.WriteString(datePrefixSep)
		}
		sb.WriteString(m.Metadata.ChunkText)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)

	return e.generator.Generate(ctx, systemPrompt, sb.String())
}

func (e *Engine) rerankMatches(ctx context.Context, question string, matches []index.Match) ([]index.Match, error) {
	if e.reranker == nil {
		return matches, nil
	}

	documents := make([]string, len(matches))
	for i, m := range matches {
		documents[i] = m.Metadata.ChunkText
	}

	results, err := e.reranker.Rerank(ctx, question, documents, rerankTopN)
	if err != nil {
		return nil, err
	}

	reranked := make([]index.Match, 0, len(results))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(matches) {
			continue
		}
		m := matches[r.Index]
		m.Score = r.Score
		reranked = append(reranked, m)
	}
	return reranked, nil
}
