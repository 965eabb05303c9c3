package rag

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "that": {}, "with": {}, "from": {},
	"this": {}, "your": {}, "have": {}, "about": {}, "when": {}, "what": {},
	"where": {}, "which": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "into": {}, "such": {}, "while": {}, "been": {},
	"being": {}, "make": {}, "made": {}, "also": {}, "than": {}, "then": {},
	"them": {},
}

// queryTerms extracts the significant terms of a question: lowercased,
// short tokens and stopwords removed, with light plural folding so
// "membranes" matches "membrane".
func queryTerms(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, raw := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(raw) <= 2 {
			continue
		}
		if _, isStop := stopwords[raw]; isStop {
			continue
		}
		terms[raw] = struct{}{}
		if strings.HasSuffix(raw, "es") && len(raw) > 3 {
			terms[raw[:len(raw)-2]] = struct{}{}
		} else if strings.HasSuffix(raw, "s") && len(raw) > 3 {
			terms[raw[:len(raw)-1]] = struct{}{}
		}
	}
	return terms
}

// lexicalScore computes the normalized overlap between the query terms
// and a chunk: matched terms over total query terms, in [0, 1]. The
// filename participates so questions naming a document get a boost.
func lexicalScore(terms map[string]struct{}, chunkText, filename string) float32 {
	if len(terms) == 0 {
		return 0
	}

	chunkTokens := make(map[string]struct{})
	for _, tok := range wordRe.FindAllString(strings.ToLower(chunkText+" "+filename), -1) {
		chunkTokens[tok] = struct{}{}
		if strings.HasSuffix(tok, "es") && len(tok) > 3 {
			chunkTokens[tok[:len(tok)-2]] = struct{}{}
		} else if strings.HasSuffix(tok, "s") && len(tok) > 3 {
			chunkTokens[tok[:len(tok)-1]] = struct{}{}
		}
	}

	var matched int
	for term := range terms {
		if _, ok := chunkTokens[term]; ok {
			matched++
		}
	}
	return float32(matched) / float32(len(terms))
}

// scoreCandidates fills in the lexical and fused scores for every
// candidate in place. The fused score keeps the semantic term dominant
// so keyword overlap refines, never overrides, vector similarity.
func (e *ragEngine) scoreCandidates(question string, candidates []Candidate) {
	terms := queryTerms(question)
	for i := range candidates {
		c := &candidates[i]
		c.Lexical = lexicalScore(terms, c.Chunk.Text, c.Chunk.Filename)
		c.Fused = e.params.SemanticWeight*(1-c.Distance) + e.params.LexicalWeight*c.Lexical
	}
}
