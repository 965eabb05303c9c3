package rag

import (
	"fmt"
	"strings"

	"notesqa/internal/llm"
)

const (
	// contextCharBudget bounds the total snippet text placed in one
	// prompt. At least one snippet is always included.
	contextCharBudget = 12000
	// snippetCharLimit bounds a single snippet before it enters the
	// budget accounting.
	snippetCharLimit = 2500
)

// buildPrompt assembles the single generation request: numbered evidence
// snippets under a character budget, followed by the answering rules. The
// rules ask the model to cite sources on [Source: filename] lines and to
// put anything beyond the notes behind the enrichment marker, which is
// what makes the output decodable into the fixed result contract.
func buildPrompt(question string, selected []Candidate, enrich bool) string {
	var blocks []string
	running := 0
	for i, c := range selected {
		text := softTruncate(strings.TrimSpace(c.Chunk.Text), snippetCharLimit)
		if text == "" {
			continue
		}
		head := fmt.Sprintf("[%d] %s", i+1, c.Chunk.Filename)
		if c.Chunk.Page != nil {
			head += fmt.Sprintf(" · p.%d", *c.Chunk.Page)
		}
		piece := head + "\n" + text
		if running+len(piece) > contextCharBudget && len(blocks) > 0 {
			break
		}
		blocks = append(blocks, piece)
		running += len(piece) + 2
	}

	context := "No notes provided"
	if len(blocks) > 0 {
		context = strings.Join(blocks, "\n\n")
	}

	var b strings.Builder
	b.WriteString("You are a warm, student-friendly tutor for a notes Q&A app.\n\n")
	b.WriteString("QUESTION: " + question + "\n\n")
	b.WriteString("NOTES (verbatim chunks):\n<<<NOTES_START>>>\n")
	b.WriteString(context)
	b.WriteString("\n<<<NOTES_END>>>\n\n")
	b.WriteString("RULES:\n")
	b.WriteString("1) Prefer the NOTES over anything else. If the NOTES contain a clear answer, answer from them.\n")
	b.WriteString("2) After each claim grounded in the NOTES, cite its source on its own line as [Source: filename], using the exact filename shown in the snippet header.\n")
	if enrich {
		b.WriteString("3) You may add brief, well-established context beyond the NOTES, but put ALL such content after a single line containing exactly " + llm.EnrichmentMarker + ". Never mix it into the notes-grounded part.\n")
	} else {
		b.WriteString("3) Do not add anything beyond the NOTES. If they do not answer the question, say you could not find an answer in the notes.\n")
	}
	b.WriteString("4) If the NOTES do not answer and you cannot answer with near-certainty, say so; never guess or fabricate.\n")
	b.WriteString("5) Keep the answer concise (2-6 sentences) and free of internal reasoning.\n")
	return b.String()
}

// softTruncate cuts text at a word boundary near the limit, appending an
// ellipsis when anything was dropped.
func softTruncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := text[:max-1]
	if idx := strings.LastIndexAny(cut, " \n\t"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \n\t") + "…"
}
