package rag

import "notesqa/internal/llm"

// classifyMode labels the answer's provenance. The rule is structural:
// no selected evidence means the model answered alone; selected evidence
// plus an enrichment segment means a mixed answer; otherwise the answer
// came from the notes.
func classifyMode(selected []Candidate, result llm.GenerationResult) string {
	if len(selected) == 0 {
		return ModeModelOnly
	}
	if result.EnrichmentSegment == "" {
		return ModeNotesOnly
	}
	return ModeMixed
}

// extractCitations returns the ordered, deduplicated filenames the answer
// is attributed to. Explicitly cited filenames are honored when they match
// the selected evidence; when the model cited nothing usable, every
// selected filename is credited. A filename outside the selected evidence
// is never emitted.
func extractCitations(selected []Candidate, result llm.GenerationResult, mode string) []string {
	if mode == ModeModelOnly {
		return []string{}
	}

	allowed := make(map[string]struct{}, len(selected))
	var all []string
	for _, c := range selected {
		name := c.Chunk.Filename
		if _, ok := allowed[name]; ok {
			continue
		}
		allowed[name] = struct{}{}
		all = append(all, name)
	}

	var cited []string
	seen := make(map[string]struct{})
	for _, name := range result.CitedFilenames {
		if _, ok := allowed[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		cited = append(cited, name)
	}

	if len(cited) == 0 {
		return all
	}
	return cited
}
