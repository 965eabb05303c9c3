package llm

import (
	"regexp"
	"strings"
)

// EnrichmentMarker separates notes-grounded content from supplementary
// content in the raw model output. The generation prompt instructs the
// model to emit it before any material that goes beyond the notes.
const EnrichmentMarker = "<<<ENRICHMENT_START>>>"

var citationLineRe = regexp.MustCompile(`\[Source:\s*([^\]]+)\]`)

// ParseGenerationOutput decodes raw model output into the fixed result
// contract: notes segment, optional enrichment segment, and explicitly
// cited filenames. Markers and citation tags are stripped from the
// display text.
func ParseGenerationOutput(raw string) GenerationResult {
	notes := raw
	enrichment := ""
	if idx := strings.Index(raw, EnrichmentMarker); idx >= 0 {
		notes = raw[:idx]
		enrichment = raw[idx+len(EnrichmentMarker):]
	}

	var cited []string
	seen := make(map[string]struct{})
	for _, match := range citationLineRe.FindAllStringSubmatch(raw, -1) {
		name := strings.TrimSpace(match[1])
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		cited = append(cited, name)
	}

	notes = cleanSegment(notes)
	enrichment = cleanSegment(enrichment)

	text := notes
	if enrichment != "" {
		if text != "" {
			text += "\n\n"
		}
		text += enrichment
	}

	return GenerationResult{
		Text:              text,
		NotesSegment:      notes,
		EnrichmentSegment: enrichment,
		CitedFilenames:    cited,
	}
}

// cleanSegment strips citation tags and collapses leftover blank lines.
func cleanSegment(s string) string {
	s = citationLineRe.ReplaceAllString(s, "")
	lines := strings.Split(s, "\n")
	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" && len(kept) > 0 && kept[len(kept)-1] == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
