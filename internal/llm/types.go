package llm

// GenerationResult is the decoded output of one generation call. Absent
// segments are empty strings, never probed-for fields: the generation
// prompt asks the model to emit supplementary content behind an explicit
// marker and to cite sources on dedicated lines, and the client decodes
// both into this fixed shape.
type GenerationResult struct {
	// Text is the full display answer with markers and citation lines
	// stripped.
	Text string

	// NotesSegment is the notes-grounded part of the answer. Equal to
	// Text when the model emitted no enrichment marker.
	NotesSegment string

	// EnrichmentSegment is the supplementary part after the enrichment
	// marker. Empty when the model stayed inside the notes.
	EnrichmentSegment string

	// CitedFilenames are the filenames the model explicitly referenced,
	// in order of first mention, deduplicated. May be empty.
	CitedFilenames []string
}
