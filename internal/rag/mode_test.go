package rag

import (
	"reflect"
	"testing"

	"notesqa/internal/llm"
)

func TestClassifyMode(t *testing.T) {
	withEvidence := []Candidate{{Chunk: chunk("a.pdf", "text")}}

	tests := []struct {
		name     string
		selected []Candidate
		result   llm.GenerationResult
		want     string
	}{
		{
			name:     "no evidence is model only",
			selected: nil,
			result:   llm.GenerationResult{Text: "From general knowledge..."},
			want:     ModeModelOnly,
		},
		{
			name:     "no evidence stays model only even with marker output",
			selected: nil,
			result:   llm.GenerationResult{Text: "x", EnrichmentSegment: "extra"},
			want:     ModeModelOnly,
		},
		{
			name:     "evidence without enrichment is notes only",
			selected: withEvidence,
			result:   llm.GenerationResult{Text: "Answer.", NotesSegment: "Answer."},
			want:     ModeNotesOnly,
		},
		{
			name:     "evidence with enrichment is mixed",
			selected: withEvidence,
			result:   llm.GenerationResult{NotesSegment: "Answer.", EnrichmentSegment: "Context."},
			want:     ModeMixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyMode(tt.selected, tt.result); got != tt.want {
				t.Errorf("classifyMode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractCitations(t *testing.T) {
	selected := []Candidate{
		{Chunk: chunk("bio.pdf", "a")},
		{Chunk: chunk("chem.pdf", "b")},
		{Chunk: chunk("bio.pdf", "c")},
	}

	tests := []struct {
		name   string
		mode   string
		result llm.GenerationResult
		want   []string
	}{
		{
			name:   "model only is always empty",
			mode:   ModeModelOnly,
			result: llm.GenerationResult{CitedFilenames: []string{"bio.pdf"}},
			want:   []string{},
		},
		{
			name:   "cited subset is honored",
			mode:   ModeNotesOnly,
			result: llm.GenerationResult{CitedFilenames: []string{"chem.pdf"}},
			want:   []string{"chem.pdf"},
		},
		{
			name:   "unknown filenames are filtered out",
			mode:   ModeNotesOnly,
			result: llm.GenerationResult{CitedFilenames: []string{"ghost.pdf", "bio.pdf"}},
			want:   []string{"bio.pdf"},
		},
		{
			name:   "no usable citations falls back to all selected",
			mode:   ModeNotesOnly,
			result: llm.GenerationResult{CitedFilenames: []string{"ghost.pdf"}},
			want:   []string{"bio.pdf", "chem.pdf"},
		},
		{
			name:   "empty citations falls back to all selected",
			mode:   ModeMixed,
			result: llm.GenerationResult{},
			want:   []string{"bio.pdf", "chem.pdf"},
		},
		{
			name:   "duplicates are collapsed in order",
			mode:   ModeNotesOnly,
			result: llm.GenerationResult{CitedFilenames: []string{"chem.pdf", "bio.pdf", "chem.pdf"}},
			want:   []string{"chem.pdf", "bio.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractCitations(selected, tt.result, tt.mode)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractCitations() = %v, want %v", got, tt.want)
			}
		})
	}
}
