package rag

import (
	"strings"
	"testing"

	"notesqa/internal/llm"
)

func chunkWithPage(filename, text string, page *int) *Candidate {
	c := chunk(filename, text)
	c.Page = page
	return &Candidate{Chunk: c}
}

func TestBuildPrompt(t *testing.T) {
	page := 4
	selected := []Candidate{
		{Chunk: chunk("bio.pdf", "The mitochondria is the powerhouse of the cell.")},
		*chunkWithPage("chem.pdf", "Atoms bond by sharing electrons.", &page),
	}

	prompt := buildPrompt("What powers the cell?", selected, false)

	for _, want := range []string{
		"QUESTION: What powers the cell?",
		"[1] bio.pdf",
		"[2] chem.pdf · p.4",
		"mitochondria",
		"[Source: filename]",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, llm.EnrichmentMarker) {
		t.Error("enrichment marker must not appear when enrichment is off")
	}
}

func TestBuildPromptEnrichmentRule(t *testing.T) {
	prompt := buildPrompt("question here", []Candidate{{Chunk: chunk("a.pdf", "text")}}, true)
	if !strings.Contains(prompt, llm.EnrichmentMarker) {
		t.Error("expected the enrichment marker instruction when enrichment is on")
	}
}

func TestBuildPromptEmptyEvidence(t *testing.T) {
	prompt := buildPrompt("question here", nil, false)
	if !strings.Contains(prompt, "No notes provided") {
		t.Error("expected the empty-notes placeholder")
	}
}

func TestBuildPromptRespectsBudget(t *testing.T) {
	big := strings.Repeat("lorem ipsum ", 1000)
	var selected []Candidate
	for i := 0; i < 10; i++ {
		selected = append(selected, Candidate{Chunk: chunk("big.pdf", big)})
	}

	prompt := buildPrompt("question here", selected, false)
	if len(prompt) > contextCharBudget+4000 {
		t.Errorf("prompt blew the context budget: %d chars", len(prompt))
	}
	if !strings.Contains(prompt, "[1] big.pdf") {
		t.Error("at least one snippet must survive the budget")
	}
}

func TestSoftTruncate(t *testing.T) {
	if got := softTruncate("short", 100); got != "short" {
		t.Errorf("expected unchanged text, got %q", got)
	}

	got := softTruncate("alpha beta gamma delta", 12)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
	if strings.Contains(got, "gamma") {
		t.Errorf("expected truncation before the limit, got %q", got)
	}
}
