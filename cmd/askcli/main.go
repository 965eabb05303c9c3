package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
)

var (
	apiURL  = flag.String("api-url", "http://localhost:9000", "Notes QA API base URL")
	userID  = flag.String("user", "", "User ID sent as X-User-ID (required)")
	k       = flag.Int("k", 0, "Evidence count hint, 0 for the server default")
	enrich  = flag.Bool("enrich", false, "Allow the model to add context beyond the notes")
	timeout = flag.Duration("timeout", 90*time.Second, "Per-question timeout")
)

type askRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
	Enrich   bool   `json:"enrich,omitempty"`
}

type askResponse struct {
	Answer         string   `json:"answer"`
	Mode           string   `json:"mode"`
	NotesPart      string   `json:"notes_part"`
	EnrichmentPart string   `json:"enrichment_part"`
	Citations      []string `json:"citations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func main() {
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupts
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nShutting down...")
		cancel()
		os.Exit(0)
	}()

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Println(boldGreen("📚 Notes QA"))
	fmt.Printf("API: %s, user: %s\n", boldCyan(*apiURL), boldCyan(*userID))
	fmt.Println("Type your question and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	client := &http.Client{Timeout: *timeout}
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.ToLower(question) == "exit" {
			break
		}

		resp, err := ask(ctx, client, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			continue
		}

		fmt.Printf("%s %s\n", boldCyan("Answer"), faint("("+resp.Mode+")"))
		fmt.Println(resp.Answer)
		if len(resp.Citations) > 0 {
			fmt.Println(yellow("Sources: " + strings.Join(resp.Citations, ", ")))
		}
		fmt.Println()
	}
}

func ask(ctx context.Context, client *http.Client, question string) (*askResponse, error) {
	body, err := json.Marshal(askRequest{Question: question, K: *k, Enrich: *enrich})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(*apiURL, "/")+"/api/v1/ask", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", *userID)

	httpResp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s (HTTP %d)", apiErr.Error, httpResp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status %d", httpResp.StatusCode)
	}

	var resp askResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}
