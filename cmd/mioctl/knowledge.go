package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindhouselabs/miod/internal/knowledge"
)

var (
	ingestDryRun    bool
	ingestBatchSize int

	searchLimit     int
	searchCategory  string
	searchEmergency bool
)

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check miod server health",
	Long: `Check the health status of the miod HTTP server.

Examples:
  # Check health
  mioctl health

  # Check health on a different server
  mioctl health --server http://localhost:9090`,
	RunE: runHealth,
}

// ingestCmd loads protocol chunks into the knowledge library
var ingestCmd = &cobra.Command{
	Use:   "ingest <records.json>",
	Short: "Ingest protocol chunks into the knowledge library",
	Long: `Ingest a JSON file of protocol chunks into the miod knowledge library.

The file is validated locally, then sent to the server in batches.

Examples:
  # Ingest a protocol library
  mioctl ingest protocols.json

  # Validate without writing anything
  mioctl ingest --dry-run protocols.json

  # Smaller batches for large embeddings
  mioctl ingest --batch-size 20 protocols.json`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

// searchCmd queries the knowledge library
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge library",
	Long: `Search the miod knowledge library for protocol chunks.

Examples:
  # Plain search
  mioctl search "calm down before a meeting"

  # Emergency protocols only
  mioctl search --emergency "panic attack"

  # Restrict to a category
  mioctl search --category nervous_system "vagus nerve"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "validate records without writing")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 50, "records per ingest batch")

	searchCmd.Flags().IntVar(&searchLimit, "limit", 5, "maximum results")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "restrict to a category")
	searchCmd.Flags().BoolVar(&searchEmergency, "emergency", false, "emergency protocols only")
}

// postJSON sends a JSON request to the server and decodes the response.
func postJSON(path string, body, out any) error {
	reqJSON, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := serverURL + path
	req, err := http.NewRequest("POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to %s: %v\n", serverURL, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Server Status: %s\n", health.Status)
	fmt.Printf("Server URL: %s\n", serverURL)
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	records, err := knowledge.LoadRecords(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no records in %s", args[0])
	}

	fmt.Fprintf(os.Stderr, "Loaded %d records from %s\n", len(records), args[0])

	var report knowledge.IngestReport
	err = postJSON("/api/v1/knowledge/ingest", map[string]any{
		"records":    records,
		"batch_size": ingestBatchSize,
		"dry_run":    ingestDryRun,
	}, &report)
	if err != nil {
		return err
	}

	fmt.Printf("Total:    %d\n", report.Total)
	fmt.Printf("Inserted: %d\n", report.Inserted)
	fmt.Printf("Indexed:  %d\n", report.Indexed)
	fmt.Printf("Failed:   %d\n", report.Failed)
	if report.DryRun {
		fmt.Println("(dry run, nothing written)")
	}
	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "  failed: %s #%d: %s\n", f.SourceFile, f.ChunkNumber, f.Reason)
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d records failed validation", report.Failed)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	filter := knowledge.SearchFilter{
		Limit:         searchLimit,
		Category:      searchCategory,
		EmergencyOnly: searchEmergency,
	}

	var out struct {
		Results []knowledge.SearchResult `json:"results"`
	}
	err := postJSON("/api/v1/knowledge/search", map[string]any{
		"query":  args[0],
		"filter": filter,
	}, &out)
	if err != nil {
		return err
	}

	if len(out.Results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range out.Results {
		fmt.Printf("%d. [%.3f] %s (%s)\n", i+1, r.Score, r.SourceFile, r.Source)
		if r.Summary != "" {
			fmt.Printf("   %s\n", r.Summary)
		}
	}
	return nil
}
