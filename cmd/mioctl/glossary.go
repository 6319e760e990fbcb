package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mindhouselabs/miod/internal/glossary"
)

var (
	glossaryOutput   string
	glossaryMaxTerms int
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Glossary maintenance",
	Long:  `Deduplicate glossary files and apply inline definitions to protocol text.`,
}

var glossaryDedupCmd = &cobra.Command{
	Use:   "dedup <glossary.json>",
	Short: "Remove duplicate glossary terms",
	Long: `Remove case-insensitive duplicate terms from a glossary file, keeping
the richest entry of each set.

Examples:
  # Report duplicates without writing
  mioctl glossary dedup glossary.json

  # Write the cleaned glossary
  mioctl glossary dedup --output glossary-clean.json glossary.json`,
	Args: cobra.ExactArgs(1),
	RunE: runGlossaryDedup,
}

var glossaryApplyCmd = &cobra.Command{
	Use:   "apply <glossary.json> <text-file>",
	Short: "Inject inline definitions into protocol text",
	Long: `Inject {{term||definition}} tooltips into a text file and report the
reading level before and after.

Examples:
  mioctl glossary apply glossary.json chunk.md
  mioctl glossary apply --max-terms 3 glossary.json chunk.md`,
	Args: cobra.ExactArgs(2),
	RunE: runGlossaryApply,
}

func init() {
	glossaryDedupCmd.Flags().StringVar(&glossaryOutput, "output", "", "write the deduplicated glossary to this file")
	glossaryApplyCmd.Flags().IntVar(&glossaryMaxTerms, "max-terms", glossary.DefaultMaxTerms, "maximum tooltips per chunk")

	glossaryCmd.AddCommand(glossaryDedupCmd)
	glossaryCmd.AddCommand(glossaryApplyCmd)
}

func runGlossaryDedup(cmd *cobra.Command, args []string) error {
	entries, err := glossary.Load(args[0])
	if err != nil {
		return err
	}

	kept, report := glossary.Deduplicate(entries)

	fmt.Printf("Original:     %d\n", report.Original)
	fmt.Printf("Deduplicated: %d\n", report.Deduplicated)
	fmt.Printf("Removed:      %d\n", report.Removed)
	for _, term := range report.DuplicateSets {
		fmt.Printf("  duplicate: %s\n", term)
	}

	if glossaryOutput == "" {
		return nil
	}
	data, err := json.MarshalIndent(kept, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal glossary: %w", err)
	}
	if err := os.WriteFile(glossaryOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", glossaryOutput, err)
	}
	fmt.Printf("Wrote %s\n", glossaryOutput)
	return nil
}

func runGlossaryApply(cmd *cobra.Command, args []string) error {
	entries, err := glossary.Load(args[0])
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[1], err)
	}
	text := string(raw)

	before := glossary.ReadingLevel(text)
	applied, terms := glossary.Apply(text, entries, glossaryMaxTerms)
	after := glossary.ReadingLevel(applied)

	fmt.Print(applied)
	fmt.Fprintf(os.Stderr, "\n[mioctl] %d term(s) injected, reading level %.2f -> %.2f\n",
		len(terms), before, after)

	for _, issue := range glossary.Inspect(applied, before, after) {
		fmt.Fprintf(os.Stderr, "[mioctl] warning: %s\n", issue)
	}
	return nil
}
