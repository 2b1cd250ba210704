package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/di"
)

// parsedOutput is the JSON shape of one parsed message.
type parsedOutput struct {
	Date        string `json:"date"`
	Subject     string `json:"subject"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	SourceURL   string `json:"source_url,omitempty"`
	RouteTag    string `json:"route_tag,omitempty"`
	RouteSource string `json:"route_source"`
	Preset      string `json:"preset"`
	FeedSlug    string `json:"feed_slug"`
	Category    string `json:"category"`
}

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run parses one message and reports it without touching storage or TTS
func run(flags *di.CLIFlags, logger *zap.Logger, assembler *core.Assembler) error {
	defer logger.Sync()

	raw, err := readInput(flags.InputFile, logger)
	if err != nil {
		return err
	}

	parsed, err := assembler.AssembleTagged(raw, flags.RouteTag, time.Now())
	if err != nil {
		return err
	}

	if flags.JSONOutput {
		out := parsedOutput{
			Date:        parsed.Date,
			Subject:     parsed.Subject,
			Slug:        parsed.Slug,
			Title:       parsed.Title,
			Body:        parsed.Body,
			SourceURL:   parsed.SourceURL,
			RouteTag:    parsed.RouteTag,
			RouteSource: string(parsed.RouteSource),
			Preset:      parsed.Preset.Name,
			FeedSlug:    parsed.Preset.FeedSlug,
			Category:    parsed.Preset.Category,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}

	if flags.WriteText {
		if err := os.MkdirAll(flags.OutputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		path := filepath.Join(flags.OutputDir, fmt.Sprintf("%s-%s.txt", parsed.Date, parsed.Slug))
		if err := os.WriteFile(path, []byte(parsed.Body), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("Body text saved to %s\n", path)
	}

	if !flags.JSONOutput && !flags.WriteText {
		tag := parsed.RouteTag
		if tag == "" {
			tag = "none"
		}
		fmt.Printf("\n=== Parsed Episode ===\n")
		fmt.Printf("Title: %s\n", parsed.Title)
		fmt.Printf("Date: %s\n", parsed.Date)
		fmt.Printf("Route tag: %s\n", tag)
		fmt.Printf("Route source: %s\n", parsed.RouteSource)
		fmt.Printf("Preset: %s\n", parsed.Preset.Name)
		fmt.Printf("Feed: %s\n", parsed.Preset.FeedSlug)
		fmt.Printf("Category: %s\n", parsed.Preset.Category)
		if parsed.SourceURL != "" {
			fmt.Printf("Source URL: %s\n", parsed.SourceURL)
		}
		fmt.Printf("Body length: %d bytes\n", len(parsed.Body))
	}

	return nil
}

func readInput(inputFile string, logger *zap.Logger) ([]byte, error) {
	if inputFile != "" {
		logger.Info("Reading email from file", zap.String("file", inputFile))
		return os.ReadFile(inputFile)
	}
	logger.Info("Reading email from stdin")
	return io.ReadAll(os.Stdin)
}
