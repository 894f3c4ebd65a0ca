// Command rewrite_cli runs the extract → rewrite → diff pipeline against a
// local file, for manual testing without the HTTP server.
//
// Usage:
//
//	go run scripts/rewrite_cli.go document.txt
//	go run scripts/rewrite_cli.go -export out.pdf document.docx
//
// Without ANTHROPIC_API_KEY the lorem provider is used, so the "rewrite"
// is placeholder text; the pipeline mechanics are still exercised.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"redraft/internal/config"
	"redraft/internal/diff"
	"redraft/internal/export"
	"redraft/internal/extract"
	"redraft/internal/service/rewrite"
	"redraft/internal/service/rewrite/capabilities"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
)

func main() {
	exportPath := flag.String("export", "", "write the rewrite to this file (format from extension)")
	model := flag.String("model", "", "override the configured model")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-export out.pdf] [-model name] <document>\n", os.Args[0])
		os.Exit(1)
	}
	path := flag.Arg(0)

	_ = godotenv.Load()
	cfg := config.Load()
	if *model != "" {
		cfg.DefaultModel = *model
	}
	if cfg.AnthropicAPIKey == "" {
		cfg.DefaultModel = "lorem-fast"
		fmt.Println("no ANTHROPIC_API_KEY, using the lorem provider")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	if err := run(cfg, logger, path, *exportPath); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", colorRed, colorReset, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, path, exportPath string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	format, err := extract.DetectFormat(path)
	if err != nil {
		return err
	}

	extractor := extract.New(cfg.MaxUploadBytes, logger)
	text, err := extractor.Extract(context.Background(), data, format)
	if err != nil {
		return err
	}
	fmt.Printf("%s== extracted (%s, %d chars) ==%s\n%s\n\n", colorCyan, format, len(text), colorReset, text)

	registry, err := rewrite.SetupProviders(cfg, logger)
	if err != nil {
		return err
	}
	caps, err := capabilities.NewRegistry()
	if err != nil {
		return err
	}

	svc := rewrite.NewService(registry, caps, cfg, logger)
	result, err := svc.Rewrite(context.Background(), text)
	if err != nil {
		return err
	}
	fmt.Printf("%s== rewrite (%s/%s) ==%s\n", colorCyan, result.Provider, result.Model, colorReset)

	for _, span := range diff.Spans(text, result.Text) {
		switch span.Kind {
		case diff.Added:
			fmt.Print(colorGreen, span.Text, colorReset)
		case diff.Removed:
			fmt.Print(colorRed, span.Text, colorReset)
		default:
			fmt.Print(span.Text)
		}
	}
	fmt.Println()

	if exportPath == "" {
		return nil
	}

	outFormat, err := extract.DetectFormat(exportPath)
	if err != nil {
		return err
	}
	artifact, err := export.Export(result.Text, outFormat, path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(exportPath, artifact.Data, 0644); err != nil {
		return err
	}
	fmt.Printf("%s== exported %d bytes to %s ==%s\n", colorCyan, len(artifact.Data), exportPath, colorReset)
	return nil
}
