// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/poiesic/pdfcorpus"
	"github.com/poiesic/pdfcorpus/config"
	"github.com/poiesic/pdfcorpus/embedding"
	"github.com/poiesic/pdfcorpus/ingestion"
	"github.com/poiesic/pdfcorpus/lexical"
	"github.com/poiesic/pdfcorpus/metadata"
	"github.com/poiesic/pdfcorpus/storage/badger"
	"github.com/urfave/cli/v2"
)

// logLevel is shared by every handler so the process log follows --log-level.
var logLevel = new(slog.LevelVar)

// openCorpus is replaced in tests to inject fake collaborators.
var openCorpus = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pdfcorpus.Corpus, error) {
	return pdfcorpus.Open(ctx, cfg, pdfcorpus.WithLogger(logger))
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML configuration file",
		Value:   "config.yaml",
	}
	envFlag := &cli.StringFlag{
		Name:  "env-file",
		Usage: "Optional .env file with embedding service settings",
		Value: ".env",
	}

	return &cli.App{
		Name:  "pdfcorpus",
		Usage: "Ingest PDF documents into a hybrid dense and lexical retrieval corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest one PDF: chunk, embed, update indexes and record metadata",
				Action: ingestCommand,
				Flags: []cli.Flag{
					configFlag,
					envFlag,
					&cli.StringFlag{
						Name:     "pdf",
						Aliases:  []string{"p"},
						Usage:    "Path to the PDF to ingest",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report embedding progress on stderr",
					},
				},
			},
			{
				Name:   "rebuild-lexical",
				Usage:  "Rebuild the BM25 index from every chunk file",
				Action: rebuildLexicalCommand,
				Flags:  []cli.Flag{configFlag, envFlag},
			},
			{
				Name:   "ledger",
				Usage:  "List ingested documents",
				Action: ledgerCommand,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "catalog",
				Usage:  "Inspect the document catalog",
				Action: catalogCommand,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "hash",
						Usage: "Show the chunks of the document with this sha256",
					},
				},
			},
			{
				Name:   "init-config",
				Usage:  "Write the default configuration",
				Action: initConfigCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Destination path",
						Value:   "config.yaml",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if f := c.String("env-file"); f != "" {
		if err := config.LoadEnv(f); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogFile(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open process log: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(io.MultiWriter(os.Stderr, logFile), &slog.HandlerOptions{
		Level: logLevel,
	}))

	corpus, err := openCorpus(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer corpus.Close()

	var opts []ingestion.Option
	if c.Bool("progress") {
		opts = append(opts, ingestion.WithGeneratorOptions(embedding.WithProgress(os.Stderr)))
	}

	res, err := corpus.Ingest(ctx, c.String("pdf"), opts...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	out := c.App.Writer
	if res.Skipped {
		fmt.Fprintf(out, "%s already ingested (sha256 %s), nothing to do\n", res.Document.Name, res.Document.Hash)
		return nil
	}
	fmt.Fprintf(out, "OK: %s processed | chunks=%d | lexical docs=%d\n", res.Document.Name, res.Chunks, res.LexicalDocs)
	for _, m := range res.Models {
		fmt.Fprintf(out, "  %s: +%d vectors (dim %d), index total %d\n", m.Name, m.Vectors, m.Dim, m.IndexTotal)
	}
	return nil
}

func rebuildLexicalCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	stats, err := lexical.Rebuild(c.Context, cfg.Paths.Chunks, cfg.Paths.BM25, slog.Default())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "BM25 rebuilt: %d chunks from %d files, %d terms\n", stats.Chunks, stats.Files, stats.Terms)
	return nil
}

func ledgerCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	ledger, err := metadata.LoadLedger(cfg.LedgerFile(), slog.Default())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSHA256\tPDF")
	for _, e := range ledger.Entries() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.DateIndexed, e.Hash, e.Document)
	}
	return w.Flush()
}

func catalogCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if cfg.Paths.Catalog == "" {
		return errors.New("catalog is disabled in the configuration")
	}

	backend, err := badger.OpenBackend(cfg.Paths.Catalog)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer backend.Close()
	catalog, err := badger.NewCatalogRepository(backend)
	if err != nil {
		return err
	}
	defer catalog.Close()

	ctx := c.Context
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	if hash := c.String("hash"); hash != "" {
		doc, err := catalog.GetDocument(ctx, hash)
		if err != nil {
			return err
		}
		chunks, err := catalog.GetChunks(ctx, hash)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d pages\t%d chunks\t%s\n", doc.Name, doc.PageCount, doc.ChunkCount, strings.Join(doc.Models, ","))
		fmt.Fprintln(w, "CHUNK\tWORDS\tPAGES\tTITLES")
		for _, ch := range chunks {
			fmt.Fprintf(w, "%d\t%d\t%v\t%s\n", ch.Index, ch.WordCount, ch.Pages, strings.Join(ch.Titles, " | "))
		}
		return w.Flush()
	}

	docs, err := catalog.ListDocuments(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "DATE\tCHUNKS\tSHA256\tPDF")
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", d.DateIndexed, d.ChunkCount, d.Hash, d.Name)
	}
	return w.Flush()
}

func initConfigCommand(c *cli.Context) error {
	out := c.String("out")
	if _, err := os.Stat(out); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", out)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := config.Default().Save(out); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	switch levelStr {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	return nil
}
