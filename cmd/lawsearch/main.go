package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"lawsearch/internal/category"
	"lawsearch/internal/config"
	"lawsearch/internal/domain"
	"lawsearch/internal/elastic"
	"lawsearch/internal/explain"
	"lawsearch/internal/logger"
	"lawsearch/internal/pdfext"
	"lawsearch/internal/service"
	"lawsearch/internal/textutil"
	"lawsearch/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath  string
		pdfPath  string
		recreate bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/lawsearch/config.yaml if not provided)")
	flag.StringVar(&pdfPath, "pdf", "", "Path to the source PDF (overrides config)")
	flag.BoolVar(&recreate, "recreate", false, "Drop and rebuild the index before ingesting")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if pdfPath != "" {
		cfg.PDF.Path = pdfPath
	}

	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	// Assemble components via interfaces
	normalizer := textutil.NewNormalizer()
	extractor := pdfext.NewExtractor(normalizer, category.NewClassifier(category.DefaultGroups()...), logger.WithComponent("pdfext"))

	client, err := elastic.NewClient(elastic.Config{
		Host:        cfg.Elasticsearch.Host,
		Port:        cfg.Elasticsearch.Port,
		Username:    cfg.Elasticsearch.Username,
		Password:    cfg.Elasticsearch.Password,
		UseSSL:      cfg.Elasticsearch.UseSSL,
		VerifyCerts: cfg.Elasticsearch.VerifyCerts,
		Index:       cfg.Elasticsearch.Index,
	}, elastic.NewQueryBuilder(cfg.Search.HighlightPreTag, cfg.Search.HighlightPostTag), logger.WithComponent("elastic"))
	if err != nil {
		log.Fatalf("elasticsearch connection failed: %v", err)
	}

	svc := service.New(extractor, client, normalizer, logger.WithComponent("service"))

	ctx := context.Background()
	if err := svc.InitializeIndex(ctx, cfg.PDF.Path, recreate); err != nil {
		log.Fatalf("index initialization failed: %v", err)
	}

	if args := flag.Args(); len(args) > 0 {
		runQuery(ctx, svc, strings.Join(args, " "), cfg.Search)
		return
	}

	m := tui.New(svc, tui.Options{Size: cfg.Search.Size, Explain: cfg.Search.Explain})
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

// runQuery executes a single search and prints the hits, for one-shot
// scripted use without the interactive session.
func runQuery(ctx context.Context, svc *service.SearchService, query string, search config.SearchConfig) {
	results, err := svc.Search(ctx, query, domain.SearchOptions{Size: search.Size, Explain: search.Explain})
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}
	if len(results) == 0 {
		fmt.Printf("no matches for %q\n", query)
		return
	}
	for i, r := range results {
		fmt.Printf("%d. %s (page %d, %s, score %.3f)\n", i+1, r.Record.Title, r.Record.PageNumber, r.Record.Category, r.Score)
		for _, field := range []string{"title", "content"} {
			for _, fragment := range r.Highlights[field] {
				fmt.Printf("   %s\n", fragment)
			}
		}
		if r.Explanation != nil {
			fmt.Println(explain.Render(r.Explanation))
		}
		fmt.Println()
	}
}
