package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/giygas/infomed-parser/config"
	"github.com/giygas/infomed-parser/docparser"
	"github.com/giygas/infomed-parser/docparser/entities"
	"github.com/giygas/infomed-parser/interfaces"
	"github.com/giygas/infomed-parser/logging"
	"github.com/giygas/infomed-parser/metrics"
	"github.com/giygas/infomed-parser/pediatric"
	"github.com/giygas/infomed-parser/store"
)

// Compile-time check to ensure CorpusBuilder implements the interface
var _ interfaces.CorpusBuilder = (*CorpusBuilder)(nil)

// CorpusBuilder assembles the in-memory corpus: it resolves document
// filenames through the registry, parses the exports, and classifies
// every RCP.
type CorpusBuilder struct {
	cfg *config.Config
}

// NewCorpusBuilder creates a corpus builder for the given configuration
func NewCorpusBuilder(cfg *config.Config) *CorpusBuilder {
	return &CorpusBuilder{cfg: cfg}
}

// BuildCorpus parses all registry-mapped, authorized documents and
// derives pediatric classifications from the RCPs
func (b *CorpusBuilder) BuildCorpus() (map[string]*entities.ParsedDocument, map[string]*entities.ParsedDocument, map[string]*pediatric.Classification, error) {
	ctx := context.Background()

	reg, err := store.Open(b.cfg.RegistryPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open registry: %w", err)
	}
	defer reg.Close()

	filenameToCIS, err := reg.FilenameToCIS(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load document mapping: %w", err)
	}

	authorized, err := reg.AuthorizedCIS(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load authorized CIS: %w", err)
	}

	atcByCIS, err := reg.ATCByCIS(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load ATC codes: %w", err)
	}

	items, src, err := b.collectItems(filenameToCIS, authorized)
	if err != nil {
		return nil, nil, nil, err
	}

	parser := docparser.New(b.cfg.ImageBaseURL)

	notices := make(map[string]*entities.ParsedDocument)
	rcps := make(map[string]*entities.ParsedDocument)

	// The sink runs on a single goroutine, so plain map writes are safe
	stats := parser.ParseBatch(items, src, b.cfg.Workers, func(doc *entities.ParsedDocument) error {
		switch {
		case strings.HasPrefix(doc.Source.Filename, "N"):
			notices[doc.Source.CIS] = doc
		case strings.HasPrefix(doc.Source.Filename, "R"):
			rcps[doc.Source.CIS] = doc
		}
		return nil
	})

	metrics.DocumentsParsed.WithLabelValues("notice").Add(float64(len(notices)))
	metrics.DocumentsParsed.WithLabelValues("rcp").Add(float64(len(rcps)))
	metrics.DocumentParseFailures.Add(float64(stats.Failed))

	classifications := make(map[string]*pediatric.Classification, len(rcps))
	for cis, doc := range rcps {
		classification := pediatric.Classify(doc, atcByCIS[cis])
		classifications[cis] = classification

		if classification.ConditionA {
			metrics.ClassificationsComputed.WithLabelValues("a").Inc()
		}
		if classification.ConditionB {
			metrics.ClassificationsComputed.WithLabelValues("b").Inc()
		}
		if classification.ConditionC {
			metrics.ClassificationsComputed.WithLabelValues("c").Inc()
		}
	}

	logging.Info("Corpus built",
		"notices", len(notices),
		"rcps", len(rcps),
		"classifications", len(classifications),
		"skipped", stats.Failed)

	return notices, rcps, classifications, nil
}

// collectItems resolves the documents to parse and the source to load
// them from. With a document base URL configured the registry filenames
// are fetched remotely; otherwise the documents directory is globbed.
func (b *CorpusBuilder) collectItems(filenameToCIS map[string]string, authorized map[string]bool) ([]docparser.Item, docparser.Source, error) {
	if b.cfg.DocumentBaseURL != "" {
		items := make([]docparser.Item, 0, len(filenameToCIS))
		for filename, cis := range filenameToCIS {
			if !authorized[cis] {
				continue
			}
			items = append(items, docparser.Item{Filename: filename, CIS: cis})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Filename < items[j].Filename })
		return items, docparser.NewDownloader(b.cfg.DocumentBaseURL), nil
	}

	src := docparser.DirSource{Dir: b.cfg.DocumentsDir}

	var items []docparser.Item
	for _, prefix := range []string{"N", "R"} {
		names, err := src.List(prefix)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list documents: %w", err)
		}
		for _, name := range names {
			cis, ok := filenameToCIS[name]
			if !ok {
				logging.Debug("Skipping unmapped document", "filename", name)
				continue
			}
			if !authorized[cis] {
				logging.Debug("Skipping unauthorized CIS", "filename", name, "cis", cis)
				continue
			}
			items = append(items, docparser.Item{Filename: name, CIS: cis})
		}
	}

	return items, src, nil
}
