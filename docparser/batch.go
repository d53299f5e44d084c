package docparser

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/giygas/infomed-parser/docparser/entities"
	"github.com/giygas/infomed-parser/logging"
)

// Item pairs a document filename with the CIS it belongs to.
type Item struct {
	Filename string
	CIS      string
}

// BatchStats counts the outcome of a batch run.
type BatchStats struct {
	Parsed int
	Failed int
}

// ParseBatch fans the items out over workers and hands every parsed
// document to sink from a single goroutine, so the sink needs no locking.
// Items that fail to load or parse are logged and skipped; the batch always
// runs to completion. Completion order is not the item order.
func (p *Parser) ParseBatch(items []Item, src Source, workers int, sink func(*entities.ParsedDocument) error) BatchStats {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan Item)
	results := make(chan *entities.ParsedDocument)
	var failed atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				doc, err := p.parseItem(item, src)
				if err != nil {
					logging.Warn("Skipping document", "filename", item.Filename, "cis", item.CIS, "error", err)
					failed.Add(1)
					continue
				}
				results <- doc
			}
		}()
	}

	go func() {
		for _, item := range items {
			jobs <- item
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var stats BatchStats
	for doc := range results {
		if err := sink(doc); err != nil {
			logging.Error("Failed to write parsed document", "filename", doc.Source.Filename, "error", err)
			failed.Add(1)
			continue
		}
		stats.Parsed++
	}
	stats.Failed = int(failed.Load())
	return stats
}

func (p *Parser) parseItem(item Item, src Source) (*entities.ParsedDocument, error) {
	content, err := src.Load(item.Filename)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", item.Filename, err)
	}
	blocks, err := p.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", item.Filename, err)
	}
	return &entities.ParsedDocument{
		Source:  entities.Source{Filename: item.Filename, CIS: item.CIS},
		Content: blocks,
	}, nil
}
