package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/giygas/infomed-parser/docparser/entities"
)

// NoticesTable and RCPTable are the two content-block tables.
const (
	NoticesTable = "notices_content"
	RCPTable     = "rcp_content"
)

// ContentTable maps a document filename to its content table: N*.htm
// files are notices, R*.htm files are RCP documents.
func ContentTable(filename string) (string, error) {
	switch {
	case strings.HasPrefix(filename, "N"):
		return NoticesTable, nil
	case strings.HasPrefix(filename, "R"):
		return RCPTable, nil
	default:
		return "", fmt.Errorf("cannot determine content table for %q", filename)
	}
}

// ImportDocument replaces the content blocks stored for the document's
// CIS and inserts the parsed block tree, returning the ids of the
// top-level rows. The whole import runs in one transaction.
//
// Blocks with no content, children, or text are skipped. HTML is
// cleaned of anchor wrappers except for table blocks, which keep their
// markup verbatim and whose children are not recursed into.
func (s *Store) ImportDocument(ctx context.Context, doc *entities.ParsedDocument) ([]int64, error) {
	table, err := ContentTable(doc.Source.Filename)
	if err != nil {
		return nil, err
	}
	cis := doc.Source.CIS
	if cis == "" {
		return nil, fmt.Errorf("document %s has no CIS", doc.Source.Filename)
	}

	var ids []int64
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE cis = ?", table), cis); err != nil {
			return err
		}
		inserted, err := insertBlocks(ctx, tx, table, cis, doc.Content, nil)
		if err != nil {
			return err
		}
		ids = inserted
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", doc.Source.Filename, err)
	}
	return ids, nil
}

// insertBlocks inserts one level of blocks and recurses into children,
// linking them through parent_id. Position reflects the block's index
// among its siblings, counting skipped blocks.
func insertBlocks(ctx context.Context, tx *sql.Tx, table, cis string, blocks []*entities.Node, parentID *int64) ([]int64, error) {
	insert := fmt.Sprintf(`INSERT INTO %s (cis, parent_id, position, type, tag, content, text, styles, html)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)

	var ids []int64
	for position, block := range blocks {
		if block == nil || !insertable(block) {
			continue
		}

		html := block.HTML
		if html != "" && block.Type != entities.TypeTable {
			html = CleanHTML(html)
		}

		res, err := tx.ExecContext(ctx, insert,
			cis, parentID, position, block.Type, block.Tag,
			blockContent(block), block.Text, strings.Join(block.Styles, ","), html)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)

		if len(block.Children) > 0 && block.Type != entities.TypeTable {
			if _, err := insertBlocks(ctx, tx, table, cis, block.Children, &id); err != nil {
				return nil, err
			}
		}
	}
	return ids, nil
}

// insertable reports whether a block carries anything worth storing.
func insertable(block *entities.Node) bool {
	return block.Content != "" || len(block.Items) > 0 || len(block.Children) > 0 || block.Text != ""
}

// blockContent flattens a block's content to a single column value.
// Bullet lists store their items joined by newlines.
func blockContent(block *entities.Node) string {
	if len(block.Items) > 0 {
		return strings.Join(block.Items, "\n")
	}
	return block.Content
}
