package pediatric

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// evidenceLimit caps each evidence snippet written to the predictions CSV.
const evidenceLimit = 200

// WritePredictions writes one CSV row per classification with its
// explainability columns. Truth and match columns appear only when a
// ground truth table was loaded; rows whose CIS has no ground truth entry
// leave them empty.
func WritePredictions(w io.Writer, predictions []*Classification, groundTruth map[string]GroundTruthEntry) error {
	writer := csv.NewWriter(w)

	withTruth := len(groundTruth) > 0
	header := []string{"cis", "pred_A", "pred_B", "pred_C"}
	if withTruth {
		header = append(header, "truth_A", "truth_B", "truth_C", "match_A", "match_B", "match_C")
	}
	header = append(header, "c_reasons", "keywords_41_42", "keywords_43", "evidence_41_42", "evidence_43")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write predictions header: %w", err)
	}

	for _, pred := range predictions {
		row := []string{pred.CIS, boolFlag(pred.ConditionA), boolFlag(pred.ConditionB), boolFlag(pred.ConditionC)}
		if withTruth {
			if gt, ok := groundTruth[pred.CIS]; ok {
				row = append(row,
					boolFlag(gt.A), boolFlag(gt.B), boolFlag(gt.C),
					boolFlag(pred.ConditionA == gt.A),
					boolFlag(pred.ConditionB == gt.B),
					boolFlag(pred.ConditionC == gt.C),
				)
			} else {
				row = append(row, "", "", "", "", "", "")
			}
		}
		row = append(row,
			strings.Join(pred.CReasons, " | "),
			strings.Join(collectKeywords(pred.Matches4142), " | "),
			strings.Join(collectKeywords(pred.Matches43), " | "),
			joinEvidence(pred.Matches4142),
			joinEvidence(pred.Matches43),
		)
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write prediction row for %s: %w", pred.CIS, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func boolFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func collectKeywords(matches []SentenceMatch) []string {
	var all []string
	for _, m := range matches {
		all = append(all, m.Keywords...)
	}
	return dedupe(all)
}

func joinEvidence(matches []SentenceMatch) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, truncate(m.Text, evidenceLimit))
	}
	return strings.Join(parts, " ||| ")
}

// truncate keeps the first n runes so accented text never gets cut
// mid-character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
