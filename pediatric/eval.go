package pediatric

import (
	"fmt"
	"strings"
)

// LabelMetrics are the confusion counts and derived rates for one label.
// Every rate falls back to 0.0 when its denominator is zero.
type LabelMetrics struct {
	TP int
	FP int
	FN int
	TN int

	Precision float64
	Recall    float64
	F1        float64
	Accuracy  float64
}

// OverallMetrics covers all three labels at once.
type OverallMetrics struct {
	Evaluated      int
	ExactMatch     int
	ExactMatchRate float64
}

// Metrics is the full evaluation of a prediction run against ground truth.
// Predictions without a ground truth entry are not evaluated.
type Metrics struct {
	A       LabelMetrics
	B       LabelMetrics
	C       LabelMetrics
	Overall OverallMetrics
}

// ComputeMetrics evaluates predictions against the ground truth table.
func ComputeMetrics(predictions []*Classification, groundTruth map[string]GroundTruthEntry) Metrics {
	m := Metrics{
		A: labelMetrics(predictions, groundTruth,
			func(c *Classification) bool { return c.ConditionA },
			func(g GroundTruthEntry) bool { return g.A }),
		B: labelMetrics(predictions, groundTruth,
			func(c *Classification) bool { return c.ConditionB },
			func(g GroundTruthEntry) bool { return g.B }),
		C: labelMetrics(predictions, groundTruth,
			func(c *Classification) bool { return c.ConditionC },
			func(g GroundTruthEntry) bool { return g.C }),
	}

	for _, pred := range predictions {
		gt, ok := groundTruth[pred.CIS]
		if !ok {
			continue
		}
		m.Overall.Evaluated++
		if pred.ConditionA == gt.A && pred.ConditionB == gt.B && pred.ConditionC == gt.C {
			m.Overall.ExactMatch++
		}
	}
	if m.Overall.Evaluated > 0 {
		m.Overall.ExactMatchRate = float64(m.Overall.ExactMatch) / float64(m.Overall.Evaluated)
	}
	return m
}

func labelMetrics(
	predictions []*Classification,
	groundTruth map[string]GroundTruthEntry,
	predicted func(*Classification) bool,
	expected func(GroundTruthEntry) bool,
) LabelMetrics {
	var lm LabelMetrics
	for _, pred := range predictions {
		entry, ok := groundTruth[pred.CIS]
		if !ok {
			continue
		}
		p, t := predicted(pred), expected(entry)
		switch {
		case p && t:
			lm.TP++
		case p && !t:
			lm.FP++
		case !p && t:
			lm.FN++
		default:
			lm.TN++
		}
	}

	total := lm.TP + lm.FP + lm.FN + lm.TN
	if lm.TP+lm.FP > 0 {
		lm.Precision = float64(lm.TP) / float64(lm.TP+lm.FP)
	}
	if lm.TP+lm.FN > 0 {
		lm.Recall = float64(lm.TP) / float64(lm.TP+lm.FN)
	}
	if lm.Precision+lm.Recall > 0 {
		lm.F1 = 2 * lm.Precision * lm.Recall / (lm.Precision + lm.Recall)
	}
	if total > 0 {
		lm.Accuracy = float64(lm.TP+lm.TN) / float64(total)
	}
	return lm
}

// FormatMetrics renders the evaluation as a human-readable report.
func FormatMetrics(m Metrics) string {
	rule := strings.Repeat("=", 60)
	lines := []string{rule, "PEDIATRIC CLASSIFICATION METRICS", rule}

	blocks := []struct {
		label string
		name  string
		m     LabelMetrics
	}{
		{"A", "Indication", m.A},
		{"B", "Contre-indication", m.B},
		{"C", "Sur avis", m.C},
	}
	for _, block := range blocks {
		lines = append(lines,
			fmt.Sprintf("\n%s: %s", block.label, block.name),
			fmt.Sprintf("  Accuracy:  %s", percent(block.m.Accuracy)),
			fmt.Sprintf("  Precision: %s", percent(block.m.Precision)),
			fmt.Sprintf("  Recall:    %s", percent(block.m.Recall)),
			fmt.Sprintf("  F1:        %s", percent(block.m.F1)),
			fmt.Sprintf("  (TP=%d FP=%d FN=%d TN=%d)", block.m.TP, block.m.FP, block.m.FN, block.m.TN),
		)
	}

	lines = append(lines,
		fmt.Sprintf("\nOverall exact match: %d/%d (%s)",
			m.Overall.ExactMatch, m.Overall.Evaluated, percent(m.Overall.ExactMatchRate)),
		rule,
	)
	return strings.Join(lines, "\n")
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
