// Package quality implements batch validation ahead of storage writes.
//
// Findings are advisory: the collector logs them and carries them on the
// run result, but only an empty batch fails validation. Removing duplicate
// rows is the writer's concern via its conflict semantics, not the
// validator's.
package quality

import (
	"fmt"
	"strings"

	"github.com/Collabos-llc/mlb-data-service/internal/schema"
)

// DefaultNullThreshold is the fraction of absent values in one column above
// which the column is flagged.
const DefaultNullThreshold = 0.5

// Report summarizes one batch inspection.
type Report struct {
	TotalRecords int `json:"total_records"`
	// Passed is false only for an empty batch. Null density and duplicate
	// findings never fail a batch.
	Passed bool     `json:"passed"`
	Issues []string `json:"issues,omitempty"`
	// NullPercentages holds the fraction (0..1) of absent values per column.
	NullPercentages map[string]float64 `json:"null_percentages,omitempty"`
	DuplicateCount  int                `json:"duplicate_count"`
}

// Validator inspects fetched batches against their schema descriptor.
type Validator struct {
	NullThreshold float64
}

// New returns a Validator with the default null-density threshold.
func New() *Validator {
	return &Validator{NullThreshold: DefaultNullThreshold}
}

// Check inspects a batch. It never errors and never mutates rows.
func (v *Validator) Check(rows []schema.Row, d *schema.Descriptor) Report {
	rep := Report{TotalRecords: len(rows)}
	if len(rows) == 0 {
		rep.Issues = append(rep.Issues, "empty result set")
		return rep
	}
	rep.Passed = true

	rep.NullPercentages = make(map[string]float64, len(d.Columns))
	for _, c := range d.Columns {
		nulls := 0
		for _, row := range rows {
			if row[c.Name] == nil {
				nulls++
			}
		}
		pct := float64(nulls) / float64(len(rows))
		rep.NullPercentages[c.Name] = pct
		if pct > v.NullThreshold {
			rep.Issues = append(rep.Issues,
				fmt.Sprintf("column %s is %.0f%% null", c.Name, pct*100))
		}
	}

	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		seen[d.NaturalKeyValue(row)]++
	}
	for _, n := range seen {
		if n > 1 {
			rep.DuplicateCount += n - 1
		}
	}
	if rep.DuplicateCount > 0 {
		rep.Issues = append(rep.Issues,
			fmt.Sprintf("%d duplicate rows by natural key (%s)",
				rep.DuplicateCount, strings.Join(d.NaturalKey, "+")))
	}

	return rep
}
