// Package attributes annotates chunks with numeric attributes parsed from text.
package attributes

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/bioorbit/internal/core/domain"
)

// kJPerKcal converts kilojoules to kilocalories.
const kJPerKcal = 4.184

// deltaGPattern matches "ΔG = -7.2 kcal/mol", "delta G of -30 kJ/mol", "dG -5.1 kcal mol-1".
var deltaGPattern = regexp.MustCompile(
	`(?i)(?:Δ|∆|delta[\s-]*|\bd)G(?:°|º|0)?(?:\s*\([^)]*\))?\s*(?:=|:|of|was|is|≈|~|<|>|≤|≥)?\s*` +
		`([-+−–]?\s*\d+(?:\.\d+)?)\s*(kcal|kj)\s*(?:/\s*mol|\s*mol(?:-1|⁻¹)?)`,
)

// Processor sets Chunk.DeltaG from binding free energy mentions.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates an attribute extractor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "attributes"
}

// Process annotates each chunk. A value found in the chunk wins; otherwise
// the first value mentioned anywhere in the record is used; otherwise zero.
func (p *Processor) Process(
	_ context.Context, record *domain.SourceRecord, chunks []domain.Chunk,
) ([]domain.Chunk, error) {
	if record == nil {
		return nil, fmt.Errorf("attributes: record is nil")
	}

	recordValue, recordFound := ExtractDeltaG(record.Title + "\n" + record.Abstract)

	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		if v, ok := ExtractDeltaG(c.Text); ok {
			c.DeltaG = v
		} else if recordFound {
			c.DeltaG = recordValue
		} else {
			c.DeltaG = 0
		}
		out[i] = c
	}
	return out, nil
}

// ExtractDeltaG returns the first binding free energy in text, in kcal/mol.
func ExtractDeltaG(text string) (float64, bool) {
	m := deltaGPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	num := strings.Join(strings.Fields(m[1]), "")
	num = strings.NewReplacer("−", "-", "–", "-").Replace(num)
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if strings.EqualFold(m[2], "kj") {
		v /= kJPerKcal
	}
	return v, true
}
