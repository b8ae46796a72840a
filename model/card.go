package model

// Card is one normalized compliance finding (or a clean bill of health)
// produced from the upstream comparison payload. IDs are 1-based and
// sequential within one normalization run.
type Card struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	FDASummary  string   `json:"fda_summary"`
	SOPSummary  string   `json:"sop_summary"`
	Issues      []string `json:"issues"`
	IsCompliant bool     `json:"is_compliant"`
}

// Consistent reports whether the compliance flag agrees with the issue
// list. A card is compliant if and only if it carries no issues.
func (c *Card) Consistent() bool {
	return c.IsCompliant == (len(c.Issues) == 0)
}
