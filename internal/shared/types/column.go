package types

// Column is a single column definition as declared by the server (or a YAML
// preset). Columns are grouped by Target to decide which data stores exist.
type Column struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Target Target `json:"target"`
	Type   string `json:"type"`
	Parent string `json:"parent,omitempty"`
}

// GroupColumns splits columns by target, preserving first-seen target order
// and insertion order within each group.
func GroupColumns(cols []Column) ([]Target, map[Target][]Column) {
	order := make([]Target, 0, 2)
	groups := make(map[Target][]Column, 2)
	for _, col := range cols {
		if _, seen := groups[col.Target]; !seen {
			order = append(order, col.Target)
		}
		groups[col.Target] = append(groups[col.Target], col)
	}
	return order, groups
}
