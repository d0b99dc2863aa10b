package tree

import "strings"

// Guides returns the branch prefix ("│   ├── ") for each row of a
// pre-order flattening. Roots get no prefix.
func Guides(rows []Row) []string {
	last := make([]bool, len(rows))
	var later []bool // later[d]: a sibling at depth d follows
	for i := len(rows) - 1; i >= 0; i-- {
		d := rows[i].Depth
		for len(later) <= d {
			later = append(later, false)
		}
		last[i] = !later[d]
		later[d] = true
		for k := d + 1; k < len(later); k++ {
			later[k] = false
		}
	}

	guides := make([]string, len(rows))
	var open []bool // open[d]: the ancestor at depth d has siblings below
	for i, r := range rows {
		for len(open) <= r.Depth {
			open = append(open, false)
		}
		open[r.Depth] = !last[i]
		if r.Depth == 0 {
			continue
		}
		var sb strings.Builder
		for l := 1; l < r.Depth; l++ {
			if open[l] {
				sb.WriteString("│   ")
			} else {
				sb.WriteString("    ")
			}
		}
		if last[i] {
			sb.WriteString("└── ")
		} else {
			sb.WriteString("├── ")
		}
		guides[i] = sb.String()
	}
	return guides
}
