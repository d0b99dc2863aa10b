package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/stockpile/pkg/model"
)

// SourceDiff represents differences between two trees
type SourceDiff struct {
	SourceA string
	SourceB string
	// MissingInA contains node IDs present in B but not in A
	MissingInA []string
	// MissingInB contains node IDs present in A but not in B
	MissingInB []string
	// Renamed lists nodes whose name differs
	Renamed []NodeDifference
	// Moved lists nodes whose parent differs
	Moved []NodeDifference
	CountA int
	CountB int
}

// NodeDifference is one changed attribute of a node present in both trees
type NodeDifference struct {
	ID string `json:"id"`
	A  string `json:"a"`
	B  string `json:"b"`
}

// HasInconsistencies returns true if the trees differ
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 || len(d.Renamed) > 0 || len(d.Moved) > 0
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d nodes each)", d.CountA)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Differences between %s and %s:\n", d.SourceA, d.SourceB)
	if d.CountA != d.CountB {
		fmt.Fprintf(&b, "  - Count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}
	list := func(title string, ids []string) {
		if len(ids) == 0 {
			return
		}
		fmt.Fprintf(&b, "  - %d %s\n", len(ids), title)
		if len(ids) <= 5 {
			for _, id := range ids {
				fmt.Fprintf(&b, "    - %s\n", id)
			}
		}
	}
	list(fmt.Sprintf("nodes only in %s", d.SourceB), d.MissingInA)
	list(fmt.Sprintf("nodes only in %s", d.SourceA), d.MissingInB)
	changes := func(title string, diffs []NodeDifference) {
		if len(diffs) == 0 {
			return
		}
		fmt.Fprintf(&b, "  - %d %s\n", len(diffs), title)
		if len(diffs) <= 5 {
			for _, m := range diffs {
				fmt.Fprintf(&b, "    - %s: %q vs %q\n", m.ID, m.A, m.B)
			}
		}
	}
	changes("renamed", d.Renamed)
	changes("moved", d.Moved)
	return b.String()
}

// DiffOptions configures the diff operation
type DiffOptions struct {
	// IgnoreItems compares location nodes only
	IgnoreItems bool
	// MaxDifferences limits each list (0 = unlimited)
	MaxDifferences int
}

// DefaultDiffOptions returns the options used by `stk tree --compare`
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{MaxDifferences: 100}
}

type placed struct {
	name   string
	parent string
}

func index(nodes []model.TreeNode, opts DiffOptions) map[string]placed {
	out := make(map[string]placed)
	var walk func(ns []model.TreeNode, parent string)
	walk = func(ns []model.TreeNode, parent string) {
		for i := range ns {
			n := &ns[i]
			if opts.IgnoreItems && n.Kind == model.KindItem {
				continue
			}
			out[n.ID] = placed{name: n.Name, parent: parent}
			walk(n.Children, n.ID)
		}
	}
	walk(nodes, "")
	return out
}

// DetectInconsistencies compares two trees by node id. Results are sorted
// by id.
func DetectInconsistencies(treeA, treeB []model.TreeNode, sourceA, sourceB string, opts DiffOptions) SourceDiff {
	diff := SourceDiff{SourceA: sourceA, SourceB: sourceB}
	mapA := index(treeA, opts)
	mapB := index(treeB, opts)
	diff.CountA = len(mapA)
	diff.CountB = len(mapB)

	room := func(n int) bool { return opts.MaxDifferences == 0 || n < opts.MaxDifferences }

	for _, id := range sortedKeys(mapA) {
		if _, ok := mapB[id]; !ok && room(len(diff.MissingInB)) {
			diff.MissingInB = append(diff.MissingInB, id)
		}
	}
	for _, id := range sortedKeys(mapB) {
		b := mapB[id]
		a, ok := mapA[id]
		if !ok {
			if room(len(diff.MissingInA)) {
				diff.MissingInA = append(diff.MissingInA, id)
			}
			continue
		}
		if a.name != b.name && room(len(diff.Renamed)) {
			diff.Renamed = append(diff.Renamed, NodeDifference{ID: id, A: a.name, B: b.name})
		}
		if a.parent != b.parent && room(len(diff.Moved)) {
			diff.Moved = append(diff.Moved, NodeDifference{ID: id, A: a.parent, B: b.parent})
		}
	}
	return diff
}

// CompareSources loads two sources and compares their trees.
func CompareSources(ctx context.Context, a, b DataSource, client TreeFetcher, opts DiffOptions) (*SourceDiff, error) {
	withItems := !opts.IgnoreItems
	treeA, err := LoadTree(ctx, a, client, withItems)
	if err != nil {
		return nil, fmt.Errorf("failed to load source A (%s): %w", a.Path, err)
	}
	treeB, err := LoadTree(ctx, b, client, withItems)
	if err != nil {
		return nil, fmt.Errorf("failed to load source B (%s): %w", b.Path, err)
	}
	diff := DetectInconsistencies(treeA, treeB, a.Path, b.Path, opts)
	return &diff, nil
}

func sortedKeys(m map[string]placed) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
