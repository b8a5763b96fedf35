package persistence

import (
	"fmt"
	"sort"
	"strings"
)

// TreeSnapshot is everything needed to rebuild a merkle tree bit for bit.
type TreeSnapshot struct {
	// Root is the 0x-prefixed hex root and the storage key.
	Root string `json:"root"`

	// PreserveOrder records whether the tree was built in ordered mode.
	PreserveOrder bool `json:"preserveOrder"`

	// HashName is the registered name of the hash primitive, e.g. "keccak256".
	HashName string `json:"hashName"`

	// Leaves holds the normalized leaves in tree order as 0x-prefixed hex.
	Leaves []string `json:"leaves"`

	// CreatedAt is the Unix timestamp when the snapshot was published.
	CreatedAt int64 `json:"createdAt"`
}

// NormalizeRoot returns the storage key for a root string.
func NormalizeRoot(root string) string {
	return strings.ToLower(strings.TrimSpace(root))
}

// Validate checks the fields every backend relies on.
func (s *TreeSnapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("cannot save nil TreeSnapshot")
	}
	if !strings.HasPrefix(s.Root, "0x") {
		return fmt.Errorf("snapshot root must be 0x-prefixed hex, got %q", s.Root)
	}
	if s.HashName == "" {
		return fmt.Errorf("snapshot hash name cannot be empty")
	}
	return nil
}

// Copy returns a deep copy of the snapshot.
func (s *TreeSnapshot) Copy() *TreeSnapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Leaves = append([]string(nil), s.Leaves...)
	return &out
}

// SortSnapshots orders snapshots by CreatedAt, then root.
func SortSnapshots(snapshots []*TreeSnapshot) {
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].CreatedAt != snapshots[j].CreatedAt {
			return snapshots[i].CreatedAt < snapshots[j].CreatedAt
		}
		return snapshots[i].Root < snapshots[j].Root
	})
}
