package scoring

import "sort"

// Network is the combined followers ∪ following set of one identity.
type Network map[int64]struct{}

// NewNetwork merges the given id lists into a set.
func NewNetwork(lists ...[]int64) Network {
	size := 0
	for _, l := range lists {
		size += len(l)
	}
	n := make(Network, size)
	for _, l := range lists {
		for _, id := range l {
			n[id] = struct{}{}
		}
	}
	return n
}

// Contains reports whether id is part of the network.
func (n Network) Contains(id int64) bool {
	_, ok := n[id]
	return ok
}

// Mutual returns the ids present in both networks in ascending order.
func (n Network) Mutual(other Network) []int64 {
	small, large := n, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make([]int64, 0)
	for id := range small {
		if large.Contains(id) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UnionSize returns |n ∪ other| without materialising the union.
func (n Network) UnionSize(other Network) int {
	shared := 0
	for id := range n {
		if other.Contains(id) {
			shared++
		}
	}
	return len(n) + len(other) - shared
}
