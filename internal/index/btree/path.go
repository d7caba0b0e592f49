package btree

// pathEntry records one step of a root-to-leaf descent: the page
// visited and the child index chosen to continue downward. Per
// spec.md §9's re-architecture guidance, this explicit stack replaces
// reliance on persisted parent pointers for upward navigation during
// compensation, split, merge, and repair; the on-disk ParentPageID
// field is still maintained for format fidelity with spec.md §3; it is
// just never read to walk upward.
type pathEntry struct {
	pageID     int32
	childIndex int
}

// descentPath is root-to-parent-of-leaf, shallowest first. An empty
// path means the leaf itself is the root.
type descentPath []pathEntry

func (p descentPath) isRoot() bool { return len(p) == 0 }

// last returns the deepest entry (the leaf's parent) and the path with
// that entry removed.
func (p descentPath) last() (pathEntry, descentPath) {
	return p[len(p)-1], p[:len(p)-1]
}
