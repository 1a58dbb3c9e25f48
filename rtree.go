package chronoval

import "sync"

// maxNodeEntries is the fan-out limit before a node is split.
const maxNodeEntries = 16

// RTree organizes versioned values into a rectangle tree over (time, value).
// Leaf entries pair a key with a history snapshot; internal nodes hold the
// union rectangle of their subtree. All routing decisions go through the
// primitives in spatial.go: Penalty chooses the insertion subtree, PickSplit
// divides overflowing nodes, Consistent drives search descent.
type RTree struct {
	mu   sync.RWMutex
	root *treeNode
	size int
}

type treeNode struct {
	rect     Rect
	isLeaf   bool
	leaves   []leafEntry
	children []*treeNode
}

type leafEntry struct {
	key  string
	hist *History
	rect Rect
}

// NewRTree creates an empty index.
func NewRTree() *RTree {
	return &RTree{root: &treeNode{isLeaf: true}}
}

// Insert adds a versioned value under the given key. An existing entry with
// the same key is replaced with the new snapshot.
func (t *RTree) Insert(key string, h *History) error {
	rect, err := Compress(h)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.removeKey(t.root, key) {
		t.size--
	}
	t.insert(t.root, leafEntry{key: key, hist: h, rect: rect})
	t.size++
	return nil
}

func (t *RTree) insert(node *treeNode, entry leafEntry) {
	if node.isLeaf {
		node.leaves = append(node.leaves, entry)
		t.refreshRect(node)
		if len(node.leaves) > maxNodeEntries {
			t.split(node)
		}
		return
	}
	t.insert(t.chooseSubtree(node, entry.rect), entry)
	t.refreshRect(node)
	if len(node.children) > maxNodeEntries {
		t.split(node)
	}
}

// chooseSubtree picks the child whose key rectangle needs expanding least,
// by the linear per-axis penalty, breaking ties toward the smaller area.
func (t *RTree) chooseSubtree(node *treeNode, rect Rect) *treeNode {
	best := node.children[0]
	bestCost := Penalty(best.rect, rect)
	for _, child := range node.children[1:] {
		cost := Penalty(child.rect, rect)
		if cost < bestCost || (cost == bestCost && child.rect.Area() < best.rect.Area()) {
			best = child
			bestCost = cost
		}
	}
	return best
}

// split divides an overflowing node in place: the node becomes the parent of
// two fresh children holding the split groups, so parent pointers stay valid.
func (t *RTree) split(node *treeNode) {
	var rects []Rect
	if node.isLeaf {
		rects = make([]Rect, len(node.leaves))
		for i, e := range node.leaves {
			rects[i] = e.rect
		}
	} else {
		rects = make([]Rect, len(node.children))
		for i, c := range node.children {
			rects[i] = c.rect
		}
	}

	res, err := PickSplit(rects)
	if err != nil {
		// Fewer than two entries cannot overflow a node.
		return
	}

	left := &treeNode{rect: res.LeftRect, isLeaf: node.isLeaf}
	right := &treeNode{rect: res.RightRect, isLeaf: node.isLeaf}
	if node.isLeaf {
		for _, i := range res.Left {
			left.leaves = append(left.leaves, node.leaves[i])
		}
		for _, i := range res.Right {
			right.leaves = append(right.leaves, node.leaves[i])
		}
	} else {
		for _, i := range res.Left {
			left.children = append(left.children, node.children[i])
		}
		for _, i := range res.Right {
			right.children = append(right.children, node.children[i])
		}
	}

	node.isLeaf = false
	node.leaves = nil
	node.children = []*treeNode{left, right}
	t.refreshRect(node)
}

func (t *RTree) refreshRect(node *treeNode) {
	if node.isLeaf {
		if len(node.leaves) == 0 {
			node.rect = Rect{}
			return
		}
		rect := node.leaves[0].rect
		for _, e := range node.leaves[1:] {
			rect = union2(rect, e.rect)
		}
		node.rect = rect
		return
	}
	if len(node.children) == 0 {
		node.rect = Rect{}
		return
	}
	rect := node.children[0].rect
	for _, c := range node.children[1:] {
		rect = union2(rect, c.rect)
	}
	node.rect = rect
}

// removeKey deletes the leaf entry with the given key, if present, and
// refreshes rectangles along the way. Emptied nodes are kept; they are
// reused or absorbed by later splits.
func (t *RTree) removeKey(node *treeNode, key string) bool {
	if node.isLeaf {
		for i, e := range node.leaves {
			if e.key == key {
				node.leaves = append(node.leaves[:i], node.leaves[i+1:]...)
				t.refreshRect(node)
				return true
			}
		}
		return false
	}
	for _, child := range node.children {
		if t.removeKey(child, key) {
			t.refreshRect(node)
			return true
		}
	}
	return false
}

// Search returns the keys of all values that held exactly the query value at
// the query time. Descent tests rectangles with Consistent; leaf matches are
// conservative (the stored rectangle covers all future time and the full
// value span), so flagged entries are rechecked against the exact history.
func (t *RTree) Search(q PointQuery) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []string
	t.search(t.root, q, &out)
	return out
}

func (t *RTree) search(node *treeNode, q PointQuery, out *[]string) {
	if node.isLeaf {
		for _, e := range node.leaves {
			match, recheck := Consistent(e.rect, q, true)
			if !match {
				continue
			}
			if recheck {
				equal, known := e.hist.EqualsAt(q.Ts, q.Value)
				if !known || !equal {
					continue
				}
			}
			*out = append(*out, e.key)
		}
		return
	}
	for _, child := range node.children {
		if match, _ := Consistent(child.rect, q, false); match {
			t.search(child, q, out)
		}
	}
}

// Size returns the number of indexed values.
func (t *RTree) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}
