package quantize

import (
	"image"
	"image/color"
)

const (
	depth = 8
	none  = -1
)

// node is an octree node addressed by its index in the tree arena
type node struct {
	children [8]int32
	leaf     bool
	r, g, b  uint64
	count    uint64
	index    int // palette index, valid for leaves after palette assignment
}

// tree is an arena of nodes. levels holds, per depth, the interior nodes
// that are still reduction candidates in creation order; heads marks how many
// of them have already been folded.
type tree struct {
	nodes  []node
	levels [depth][]int32
	heads  [depth]int
	leaves int
}

func newTree() *tree {
	t := &tree{}
	t.alloc(0)
	return t
}

// alloc appends a node created at the given level and returns its id
func (t *tree) alloc(level int) int32 {
	id := int32(len(t.nodes))
	n := node{leaf: level == depth}
	for i := range n.children {
		n.children[i] = none
	}
	t.nodes = append(t.nodes, n)
	if level == depth {
		t.leaves++
	} else {
		t.levels[level] = append(t.levels[level], id)
	}
	return id
}

// childIndex packs bit (7-level) of each channel as rgb
func childIndex(r, g, b uint8, level int) int {
	shift := 7 - level
	return int((r>>shift)&1)<<2 | int((g>>shift)&1)<<1 | int((b>>shift)&1)
}

func (t *tree) insert(r, g, b uint8) {
	id := int32(0)
	for level := 0; level < depth; level++ {
		if t.nodes[id].leaf {
			break
		}
		i := childIndex(r, g, b, level)
		child := t.nodes[id].children[i]
		if child == none {
			child = t.alloc(level + 1)
			t.nodes[id].children[i] = child
		}
		id = child
	}
	n := &t.nodes[id]
	n.r += uint64(r)
	n.g += uint64(g)
	n.b += uint64(b)
	n.count++
}

// reduce folds the earliest created interior node of the deepest non-empty level into a leaf.
func (t *tree) reduce() bool {
	for level := depth - 1; level >= 0; level-- {
		if t.heads[level] >= len(t.levels[level]) {
			continue
		}
		id := t.levels[level][t.heads[level]]
		t.heads[level]++

		n := &t.nodes[id]
		folded := 0
		for i, c := range n.children {
			if c == none {
				continue
			}
			child := &t.nodes[c]
			n.r += child.r
			n.g += child.g
			n.b += child.b
			n.count += child.count
			n.children[i] = none
			folded++
		}
		n.leaf = true
		t.leaves += 1 - folded
		return true
	}
	return false
}

// palette assigns indices to leaves in depth-first child order and returns their mean colors.
func (t *tree) palette() color.Palette {
	var p color.Palette
	var walk func(id int32)
	walk = func(id int32) {
		n := &t.nodes[id]
		if n.leaf {
			n.index = len(p)
			p = append(p, color.RGBA{
				R: uint8(n.r / n.count),
				G: uint8(n.g / n.count),
				B: uint8(n.b / n.count),
				A: 0xFF,
			})
			return
		}
		for _, c := range n.children {
			if c != none {
				walk(c)
			}
		}
	}
	walk(0)
	return p
}

// lookup descends to a leaf; a missing child falls back to the first present one.
func (t *tree) lookup(r, g, b uint8) uint8 {
	id := int32(0)
	for level := 0; !t.nodes[id].leaf; level++ {
		n := &t.nodes[id]
		next := n.children[childIndex(r, g, b, level)]
		if next == none {
			for _, c := range n.children {
				if c != none {
					next = c
					break
				}
			}
		}
		id = next
	}
	return uint8(t.nodes[id].index)
}

// Octree is the octree quantizer. The zero value is ready to use.
type Octree struct{}

// Quantize implements Quantizer
func (Octree) Quantize(img image.Image, maxColors int) (*image.Paletted, error) {
	if err := validate(img, maxColors); err != nil {
		return nil, err
	}
	b := img.Bounds()
	t := newTree()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t.insert(rgbAt(img, x, y))
			for t.leaves > maxColors {
				if !t.reduce() {
					break
				}
			}
		}
	}

	m := newIndexed(b.Dx(), b.Dy(), t.palette())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[(y-b.Min.Y)*m.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			row[x-b.Min.X] = t.lookup(rgbAt(img, x, y))
		}
	}
	return m, nil
}
