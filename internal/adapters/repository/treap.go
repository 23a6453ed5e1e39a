package repository

import "time"

// indexKey orders athletes for listing: stars DESC, createdAt DESC, id ASC.
// "Less" means listed earlier, so an in-order walk yields the listing.
type indexKey struct {
	stars   float64
	created int64
	id      string
}

func keyOf(stars float64, created time.Time, id string) indexKey {
	return indexKey{stars: stars, created: created.UnixNano(), id: id}
}

func (a indexKey) before(b indexKey) bool {
	if a.stars != b.stars {
		return a.stars > b.stars
	}
	if a.created != b.created {
		return a.created > b.created
	}
	return a.id < b.id
}

type node struct {
	key   indexKey
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, k indexKey, prio uint64) *node {
	if n == nil {
		return &node{key: k, prio: prio, size: 1}
	}
	if k.before(n.key) {
		n.left = insert(n.left, k, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, k indexKey) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.key == k:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, k)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, k)
		}
	case k.before(n.key):
		n.left = remove(n.left, k)
	default:
		n.right = remove(n.right, k)
	}
	fix(n)
	return n
}

// walk visits keys in listing order until visit returns false. It reports
// whether the walk ran to completion.
func walk(n *node, visit func(indexKey) bool) bool {
	if n == nil {
		return true
	}
	return walk(n.left, visit) && visit(n.key) && walk(n.right, visit)
}
