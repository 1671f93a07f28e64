package models

import (
	"strconv"
	"strings"
)

// SplitPath turns "a/b/c" (leading, trailing and doubled slashes ignored)
// into its segments. The root path yields no segments.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// JoinPath is the inverse of SplitPath.
func JoinPath(segs ...string) string {
	return strings.Join(SplitPath(strings.Join(segs, "/")), "/")
}

// GetAt walks segs from root and returns the node found there.
func GetAt(root Node, segs []string) Node {
	cur := root
	for _, s := range segs {
		cur = cur.Member(s)
		if !cur.IsDefined() {
			return Undefined
		}
	}
	return cur
}

// SetAt returns a copy of root with value stored at segs. Only the nodes on
// the path are copied. An undefined value deletes; objects and arrays left
// empty by a delete are pruned, and writing an empty container is a delete.
// Scalars in the way of a deeper write are replaced by objects.
func SetAt(root Node, segs []string, value Node) Node {
	if (value.kind == KindObject || value.kind == KindArray) && value.Len() == 0 {
		value = Undefined
	}
	if len(segs) == 0 {
		return value
	}
	key, rest := segs[0], segs[1:]

	if root.kind == KindArray {
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(root.arr) {
			child := SetAt(root.arr[i], rest, value)
			if child.IsDefined() {
				arr := make([]Node, len(root.arr))
				copy(arr, root.arr)
				arr[i] = child
				return Node{kind: KindArray, arr: arr}
			}
		}
		// An array touched outside its dense range, or losing a member,
		// degrades to an object keyed by index.
		root = root.toObject()
	}

	if root.kind != KindObject {
		if !value.IsDefined() {
			return root
		}
		root = Node{kind: KindObject, obj: map[string]Node{}}
	}

	child := SetAt(root.obj[key], rest, value)
	obj := make(map[string]Node, len(root.obj)+1)
	for k, v := range root.obj {
		obj[k] = v
	}
	if child.IsDefined() {
		obj[key] = child
	} else {
		delete(obj, key)
	}
	if len(obj) == 0 {
		return Undefined
	}
	return Node{kind: KindObject, obj: obj}
}

func (n Node) toObject() Node {
	obj := make(map[string]Node, len(n.arr))
	for i, it := range n.arr {
		obj[strconv.Itoa(i)] = it
	}
	return Node{kind: KindObject, obj: obj}
}
