package models

import (
	"bytes"
	"fmt"
	json "github.com/goccy/go-json"
	"math"
	"sort"
	"strconv"
)

type Kind uint8

const (
	// KindUndefined is the zero value. It marks an absent node and is used as
	// the delete marker in atomic updates.
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Node is an opaque tree value stored in the realtime store.
// Numbers keep their decimal text so large ids survive a round trip.
type Node struct {
	kind Kind
	b    bool
	num  string
	str  string
	arr  []Node
	obj  map[string]Node
}

var Undefined = Node{}

func Null() Node           { return Node{kind: KindNull} }
func Bool(v bool) Node     { return Node{kind: KindBool, b: v} }
func String(v string) Node { return Node{kind: KindString, str: v} }
func Int(v int64) Node     { return Node{kind: KindNumber, num: strconv.FormatInt(v, 10)} }

// Float builds a number node. NaN and infinities have no JSON form and are
// rejected.
func Float(v float64) (Node, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined, fmt.Errorf("invalid number %v: not finite", v)
	}
	return Node{kind: KindNumber, num: strconv.FormatFloat(v, 'g', -1, 64)}, nil
}

func Array(items ...Node) Node {
	out := make([]Node, 0, len(items))
	for _, it := range items {
		if it.IsDefined() {
			out = append(out, it)
		}
	}
	return Node{kind: KindArray, arr: out}
}

// Object builds an object node, dropping undefined members.
func Object(members map[string]Node) Node {
	obj := make(map[string]Node, len(members))
	for k, v := range members {
		if v.IsDefined() {
			obj[k] = v
		}
	}
	return Node{kind: KindObject, obj: obj}
}

// Number parses a decimal literal into a number node.
func Number(lit string) (Node, error) {
	if _, err := strconv.ParseFloat(lit, 64); err != nil {
		return Undefined, fmt.Errorf("invalid number %q: %w", lit, err)
	}
	if !json.Valid([]byte(lit)) {
		return Undefined, fmt.Errorf("invalid number %q: not a JSON literal", lit)
	}
	return Node{kind: KindNumber, num: lit}, nil
}

func (n Node) Kind() Kind      { return n.kind }
func (n Node) IsDefined() bool { return n.kind != KindUndefined }
func (n Node) IsNull() bool    { return n.kind == KindNull }
func (n Node) Len() int        { return len(n.arr) + len(n.obj) }
func (n Node) Items() []Node   { return n.arr }
func (n Node) Member(key string) Node {
	if n.kind == KindObject {
		return n.obj[key]
	}
	if n.kind == KindArray {
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(n.arr) {
			return n.arr[i]
		}
	}
	return Undefined
}

func (n Node) AsString() (string, bool) {
	if n.kind != KindString {
		return "", false
	}
	return n.str, true
}

func (n Node) AsBool() (bool, bool) {
	if n.kind != KindBool {
		return false, false
	}
	return n.b, true
}

func (n Node) AsInt() (int64, bool) {
	if n.kind != KindNumber {
		return 0, false
	}
	if v, err := strconv.ParseInt(n.num, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(n.num, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func (n Node) AsFloat() (float64, bool) {
	if n.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.num, 64)
	return f, err == nil
}

// Keys returns object member names in lexicographic order, or array indexes.
func (n Node) Keys() []string {
	switch n.kind {
	case KindObject:
		keys := make([]string, 0, len(n.obj))
		for k := range n.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	case KindArray:
		keys := make([]string, len(n.arr))
		for i := range n.arr {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	}
	return nil
}

// Equal reports deep equality. Numbers compare by value.
func (n Node) Equal(o Node) bool {
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return n.b == o.b
	case KindString:
		return n.str == o.str
	case KindNumber:
		a, _ := n.AsFloat()
		b, _ := o.AsFloat()
		return a == b
	case KindArray:
		if len(n.arr) != len(o.arr) {
			return false
		}
		for i := range n.arr {
			if !n.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(n.obj) != len(o.obj) {
			return false
		}
		for k, v := range n.obj {
			if !v.Equal(o.obj[k]) {
				return false
			}
		}
		return true
	}
	return false
}

// FromAny converts decoded JSON or plain Go values into a Node.
func FromAny(v any) (Node, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Node:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String())
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint32:
		return Int(int64(t)), nil
	case []any:
		items := make([]Node, 0, len(t))
		for _, it := range t {
			c, err := FromAny(it)
			if err != nil {
				return Undefined, err
			}
			items = append(items, c)
		}
		return Node{kind: KindArray, arr: items}, nil
	case map[string]any:
		obj := make(map[string]Node, len(t))
		for k, it := range t {
			c, err := FromAny(it)
			if err != nil {
				return Undefined, err
			}
			obj[k] = c
		}
		return Node{kind: KindObject, obj: obj}, nil
	}
	return Undefined, fmt.Errorf("unsupported value type %T", v)
}

// MustFromAny is FromAny for literals in code and tests.
func MustFromAny(v any) Node {
	n, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return n
}

// Interface converts the node back into plain Go values.
func (n Node) Interface() any {
	switch n.kind {
	case KindBool:
		return n.b
	case KindString:
		return n.str
	case KindNumber:
		return json.Number(n.num)
	case KindArray:
		out := make([]any, len(n.arr))
		for i, it := range n.arr {
			out[i] = it.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(n.obj))
		for k, it := range n.obj {
			out[k] = it.Interface()
		}
		return out
	}
	return nil
}

func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n Node) writeJSON(buf *bytes.Buffer) error {
	switch n.kind {
	case KindUndefined, KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(n.b))
	case KindNumber:
		buf.WriteString(n.num)
	case KindString:
		b, err := json.Marshal(n.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, it := range n.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		first := true
		for _, k := range n.Keys() {
			v := n.obj[k]
			if !v.IsDefined() {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	parsed, err := FromAny(v)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ParseNode decodes a JSON document into a Node.
func ParseNode(data []byte) (Node, error) {
	var n Node
	if err := n.UnmarshalJSON(data); err != nil {
		return Undefined, err
	}
	return n, nil
}
