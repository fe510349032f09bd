package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/ajitpratap0/hablo/pkg/errors"
)

// SplitPath splits a dotted path into segments. Literal dots cannot be
// escaped.
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}

// navigate walks segments from n. On failure it returns a KeyNotFound error
// naming the longest prefix that resolved and the first one that did not.
func navigate(n *Node, path string) (*Node, error) {
	segments := SplitPath(path)
	cur := n
	for i, seg := range segments {
		next, ok := cur.Child(seg)
		if !ok {
			return nil, keyNotFound(path, segments, i)
		}
		cur = next
	}
	return cur, nil
}

func keyNotFound(path string, segments []string, failed int) error {
	missing := strings.Join(segments[:failed+1], ".")
	resolved := strings.Join(segments[:failed], ".")

	var msg string
	if missing == path {
		msg = fmt.Sprintf("the key %q does not exist", missing)
	} else {
		msg = fmt.Sprintf("the key %q does not exist and hence the key %q does not exist", missing, path)
	}
	return errors.New(errors.ErrorTypeKeyNotFound, msg).
		WithDetail("path", path).
		WithDetail("resolved", resolved).
		WithDetail("missing", missing)
}

// lookupValue navigates a plain Go value by successive key or index lookups.
func lookupValue(v any, segments []string) (any, bool) {
	cur := v
	for _, seg := range segments {
		next, ok := stepValue(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func stepValue(v any, seg string) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		next, ok := t[seg]
		return next, ok
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(t) {
			return nil, false
		}
		return t[i], true
	case *Node:
		child, ok := t.Child(seg)
		if !ok {
			return nil, false
		}
		return toNative(child, nil, false), true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	default:
		return nil, false
	}
}
