// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Driller resolves a dotted path against a raw JSON document. It differs
// from a plain gjson.Get in how it treats arrays:
//   - an explicit index selects one element: "items[1].name"
//   - a single-element array is drilled through transparently, so
//     "items.id" works when items holds exactly one object
//   - a multi-element array with no index is returned whole
//
// A path that resolves nowhere returns the zero Result (Exists() false).
func Driller(json string, path string) gjson.Result {
	result := gjson.Parse(json)

	for _, segment := range strings.Split(path, ".") {
		key, index, indexed := splitIndex(segment)

		// Drill through a single-element array before applying the key.
		if result.IsArray() {
			elements := result.Array()
			if len(elements) != 1 {
				return gjson.Result{}
			}
			result = elements[0]
		}

		if key != "" {
			result = result.Get(escape(key))
			if !result.Exists() {
				return gjson.Result{}
			}
		}

		if indexed {
			elements := result.Array()
			if !result.IsArray() || index < 0 || index >= len(elements) {
				return gjson.Result{}
			}
			result = elements[index]
		}
	}

	// A trailing single-element array collapses to its element.
	if result.IsArray() {
		if elements := result.Array(); len(elements) == 1 {
			return elements[0]
		}
	}

	return result
}

// splitIndex splits "items[2]" into ("items", 2, true). A segment without
// a subscript comes back unchanged with indexed false.
func splitIndex(segment string) (string, int, bool) {
	open := strings.IndexByte(segment, '[')
	if open < 0 || !strings.HasSuffix(segment, "]") {
		return segment, 0, false
	}

	index, err := strconv.Atoi(segment[open+1 : len(segment)-1])
	if err != nil {
		return segment, 0, false
	}
	return segment[:open], index, true
}

// escape protects gjson's wildcard characters inside literal key names.
func escape(key string) string {
	if !strings.ContainsAny(key, "*?\\") {
		return key
	}

	var b strings.Builder
	for i := 0; i < len(key); i++ {
		if key[i] == '*' || key[i] == '?' || key[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(key[i])
	}
	return b.String()
}
