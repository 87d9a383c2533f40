// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"sort"
	"strings"
)

// sortKey is one parsed field of a --sort spec.
type sortKey struct {
	key        string
	descending bool
	caseExact  bool
}

// SortDataset orders the dataset in place per the --sort spec: a comma
// separated list of output keys, each optionally prefixed with '-' for
// descending or '!' for case-sensitive comparison. String comparisons
// fold case by default; numeric values compare numerically. An empty spec
// leaves the dataset untouched.
func SortDataset(dataset []map[string]interface{}, spec string) {
	if spec == "" || len(dataset) < 2 {
		return
	}

	var keys []sortKey
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		k := sortKey{}
		for len(field) > 0 {
			if strings.HasPrefix(field, "-") {
				k.descending = true
				field = field[1:]
				continue
			}
			if strings.HasPrefix(field, "!") {
				k.caseExact = true
				field = field[1:]
				continue
			}
			break
		}
		k.key = field
		keys = append(keys, k)
	}

	if len(keys) == 0 {
		return
	}

	sort.SliceStable(dataset, func(i, j int) bool {
		for _, k := range keys {
			c := compareValues(dataset[i][k.key], dataset[j][k.key], k.caseExact)
			if c == 0 {
				continue
			}
			if k.descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareValues orders two cell values: numbers numerically, everything
// else as strings. Nil sorts first.
func compareValues(a, b interface{}, caseExact bool) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	na, aNum := toFloat64(a)
	nb, bNum := toFloat64(b)
	if aNum && bNum {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}

	sa := InterfaceToString(a)
	sb := InterfaceToString(b)
	if !caseExact {
		sa = strings.ToLower(sa)
		sb = strings.ToLower(sb)
	}
	return strings.Compare(sa, sb)
}
