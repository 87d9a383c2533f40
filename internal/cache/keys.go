// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// canonicalKey is the stable shape hashed into a cache key. Fields are
// serialized in declaration order and kwargs are sorted by name, so the
// same call always derives the same key.
type canonicalKey struct {
	Args   []json.RawMessage    `json:"args"`
	Kwargs [][2]json.RawMessage `json:"kwargs"`
	Prefix string               `json:"prefix"`
}

// DeriveKey builds the storage key for an operation invocation. The result
// is "<prefix>:<md5hex>", keeping the namespace readable in front of the
// argument digest so prefix invalidation can match on it.
func DeriveKey(prefix string, args []any, kwargs map[string]any) string {
	ck := canonicalKey{
		Args:   make([]json.RawMessage, 0, len(args)),
		Kwargs: make([][2]json.RawMessage, 0, len(kwargs)),
		Prefix: prefix,
	}

	for _, a := range args {
		ck.Args = append(ck.Args, canonicalValue(a))
	}

	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ck.Kwargs = append(ck.Kwargs, [2]json.RawMessage{
			canonicalValue(name),
			canonicalValue(kwargs[name]),
		})
	}

	blob, _ := json.Marshal(ck)
	sum := md5.Sum(blob)
	return ck.Prefix + ":" + hex.EncodeToString(sum[:])
}

// canonicalValue renders one argument as JSON, falling back to its printed
// form for values encoding/json cannot handle.
func canonicalValue(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(fmt.Sprintf("%v", v))
	}
	return b
}
