// Copyright (c) 2025 Steve Taranto staranto@gmail.com.
// SPDX-License-Identifier: Apache-2.0

package datespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Absolute layouts, tried in order.  The space form is what the prompts
// have always suggested, so it goes first.
var layouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02",
}

func Resolve(now time.Time, specs ...string) ([]time.Time, error) {
	var result = []time.Time{}

	// specs is going to be zero or more date specs.  A spec could be -
	//   empty      - today at midnight.
	//   today      - same as empty.
	//   tomorrow   - tomorrow at midnight.
	//   yesterday  - yesterday at midnight.
	//   +N / -N    - N days either side of today, at midnight.
	//   absolute   - YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC3339.

	if len(specs) == 0 {
		specs = []string{"today"}
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, s := range specs {
		s = strings.TrimSpace(s)

		switch strings.ToLower(s) {
		case "", "today":
			result = append(result, midnight)
			continue
		case "tomorrow":
			result = append(result, midnight.AddDate(0, 0, 1))
			continue
		case "yesterday":
			result = append(result, midnight.AddDate(0, 0, -1))
			continue
		}

		if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
			if i, err := strconv.Atoi(s); err == nil {
				result = append(result, midnight.AddDate(0, 0, i))
				continue
			}
		}

		found := false
		for _, layout := range layouts {
			if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
				result = append(result, t)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("failed to parse date spec %q", s)
		}
	}

	return result, nil
}

// Window resolves a from/to pair into the half-open range fed to the
// timeMin/timeMax query parameters.  An empty from means today and an
// empty to means from plus days.
func Window(now time.Time, from, to string, days int) (time.Time, time.Time, error) {
	lo, err := Resolve(now, from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if to == "" {
		return lo[0], lo[0].AddDate(0, 0, days), nil
	}

	hi, err := Resolve(now, to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if !hi[0].After(lo[0]) {
		return time.Time{}, time.Time{}, fmt.Errorf("window end %s is not after start %s",
			hi[0].Format("2006-01-02"), lo[0].Format("2006-01-02"))
	}

	return lo[0], hi[0], nil
}
