package model

import (
	"sort"
	"strconv"
	"strings"
)

// CompareVersions orders product version strings loosely. Versions are split
// on dots and dashes; numeric chunks compare numerically, everything else
// lexically, and a missing chunk sorts before any present one. Product
// versions are free-form ("9.0", "2.1b", "nightly"), so this is deliberately
// not semver.
func CompareVersions(a, b string) int {
	as := splitVersion(a)
	bs := splitVersion(b)
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv string
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		if av == bv {
			continue
		}
		if av == "" {
			return -1
		}
		if bv == "" {
			return 1
		}
		an, aerr := strconv.Atoi(av)
		bn, berr := strconv.Atoi(bv)
		switch {
		case aerr == nil && berr == nil:
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
		case aerr == nil:
			// numeric chunks sort before non-numeric ones
			return -1
		case berr == nil:
			return 1
		default:
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// SortVersions orders versions in place, lowest first.
func SortVersions(versions []*ProductVersion) {
	sort.SliceStable(versions, func(i, j int) bool {
		return CompareVersions(versions[i].Version, versions[j].Version) < 0
	})
}

func splitVersion(v string) []string {
	return strings.FieldsFunc(strings.TrimSpace(v), func(r rune) bool {
		return r == '.' || r == '-'
	})
}
