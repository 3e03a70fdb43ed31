package ir

import (
	"bytes"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// typeRank orders values of different kinds. NULL sorts before everything.
func typeRank(v IRValue) int {
	switch v.(type) {
	case nil, IRNull:
		return 0
	case IRBool:
		return 1
	case IRInt:
		return 2
	case IRString:
		return 3
	case IRArray:
		return 4
	case IRObject:
		return 5
	default:
		return 6
	}
}

// Compare returns -1, 0 or +1 ordering a before, equal to, or after b.
// The order is total: values of different kinds are ordered by kind
// (NULL < bool < int < string < array < object), strings compare by their
// NFC form, and arrays compare element-wise then by length.
func Compare(a, b IRValue) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch av := a.(type) {
	case nil, IRNull:
		return 0
	case IRBool:
		bv := b.(IRBool)
		switch {
		case av == bv:
			return 0
		case !bool(av):
			return -1
		default:
			return 1
		}
	case IRInt:
		bv := b.(IRInt)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case IRString:
		return strings.Compare(norm.NFC.String(string(av)), norm.NFC.String(string(b.(IRString))))
	case IRArray:
		bv := b.(IRArray)
		for i := 0; i < len(av) && i < len(bv); i++ {
			if c := Compare(av[i], bv[i]); c != 0 {
				return c
			}
		}
		switch {
		case len(av) < len(bv):
			return -1
		case len(av) > len(bv):
			return 1
		default:
			return 0
		}
	case IRObject:
		ka, errA := appendKey(nil, av)
		kb, errB := appendKey(nil, b)
		if errA != nil || errB != nil {
			return 0
		}
		return bytes.Compare(ka, kb)
	default:
		return 0
	}
}

// Equal reports whether a and b compare equal.
func Equal(a, b IRValue) bool {
	return Compare(a, b) == 0
}

// CompareTuples compares two equal-length value sequences lexicographically.
func CompareTuples(a, b []IRValue) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
