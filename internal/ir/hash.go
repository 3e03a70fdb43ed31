package ir

import (
	"cmp"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"
)

// DomainTuple separates tuple keys from any other hash the engine may compute.
// Version suffix enables future algorithm migration.
const DomainTuple = "repoquery/tuple/v2"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TupleKey computes the identity of a sequence of values. Two sequences have
// the same key exactly when they are element-wise Equal, which is what
// duplicate removal, grouping, hash joins and set operations rely on.
func TupleKey(values []IRValue) (string, error) {
	data, err := appendKey(nil, IRArray(values))
	if err != nil {
		return "", fmt.Errorf("TupleKey: %w", err)
	}
	return hashWithDomain(DomainTuple, data), nil
}

// MustTupleKey is like TupleKey but panics on error.
// Use only where values are known to be valid IRValues.
func MustTupleKey(values []IRValue) string {
	key, err := TupleKey(values)
	if err != nil {
		panic(err)
	}
	return key
}

// appendKey appends the key encoding of v: a kind tag followed by the value.
// Strings are NFC-normalized and written as length-prefixed raw bytes, so
// the encoding is injective over Equal classes even for invalid UTF-8.
func appendKey(buf []byte, v IRValue) ([]byte, error) {
	switch val := v.(type) {
	case nil, IRNull:
		return append(buf, 'n'), nil
	case IRBool:
		if val {
			return append(buf, 't'), nil
		}
		return append(buf, 'f'), nil
	case IRInt:
		return binary.BigEndian.AppendUint64(append(buf, 'i'), uint64(val)), nil
	case IRString:
		return appendKeyString(append(buf, 's'), string(val)), nil
	case IRArray:
		buf = binary.AppendUvarint(append(buf, 'a'), uint64(len(val)))
		for i, elem := range val {
			var err error
			if buf, err = appendKey(buf, elem); err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		return buf, nil
	case IRObject:
		type entry struct {
			key   string
			value IRValue
		}
		entries := make([]entry, 0, len(val))
		for k, elem := range val {
			entries = append(entries, entry{norm.NFC.String(k), elem})
		}
		slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.key, b.key) })

		buf = binary.AppendUvarint(append(buf, 'o'), uint64(len(entries)))
		for _, e := range entries {
			buf = appendKeyString(buf, e.key)
			var err error
			if buf, err = appendKey(buf, e.value); err != nil {
				return nil, fmt.Errorf("value for key %q: %w", e.key, err)
			}
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("unsupported type for tuple key: %T", v)
	}
}

func appendKeyString(buf []byte, s string) []byte {
	s = norm.NFC.String(s)
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}
