package store

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/schema"
)

// sqlType maps a catalog column type to its SQLite declaration.
// Booleans are stored as 0/1 integers.
func sqlType(columnType string) (string, error) {
	switch columnType {
	case schema.TypeString:
		return "TEXT", nil
	case schema.TypeLong, schema.TypeBoolean:
		return "INTEGER", nil
	default:
		return "", fmt.Errorf("unsupported column type %q", columnType)
	}
}

// toColumn converts a value for storage in a column of the given type.
// NULL is allowed in every column.
func toColumn(v ir.IRValue, columnType string) (any, error) {
	if ir.IsNull(v) {
		return nil, nil
	}
	switch val := v.(type) {
	case ir.IRString:
		if columnType == schema.TypeString {
			return norm.NFC.String(string(val)), nil
		}
	case ir.IRInt:
		if columnType == schema.TypeLong {
			return int64(val), nil
		}
	case ir.IRBool:
		if columnType == schema.TypeBoolean {
			if val {
				return int64(1), nil
			}
			return int64(0), nil
		}
	}
	return nil, fmt.Errorf("cannot store %s in a %s column", ir.String(v), columnType)
}

// fromColumn converts a scanned SQLite value back to IR by column type.
func fromColumn(raw any, columnType string) (ir.IRValue, error) {
	if raw == nil {
		return ir.IRNull{}, nil
	}
	switch columnType {
	case schema.TypeString:
		switch v := raw.(type) {
		case string:
			return ir.IRString(v), nil
		case []byte:
			return ir.IRString(v), nil
		}
	case schema.TypeLong:
		if v, ok := raw.(int64); ok {
			return ir.IRInt(v), nil
		}
	case schema.TypeBoolean:
		switch v := raw.(type) {
		case int64:
			return ir.IRBool(v != 0), nil
		case bool:
			return ir.IRBool(v), nil
		}
	}
	return nil, fmt.Errorf("unexpected %T value in a %s column", raw, columnType)
}
