package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"

	"github.com/roach88/repoquery/internal/querydoc"
)

// LoadCUE loads a catalog from the CUE package in dir.
//
// Expected layout:
//
//	tables: <name>: columns: {<column>: "<TYPE>", ...}
//	views:  <name>: query: <query document>
//
// Column order follows declaration order in the CUE source.
func LoadCUE(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(ErrCodeBuildFailed, err)
	}
	return FromCUE(value)
}

// LoadCUEString loads a catalog from CUE source text.
func LoadCUEString(src string) (*Catalog, error) {
	value := cuecontext.New().CompileString(src)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(ErrCodeBuildFailed, err)
	}
	return FromCUE(value)
}

// FromCUE builds a catalog from an evaluated CUE value.
func FromCUE(value cue.Value) (*Catalog, error) {
	b := NewBuilder()

	tablesVal := value.LookupPath(cue.ParsePath("tables"))
	if tablesVal.Exists() {
		iter, err := tablesVal.Fields()
		if err != nil {
			return nil, formatCUEError(ErrCodeBuildFailed, err)
		}
		for iter.Next() {
			cols, err := parseColumns(iter.Value().LookupPath(cue.ParsePath("columns")))
			if err != nil {
				return nil, err
			}
			b.AddTable(iter.Selector().Unquoted(), cols...)
		}
	}

	viewsVal := value.LookupPath(cue.ParsePath("views"))
	if viewsVal.Exists() {
		iter, err := viewsVal.Fields()
		if err != nil {
			return nil, formatCUEError(ErrCodeBuildFailed, err)
		}
		for iter.Next() {
			name := iter.Selector().Unquoted()
			queryVal := iter.Value().LookupPath(cue.ParsePath("query"))
			if !queryVal.Exists() {
				return nil, &LoadError{Code: ErrCodeInvalidView, Message: fmt.Sprintf("view %s has no query", name), Pos: iter.Value().Pos()}
			}

			var doc querydoc.Document
			if err := queryVal.Decode(&doc); err != nil {
				return nil, formatCUEError(ErrCodeInvalidView, err)
			}
			q, err := querydoc.Compile(&doc)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeInvalidView, Message: fmt.Sprintf("view %s: %v", name, err), Pos: queryVal.Pos()}
			}
			b.AddView(name, q)
		}
	}

	return b.Build()
}

// parseColumns reads {name: "TYPE"} in declaration order.
func parseColumns(v cue.Value) ([]Column, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(ErrCodeBuildFailed, err)
	}
	var cols []Column
	for iter.Next() {
		typ, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(ErrCodeInvalidType, err)
		}
		cols = append(cols, Column{Name: iter.Selector().Unquoted(), Type: typ})
	}
	return cols, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(code ErrorCode, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
