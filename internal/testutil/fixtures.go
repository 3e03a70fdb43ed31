package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/repoquery/internal/querydoc"
	"github.com/roach88/repoquery/internal/queryir"
	"github.com/roach88/repoquery/internal/schema"
)

// Query compiles a YAML query document, failing the test on any error.
//
//	q := testutil.Query(t, `
//	from: t1 AS a
//	joins:
//	  - source: t2 AS b
//	    on: a.c11 = b.c21
//	columns: [a.c11, b.c21]
//	`)
func Query(t testing.TB, doc string) queryir.Query {
	t.Helper()
	parsed, err := querydoc.ParseYAML([]byte(doc))
	require.NoError(t, err)
	q, err := querydoc.Compile(parsed)
	require.NoError(t, err)
	return q
}

// Catalog builds the catalog most engine tests share:
//
//	t1(c11 LONG, c12 STRING, c13 LONG)
//	t2(c21 LONG, c22 STRING)
//	v1 = SELECT c11, c12 FROM t1 WHERE c13 < 3
//	v2 = SELECT a.c11, b.c22 FROM t1 AS a JOIN t2 AS b ON a.c11 = b.c21
//	v3 = SELECT * FROM v1 WHERE c11 > 0
func Catalog(t testing.TB) *schema.Catalog {
	t.Helper()
	catalog, err := schema.NewBuilder().
		AddTable("t1",
			schema.Column{Name: "c11", Type: schema.TypeLong},
			schema.Column{Name: "c12", Type: schema.TypeString},
			schema.Column{Name: "c13", Type: schema.TypeLong}).
		AddTable("t2",
			schema.Column{Name: "c21", Type: schema.TypeLong},
			schema.Column{Name: "c22", Type: schema.TypeString}).
		AddView("v1", Query(t, `
from: t1
columns: [c11, c12]
where: c13 < 3
`)).
		AddView("v2", Query(t, `
from: t1 AS a
joins:
  - source: t2 AS b
    on: a.c11 = b.c21
columns: [a.c11, b.c22]
`)).
		AddView("v3", Query(t, `
from: v1
where: c11 > 0
`)).
		Build()
	require.NoError(t, err)
	return catalog
}
