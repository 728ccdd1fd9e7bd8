package selection_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynsel/internal/ir"
	"github.com/roach88/dynsel/internal/registry"
	"github.com/roach88/dynsel/internal/selection"
	"github.com/roach88/dynsel/internal/testutil"
)

func TestSelectManyEntitiesWithSequenceTokens(t *testing.T) {
	reg := registry.New()
	var query, want strings.Builder
	query.WriteString("{ ")
	want.WriteString("{ ")
	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("E%d", i)
		field := fmt.Sprintf("f%d_x", i)
		reg.RegisterType(name, name+"Entity", ir.ExpansionOptions{})
		reg.RegisterField(name+"Entity", ir.FieldDescriptor{Name: field})
		fmt.Fprintf(&query, "q%d { %s } ", i, name)
		fmt.Fprintf(&want, "q%d { %s } ", i, field)
	}
	query.WriteString("}")
	want.WriteString("}")

	gen := testutil.NewSequenceGenerator("")
	eng := selection.New(reg,
		selection.WithTokenGenerator(gen),
		selection.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	out, err := eng.SelectString(context.Background(), query.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, normalizeQuery(t, want.String()), out)
	assert.Equal(t, 12, gen.Issued())
}
