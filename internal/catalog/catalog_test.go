package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reqtrack/internal/model"
)

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	c := Default()
	require.Greater(t, c.Len(), 0)

	ids := c.IDs()
	for i := 1; i < len(ids); i++ {
		a, _ := c.Get(ids[i-1])
		b, _ := c.Get(ids[i])
		require.LessOrEqual(t, a.Order, b.Order, "catalog must be in order")
	}
	require.Same(t, c, Default())
}

func TestNew_SortsByOrderAndRejectsDuplicates(t *testing.T) {
	t.Parallel()

	c, err := New([]model.Requirement{
		{ID: 30, Order: 3, Name: "C"},
		{ID: 10, Order: 1, Name: "A"},
		{ID: 20, Order: 2, Name: "B"},
	})
	require.NoError(t, err)
	require.Equal(t, []int{10, 20, 30}, c.IDs())
	require.Equal(t, 2, c.Position(30))
	require.Equal(t, -1, c.Position(99))
	require.True(t, c.Has(20))

	_, err = New([]model.Requirement{{ID: 1, Order: 1, Name: "A"}, {ID: 1, Order: 2, Name: "B"}})
	require.Error(t, err)

	_, err = New([]model.Requirement{{ID: 1, Order: 1, Name: "A", Category: "dance"}})
	require.Error(t, err)
}
