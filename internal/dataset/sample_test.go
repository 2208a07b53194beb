package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample(t *testing.T) {
	table, err := Sample()
	require.NoError(t, err)

	assert.Equal(t, 336, table.Len())
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), table.Start())
	assert.Equal(t, time.Date(2024, time.January, 14, 23, 0, 0, 0, time.UTC), table.End())
	assert.Equal(t,
		[]string{"Nuclear", "Solar", "Wind offshore", "Wind onshore"},
		table.Technologies())

	again, err := Sample()
	require.NoError(t, err)
	assert.Same(t, table, again)
}
