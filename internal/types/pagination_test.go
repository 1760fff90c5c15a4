package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPageMeta(t *testing.T) {
	cases := []struct {
		name        string
		total       int64
		page, limit int
		totalPages  int
		hasNext     bool
		hasPrevious bool
	}{
		{"empty", 0, 1, 20, 0, false, false},
		{"single partial page", 5, 1, 20, 1, false, false},
		{"exact boundary", 40, 1, 20, 2, true, false},
		{"middle page", 100, 3, 20, 5, true, true},
		{"last page", 100, 5, 20, 5, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := NewPageMeta(tc.total, tc.page, tc.limit)

			require.Equal(t, tc.total, meta.Total)
			require.Equal(t, tc.totalPages, meta.TotalPages)
			require.Equal(t, tc.hasNext, meta.HasNext)
			require.Equal(t, tc.hasPrevious, meta.HasPrevious)
		})
	}
}
