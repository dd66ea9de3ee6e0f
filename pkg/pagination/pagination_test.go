package pagination_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zemenay/techpulse-api/pkg/pagination"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    string
		limit   string
		want    pagination.Params
		wantErr error
	}{
		{name: "defaults", want: pagination.Params{Page: 1, Limit: 10}},
		{name: "explicit", page: "3", limit: "20", want: pagination.Params{Page: 3, Limit: 20}},
		{name: "limit capped", page: "1", limit: "500", want: pagination.Params{Page: 1, Limit: 100}},
		{name: "whitespace", page: " 2 ", limit: " 5", want: pagination.Params{Page: 2, Limit: 5}},
		{name: "zero page", page: "0", wantErr: pagination.ErrInvalidPage},
		{name: "negative page", page: "-1", wantErr: pagination.ErrInvalidPage},
		{name: "non numeric page", page: "abc", wantErr: pagination.ErrInvalidPage},
		{name: "zero limit", limit: "0", wantErr: pagination.ErrInvalidLimit},
		{name: "non numeric limit", limit: "ten", wantErr: pagination.ErrInvalidLimit},
		// 偏移量溢出的页码被拒绝
		{name: "offset overflow", page: "92233720368547760", limit: "100", wantErr: pagination.ErrInvalidPage},
		{name: "offset overflow after cap", page: "92233720368547760", limit: "500", wantErr: pagination.ErrInvalidPage},
		{name: "page beyond int", page: "99999999999999999999", wantErr: pagination.ErrInvalidPage},
		{name: "largest page", page: strconv.Itoa(math.MaxInt/100 + 1), limit: "100", want: pagination.Params{Page: math.MaxInt/100 + 1, Limit: 100}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := pagination.Parse(tt.page, tt.limit, 10, 100)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Offset(), 0)
		})
	}
}

func TestParams_Offset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 450, pagination.Params{Page: 10, Limit: 50}.Offset())
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{total: 0, limit: 10, want: 0},
		{total: 1, limit: 10, want: 1},
		{total: 10, limit: 10, want: 1},
		{total: 11, limit: 10, want: 2},
		{total: 100, limit: 20, want: 5},
		{total: 101, limit: 20, want: 6},
		{total: 5, limit: 1, want: 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pagination.TotalPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestNewMeta(t *testing.T) {
	t.Parallel()

	meta := pagination.NewMeta(25, pagination.Params{Page: 2, Limit: 10})
	assert.Equal(t, pagination.Meta{Total: 25, Page: 2, TotalPages: 3, Limit: 10}, meta)
}
