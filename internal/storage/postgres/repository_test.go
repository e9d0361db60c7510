package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         PaginationParams
		want       PaginationParams
		wantOffset int
	}{
		{"defaults", PaginationParams{}, PaginationParams{Page: 1, PageSize: DefaultPageSize}, 0},
		{"third page", PaginationParams{Page: 3, PageSize: 10}, PaginationParams{Page: 3, PageSize: 10}, 20},
		{"capped", PaginationParams{Page: 2, PageSize: 1000}, PaginationParams{Page: 2, PageSize: MaxPageSize}, MaxPageSize},
		{"negative page", PaginationParams{Page: -4, PageSize: 5}, PaginationParams{Page: 1, PageSize: 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			offset := p.Normalize()
			assert.Equal(t, tt.want, p)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)), ErrConflict)

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}
