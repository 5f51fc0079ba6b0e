package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Pagination{Limit: DefaultLimit}, Pagination{}.Normalize())
	assert.Equal(t, Pagination{Limit: MaxLimit}, Pagination{Limit: 500}.Normalize())
	assert.Equal(t, Pagination{Limit: 5, Offset: 0}, Pagination{Limit: 5, Offset: -3}.Normalize())
	assert.Equal(t, Pagination{Limit: 50, Offset: 100}, Pagination{Limit: 50, Offset: 100}.Normalize())
}

func TestBuildPageInfo(t *testing.T) {
	info := BuildPageInfo(Pagination{Limit: 20, Offset: 0}, 45)
	assert.True(t, info.HasMore)
	assert.Equal(t, int64(45), info.Total)

	info = BuildPageInfo(Pagination{Limit: 20, Offset: 40}, 45)
	assert.False(t, info.HasMore)

	info = BuildPageInfo(Pagination{Limit: 20, Offset: 20}, 40)
	assert.False(t, info.HasMore)
}
