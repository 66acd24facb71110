package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	p := FromRequest(req)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_CustomValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items?page=3&per_page=50", nil)
	p := FromRequest(req)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PerPage)
	assert.Equal(t, 100, p.Offset) // (3-1) * 50
}

func TestFromRequest_InvalidPage(t *testing.T) {
	for _, raw := range []string{"-1", "0", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/items?page="+raw, nil)
		p := FromRequest(req)
		assert.Equal(t, 1, p.Page, "page=%s should fall back to default", raw)
	}
}

func TestFromRequest_PerPage_MaxCap(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items?per_page=200", nil)
	p := FromRequest(req)
	assert.Equal(t, 20, p.PerPage) // falls back to default (200 > 100)
}

func TestFromRequest_PerPage_Exactly100(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/items?per_page=100", nil)
	p := FromRequest(req)
	assert.Equal(t, 100, p.PerPage)
}

func TestFromRequest_OffsetCalculation(t *testing.T) {
	tests := []struct {
		page    string
		perPage string
		offset  int
	}{
		{"1", "10", 0},
		{"2", "10", 10},
		{"3", "25", 50},
		{"5", "20", 80},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/items?page="+tt.page+"&per_page="+tt.perPage, nil)
		p := FromRequest(req)
		assert.Equal(t, tt.offset, p.Offset)
	}
}

func TestNewResult_Basic(t *testing.T) {
	data := []string{"a", "b", "c"}
	r := NewResult(data, 3, Params{Page: 1, PerPage: 20})

	assert.Equal(t, data, r.Data)
	assert.Equal(t, 3, r.TotalCount)
	assert.Equal(t, 1, r.TotalPages)
	assert.False(t, r.HasNext)
	assert.False(t, r.HasPrev)
}

func TestNewResult_MultiplePages(t *testing.T) {
	r := NewResult([]int{1, 2, 3}, 45, Params{Page: 2, PerPage: 20})

	assert.Equal(t, 3, r.TotalPages) // 45 / 20 rounds up
	assert.True(t, r.HasNext)
	assert.True(t, r.HasPrev)
}

func TestNewResult_LastPage(t *testing.T) {
	r := NewResult([]int{1}, 41, Params{Page: 3, PerPage: 20})

	assert.Equal(t, 3, r.TotalPages)
	assert.False(t, r.HasNext)
	assert.True(t, r.HasPrev)
}

func TestNewResult_NilDataBecomesEmptySlice(t *testing.T) {
	r := NewResult[string](nil, 0, Params{Page: 1, PerPage: 20})

	assert.NotNil(t, r.Data)
	assert.Empty(t, r.Data)
	assert.Equal(t, 0, r.TotalPages)
}
