package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchKey_Stable(t *testing.T) {
	vec := []float32{0.1, 0.2, 0.3}
	k1 := SearchKey(vec, 10, 40, map[string]string{"domain": "legal"})
	k2 := SearchKey([]float32{0.1, 0.2, 0.3}, 10, 40, map[string]string{"domain": "legal"})
	assert.Equal(t, k1, k2)
}

func TestSearchKey_VariesWithInputs(t *testing.T) {
	vec := []float32{0.1, 0.2, 0.3}
	base := SearchKey(vec, 10, 40, nil)

	assert.NotEqual(t, base, SearchKey([]float32{0.1, 0.2, 0.4}, 10, 40, nil))
	assert.NotEqual(t, base, SearchKey(vec, 5, 40, nil))
	assert.NotEqual(t, base, SearchKey(vec, 10, 100, nil))
	assert.NotEqual(t, base, SearchKey(vec, 10, 40, map[string]string{"a": "b"}))
}

func TestSearchKey_Prefix(t *testing.T) {
	assert.Contains(t, SearchKey(nil, 0, 0, nil), "search:")
}
