package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0", "1.0.0", 0},
		{"1", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.0.10", "1.0.9", 1},
		{"2.0.0", "1.99.99", 1},
		{"1.2", "1.10", -1},
		{"1.0.0.1", "1.0.0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b))
			assert.Equal(t, -tt.want, CompareVersions(tt.b, tt.a))
		})
	}
}

func TestParseVersion(t *testing.T) {
	got, err := ParseVersion("1.2.3")
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	for _, bad := range []string{"", "1..2", "a.b", "1.-1", "v1.0"} {
		_, err := ParseVersion(bad)
		assert.ErrorIs(t, err, ErrInvalidVersion, bad)
	}
}
