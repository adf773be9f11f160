package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_LengthAndUniqueness(t *testing.T) {
	first, err := GenerateToken()
	require.NoError(t, err)
	second, err := GenerateToken()
	require.NoError(t, err)

	// 32 bytes hex-encoded
	assert.Len(t, first, 64)
	assert.Len(t, second, 64)
	assert.NotEqual(t, first, second)
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid bearer", header: "Bearer abc123", want: "abc123"},
		{name: "valid with surrounding spaces", header: "  Bearer abc123  ", want: "abc123"},
		{name: "missing token", header: "Bearer", wantErr: true},
		{name: "empty header", header: "", wantErr: true},
		{name: "too many parts", header: "Bearer a b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearerToken(tt.header)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
