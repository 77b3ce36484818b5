package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"cells", KindCells, false},
		{"CaloCells", KindCells, false},
		{" clusters ", KindClusters, false},
		{"Track", KindTracks, false},
		{"jets", KindUndefined, true},
		{"", KindUndefined, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindValid(t *testing.T) {
	assert.False(t, KindUndefined.Valid())
	assert.True(t, KindCells.Valid())
	assert.True(t, KindClusters.Valid())
	assert.True(t, KindTracks.Valid())
	assert.False(t, Kind(99).Valid())
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("ESD")
	require.NoError(t, err)
	assert.Equal(t, FormatESD, f)

	f, err = ParseFormat("aod")
	require.NoError(t, err)
	assert.Equal(t, FormatAOD, f)

	_, err = ParseFormat("raw")
	assert.Error(t, err)
	assert.Equal(t, "unknown", FormatUnknown.String())
}

func TestNormalizeName(t *testing.T) {
	// "e" + combining acute and the precomposed form address the same name.
	decomposed := "celle\u0301s"
	composed := "cell\u00e9s"
	assert.Equal(t, composed, NormalizeName(decomposed))
	assert.Equal(t, "emcalCells", NormalizeName("emcalCells"))
}
