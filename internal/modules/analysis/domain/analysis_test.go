package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabels_ValueAndScan(t *testing.T) {
	labels := Labels{{Name: "Cat", Confidence: 99.1}}

	v, err := labels.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Cat","confidence":99.1}]`, string(v.([]byte)))

	empty, err := Labels(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty.([]byte)))

	var scanned Labels
	require.NoError(t, scanned.Scan([]byte(`[{"name":"Pet","confidence":97.5}]`)))
	assert.Equal(t, Labels{{Name: "Pet", Confidence: 97.5}}, scanned)

	require.NoError(t, scanned.Scan(`[]`))
	assert.Empty(t, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.NotNil(t, scanned)

	assert.Error(t, scanned.Scan(42))
	assert.Error(t, scanned.Scan([]byte("{")))
}
