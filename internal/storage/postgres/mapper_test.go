package postgres

import (
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestEncodeDecodeResults(t *testing.T) {
	results := []model.DispatchResult{
		{Contact: "Mom", Status: model.DispatchSent, SID: "SM1"},
		{Contact: "Dad", Status: model.DispatchFailed, Error: "invalid number"},
	}

	data, err := encodeResults(results)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"contact":"Mom","status":"sent","sid":"SM1"},
		{"contact":"Dad","status":"failed","error":"invalid number"}
	]`, string(data))

	decoded, err := decodeResults(data)
	require.NoError(t, err)
	assert.Equal(t, results, decoded)
}

func TestEncodeResults_EmptyIsArray(t *testing.T) {
	data, err := encodeResults(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	decoded, err := decodeResults(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestToDBLocation(t *testing.T) {
	lat, lng := toDBLocation(nil)
	assert.False(t, lat.Valid)
	assert.False(t, lng.Valid)

	lat, lng = toDBLocation(&model.Location{Lat: 1.5, Lng: -2})
	assert.True(t, lat.Valid)
	assert.Equal(t, 1.5, lat.Float64)
	assert.Equal(t, -2.0, lng.Float64)
}
