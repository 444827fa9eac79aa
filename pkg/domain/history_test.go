package domain_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryEntry_JSON(t *testing.T) {
	entries := []domain.HistoryEntry{
		{Expression: "1 + 2", Result: 3, Timestamp: 1700000000000},
		{Expression: "5 ÷ 0", Result: math.Inf(1), Timestamp: 1700000000001},
	}

	data, err := json.Marshal(entries)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"expression":"1 + 2","result":3,"timestamp":1700000000000},
		{"expression":"5 ÷ 0","result":"Infinity","timestamp":1700000000001}
	]`, string(data))

	var decoded []domain.HistoryEntry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, entries[0], decoded[0])
	assert.True(t, math.IsInf(decoded[1].Result, 1))
}

func TestHistoryEntry_UnmarshalNullResult(t *testing.T) {
	var e domain.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(`{"expression":"0 % 0","result":null,"timestamp":1}`), &e))
	assert.True(t, math.IsNaN(e.Result))

	err := json.Unmarshal([]byte(`{"expression":"x","result":"seven","timestamp":1}`), &e)
	assert.Error(t, err)
}
