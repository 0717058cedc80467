package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeAssignments_PreservesNameAndValue(t *testing.T) {
	raw := map[string]any{
		"max_clients":  32,
		"auto_restart": "yes",
	}
	var out []SysprmAssignment
	require.NoError(t, DecodeAssignments(raw, &out))
	require.Len(t, out, 2)

	byName := map[string]SysprmAssignment{}
	for _, a := range out {
		byName[a.Name] = a
	}
	require.Equal(t, 32, byName["max_clients"].Value)
	require.Equal(t, "yes", byName["auto_restart"].Value)
}

func TestDecodeAssignments_EmptyMapProducesEmptySlice(t *testing.T) {
	var out []SysprmAssignment
	require.NoError(t, DecodeAssignments(map[string]any{}, &out))
	require.Empty(t, out)
}
