package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunLockdb_PrintsBothMatrices(t *testing.T) {
	var buf bytes.Buffer
	cmd := lockdbCmd
	cmd.SetOut(&buf)

	require.NoError(t, runLockdb(cmd, nil))

	out := buf.String()
	require.Contains(t, out, "compatibility")
	require.Contains(t, out, "conversion")
	require.Contains(t, out, "NULL")
	require.Contains(t, out, "X")
}

func TestBoolCell(t *testing.T) {
	require.Equal(t, "yes", boolCell(true))
	require.Equal(t, "no", boolCell(false))
}

func TestHeaderRow_OneEntryPerLockMode(t *testing.T) {
	row := headerRow("corner")
	require.Len(t, row, len(allLockModes)+1)
	require.Equal(t, "corner", row[0])
}
