package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableData_HeadersAndRows(t *testing.T) {
	td := NewTableData("A", "B")
	td.AddRow("1", "2")
	td.AddRow("3", "4")

	require.Equal(t, []string{"A", "B"}, td.Headers())
	require.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, td.Rows())
}

func TestPrintTable_RendersHeaderAndRows(t *testing.T) {
	td := NewTableData("Name", "Value")
	td.AddRow("threads", "4")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, td))

	out := buf.String()
	require.Contains(t, out, "NAME")
	require.Contains(t, out, "threads")
	require.Contains(t, out, "4")
}

func TestSimpleTable_RendersKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, [][2]string{{"host", "127.0.0.1"}}))

	out := buf.String()
	require.Contains(t, out, "host")
	require.Contains(t, out, "127.0.0.1")
}
