package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetRootCmd_RegistersSubcommands(t *testing.T) {
	root := GetRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"version", "backup", "lockdb", "paramdump", "config"} {
		require.True(t, names[want], "expected subcommand %q", want)
	}
}

func TestSplitHostPort(t *testing.T) {
	host, port, err := splitHostPort("db.example.com:1523")
	require.NoError(t, err)
	require.Equal(t, "db.example.com", host)
	require.Equal(t, 1523, port)

	_, _, err = splitHostPort("not-a-host-port")
	require.Error(t, err)
}
