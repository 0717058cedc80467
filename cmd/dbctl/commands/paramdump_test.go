package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/dbrt/pkg/config"
	"github.com/marmos91/dbrt/pkg/paramcache"
)

func TestRunParamdump_NoCacheEntryReportsMiss(t *testing.T) {
	Cfg = &config.Config{}
	Cfg.ParamCache.Path = t.TempDir()
	Cfg.Connection.Host = "127.0.0.1"
	Cfg.Connection.Port = 1523
	paramdumpOpts.Server = ""

	var buf bytes.Buffer
	cmd := paramdumpCmd
	cmd.SetOut(&buf)

	require.NoError(t, runParamdump(cmd, nil))
	require.Contains(t, buf.String(), "no cached forced parameters")
}

func TestRunParamdump_PrintsCachedValues(t *testing.T) {
	dir := t.TempDir()
	Cfg = &config.Config{}
	Cfg.ParamCache.Path = dir
	Cfg.Connection.Host = "127.0.0.1"
	Cfg.Connection.Port = 1523
	paramdumpOpts.Server = "127.0.0.1:1523"

	cache, err := paramcache.Open(dir)
	require.NoError(t, err)
	require.NoError(t, cache.Put("127.0.0.1:1523", map[string]string{"max_clients": "100"}, time.Hour))
	require.NoError(t, cache.Close())

	var buf bytes.Buffer
	cmd := paramdumpCmd
	cmd.SetOut(&buf)

	require.NoError(t, runParamdump(cmd, nil))
	require.Contains(t, buf.String(), "max_clients")
	require.Contains(t, buf.String(), "100")
}
