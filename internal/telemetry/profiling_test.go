package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitProfiling_DisabledIsNoop(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, shutdown())
}
