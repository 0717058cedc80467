package prompt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfirmWithForce_SkipsPromptWhenForced(t *testing.T) {
	confirmed, err := ConfirmWithForce("delete everything?", true)
	require.NoError(t, err)
	require.True(t, confirmed)
}

func TestIsAborted(t *testing.T) {
	require.True(t, IsAborted(ErrAborted))
	require.False(t, IsAborted(errors.New("some other error")))
	require.False(t, IsAborted(nil))
}
