package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompat_NullIsCompatibleWithEverything(t *testing.T) {
	for _, m := range []Mode{ModeNA, ModeNull, ModeS, ModeU, ModeX} {
		assert.True(t, Compat(m, ModeNull), "req=%s", m)
		assert.True(t, Compat(ModeNull, m), "held=%s", m)
	}
}

func TestCompat_ExclusiveConflictsWithEverythingButNull(t *testing.T) {
	assert.False(t, Compat(ModeX, ModeS))
	assert.False(t, Compat(ModeX, ModeU))
	assert.False(t, Compat(ModeX, ModeX))
	assert.True(t, Compat(ModeX, ModeNull))
}

func TestConv_IsMonotoneLatticeJoin(t *testing.T) {
	order := map[Mode]int{ModeNull: 0, ModeS: 1, ModeU: 2, ModeX: 3}
	for _, req := range []Mode{ModeNull, ModeS, ModeU, ModeX} {
		for _, held := range []Mode{ModeNull, ModeS, ModeU, ModeX} {
			granted := Conv(req, held)
			assert.GreaterOrEqual(t, order[granted], order[req])
			assert.GreaterOrEqual(t, order[granted], order[held])
		}
	}
}

func TestUpgradeScenario_SHeldRequestU(t *testing.T) {
	assert.True(t, Compat(ModeU, ModeS))
	assert.Equal(t, ModeU, Conv(ModeU, ModeS))
}

func TestScenario_XConflictsWithHeldS(t *testing.T) {
	assert.False(t, Compat(ModeX, ModeS))
}
