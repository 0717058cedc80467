// Package lock implements the lock compatibility and conversion algebra: two
// total 5x5 functions over the lock mode lattice. Neither function needs a
// library; they are constant array lookups (see DESIGN.md).
package lock

// Mode enumerates the lock strengths, ordered N/A < NULL < S < U < X.
type Mode int

const (
	ModeNA Mode = iota
	ModeNull
	ModeS
	ModeU
	ModeX

	modeCount = int(ModeX) + 1
)

func (m Mode) String() string {
	switch m {
	case ModeNA:
		return "N/A"
	case ModeNull:
		return "NULL"
	case ModeS:
		return "S"
	case ModeU:
		return "U"
	case ModeX:
		return "X"
	default:
		return "?"
	}
}

// compat[req][held] is true iff a lock requested at `req` may be granted
// concurrently with one already held at `held`. N/A row and column are
// sentinel-only and never consulted by Compat's callers.
var compat = [modeCount][modeCount]bool{
	ModeNA:   {ModeNA: true, ModeNull: true, ModeS: true, ModeU: true, ModeX: true},
	ModeNull: {ModeNA: true, ModeNull: true, ModeS: true, ModeU: true, ModeX: true},
	ModeS:    {ModeNA: true, ModeNull: true, ModeS: true, ModeU: true, ModeX: false},
	ModeU:    {ModeNA: true, ModeNull: true, ModeS: true, ModeU: false, ModeX: false},
	ModeX:    {ModeNA: true, ModeNull: true, ModeS: false, ModeU: false, ModeX: false},
}

// conv[req][held] is the mode granted when a lock at `req` is requested
// while one at `held` is already held: the least upper bound in the lattice
// {NULL <= S <= U <= X}.
var conv = [modeCount][modeCount]Mode{
	ModeNA:   {ModeNA: ModeNA, ModeNull: ModeNull, ModeS: ModeS, ModeU: ModeU, ModeX: ModeX},
	ModeNull: {ModeNA: ModeNull, ModeNull: ModeNull, ModeS: ModeS, ModeU: ModeU, ModeX: ModeX},
	ModeS:    {ModeNA: ModeS, ModeNull: ModeS, ModeS: ModeS, ModeU: ModeU, ModeX: ModeX},
	ModeU:    {ModeNA: ModeU, ModeNull: ModeU, ModeS: ModeU, ModeU: ModeU, ModeX: ModeX},
	ModeX:    {ModeNA: ModeX, ModeNull: ModeX, ModeS: ModeX, ModeU: ModeX, ModeX: ModeX},
}

// Compat reports whether req is compatible with held.
func Compat(req, held Mode) bool {
	return compat[req][held]
}

// Conv returns the mode granted when req is requested against held.
func Conv(req, held Mode) Mode {
	return conv[req][held]
}
