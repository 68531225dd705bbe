package lottery

import (
	"crypto/md5"
	"encoding/binary"
	"strings"
)

// 31-bit linear congruential recurrence. The constants are part of the
// product contract: identical inputs must keep producing identical numbers.
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgMask       = 0x7fffffff
)

type lcg struct {
	state uint64
}

// next advances the state, folding extra into the increment.
func (g *lcg) next(extra uint64) uint64 {
	g.state = (g.state*lcgMultiplier + lcgIncrement + extra) & lcgMask
	return g.state
}

func (g *lcg) ball(extra uint64, max int) int {
	return int(g.next(extra)%uint64(max)) + 1
}

// seedOf hashes the concatenated parts with md5. Only the low 64 bits of the
// digest are kept: the recurrence masks to 31 bits, and the low bits of sums
// and products never depend on higher ones.
func seedOf(parts ...string) uint64 {
	sum := md5.Sum([]byte(strings.Join(parts, "")))
	return binary.BigEndian.Uint64(sum[8:])
}
