package lottery

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yanqian/omniluck/pkg/util"
)

const (
	dailySeedStride   = 997
	balanceSeedOffset = 7919
	coldRemapPercent  = 7 // out of 10

	// DefaultDailyCount is used when no count is requested.
	DefaultDailyCount = 5
	// MaxDailyCount caps the number of daily sets per request.
	MaxDailyCount = 100
)

// GeneratorConfig bounds the balance retry loop.
type GeneratorConfig struct {
	MaxBalanceAttempts int
}

// Generator derives deterministic Powerball sets from identity and scores.
type Generator struct {
	maxAttempts int
}

// NewGenerator constructs a Generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	attempts := cfg.MaxBalanceAttempts
	if attempts <= 0 {
		attempts = 50
	}
	return &Generator{maxAttempts: attempts}
}

// NameNumber sums A=1..Z=26 over the name and reduces to one digit.
// Names without letters fall back to 1.
func NameNumber(name string) int {
	total := 0
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			total += int(r-'A') + 1
		}
	}
	total = reduceDigits(total)
	if total == 0 {
		return 1
	}
	return total
}

func reduceDigits(n int) int {
	for n > 9 {
		sum := 0
		for ; n > 0; n /= 10 {
			sum += n % 10
		}
		n = sum
	}
	return n
}

// Personal returns the identity set: the same name and date of birth always
// yield the same numbers.
func (g *Generator) Personal(name, dob string) (Set, error) {
	dob = strings.TrimSpace(dob)
	birth, err := util.ParseDate(dob)
	if err != nil {
		return Set{}, fmt.Errorf("parse dob: %w", err)
	}
	nameNum := NameNumber(name)
	year, month, day := birth.Year(), int(birth.Month()), birth.Day()
	lifePath := reduceDigits(year + month + day)

	balls := make([]int, 0, ballsPerSet)
	balls = append(balls, (nameNum*7)%whiteBallMax+1)

	rng := &lcg{state: seedOf(name, dob)}
	for _, component := range []int{year, month, day, lifePath} {
		ball := rng.ball(uint64(component), whiteBallMax)
		for slices.Contains(balls, ball) {
			ball = rng.ball(0, whiteBallMax)
		}
		balls = append(balls, ball)
	}
	slices.Sort(balls)

	return Set{
		WhiteBalls: balls,
		Powerball:  (lifePath+nameNum)%powerballMax + 1,
		Type:       TypePersonal,
		Balanced:   IsBalanced(balls),
	}, nil
}

// Daily returns in.Count sets for one day, weighted by hot and cold numbers
// and retried until balanced or the attempt budget runs out.
func (g *Generator) Daily(in DailyInput, stats Stats) []Set {
	count := in.Count
	if count <= 0 {
		count = DefaultDailyCount
	}
	if count > MaxDailyCount {
		count = MaxDailyCount
	}
	weights := newWeighting(stats)
	base := seedOf(in.Name, strings.TrimSpace(in.DOB), in.Date, strconv.Itoa(in.LuckScore))
	scoreSum := uint64(nonNegative(in.LuckScore) + nonNegative(in.AstroScore) + nonNegative(in.NatalScore))

	sets := make([]Set, 0, count)
	for i := 0; i < count; i++ {
		seed := base + uint64(i)*dailySeedStride + scoreSum
		sets = append(sets, g.balancedSet(seed, i, weights))
	}
	return sets
}

// balancedSet regenerates from a perturbed seed until the set passes every
// balance check; the last candidate is returned when attempts are exhausted.
func (g *Generator) balancedSet(seed uint64, index int, weights weighting) Set {
	var set Set
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		rng := &lcg{state: seed}
		balls := weights.draw(rng)
		set = Set{
			WhiteBalls: balls,
			Powerball:  rng.ball(uint64(index), powerballMax),
			Type:       TypeDaily,
			Index:      index + 1,
			Balanced:   IsBalanced(balls),
		}
		if set.Balanced {
			return set
		}
		seed += balanceSeedOffset
	}
	return set
}

type weighting struct {
	hot  map[int]bool
	cold map[int]bool
}

func newWeighting(stats Stats) weighting {
	w := weighting{hot: make(map[int]bool), cold: make(map[int]bool)}
	for _, n := range stats.HotNumbers {
		w.hot[n] = true
	}
	for _, n := range stats.ColdNumbers {
		if !w.hot[n] {
			w.cold[n] = true
		}
	}
	return w
}

// draw picks five distinct white balls. A cold candidate is usually
// discarded and redrawn; a candidate adjacent to a hot number snaps onto it.
func (w weighting) draw(rng *lcg) []int {
	balls := make([]int, 0, ballsPerSet)
	for len(balls) < ballsPerSet {
		ball := rng.ball(0, whiteBallMax)
		if w.cold[ball] && rng.next(0)%10 < coldRemapPercent {
			continue
		}
		ball = w.snap(ball, balls)
		if slices.Contains(balls, ball) {
			continue
		}
		balls = append(balls, ball)
	}
	slices.Sort(balls)
	return balls
}

func (w weighting) snap(ball int, taken []int) int {
	if w.hot[ball] {
		return ball
	}
	for _, candidate := range []int{ball - 1, ball + 1} {
		if w.hot[candidate] && !slices.Contains(taken, candidate) {
			return candidate
		}
	}
	return ball
}

// IsBalanced applies the harmonic sum, parity and range checks.
func IsBalanced(balls []int) bool {
	if len(balls) != ballsPerSet {
		return false
	}
	sum, odd, low := 0, 0, 0
	for _, b := range balls {
		sum += b
		if b%2 == 1 {
			odd++
		}
		if b <= 34 {
			low++
		}
	}
	return sum >= 130 && sum <= 220 &&
		(odd == 2 || odd == 3) &&
		(low == 2 || low == 3)
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
