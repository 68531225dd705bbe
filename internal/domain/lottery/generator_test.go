package lottery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameNumber(t *testing.T) {
	require.Equal(t, 9, NameNumber("Jane Doe"))
	require.Equal(t, 9, NameNumber("jane doe"))
	require.Equal(t, 1, NameNumber(""))
	require.Equal(t, 1, NameNumber("42 !"))
}

func TestPersonalIsStable(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{})

	first, err := gen.Personal("Jane Doe", "1990-01-01")
	require.NoError(t, err)
	second, err := gen.Personal("Jane Doe", "1990-01-01")
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.Equal(t, []int{4, 20, 28, 35, 64}, first.WhiteBalls)
	require.Equal(t, 13, first.Powerball)
	require.Equal(t, TypePersonal, first.Type)
	require.Zero(t, first.Index)

	other, err := gen.Personal("Nitay Kumar Sah", "1987-11-13")
	require.NoError(t, err)
	require.Equal(t, []int{9, 46, 49, 57, 59}, other.WhiteBalls)
	require.Equal(t, 13, other.Powerball)
}

func TestPersonalDegenerateName(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{})
	set, err := gen.Personal("", "2000-02-29")
	require.NoError(t, err)
	requireValidSet(t, set)
	require.Contains(t, set.WhiteBalls, 8)

	_, err = gen.Personal("Jane", "29/02/2000")
	require.Error(t, err)
}

func TestDailyMatchesReferenceSequence(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{MaxBalanceAttempts: 50})
	in := DailyInput{Name: "Jane Doe", DOB: "1990-01-01", Date: "2024-03-15", LuckScore: 65, AstroScore: 80, NatalScore: 60}

	sets := gen.Daily(in, FallbackStats())
	require.Len(t, sets, DefaultDailyCount)
	require.Equal(t, []int{10, 23, 47, 54, 63}, sets[0].WhiteBalls)
	require.Equal(t, 7, sets[0].Powerball)
	require.Equal(t, []int{18, 20, 43, 49, 63}, sets[1].WhiteBalls)
	require.Equal(t, 6, sets[1].Powerball)
	require.Equal(t, []int{18, 21, 32, 39, 44}, sets[4].WhiteBalls)
	require.Equal(t, 13, sets[4].Powerball)

	for i, set := range sets {
		requireValidSet(t, set)
		require.Equal(t, TypeDaily, set.Type)
		require.Equal(t, i+1, set.Index)
		require.True(t, set.Balanced)
	}
	require.Equal(t, sets, gen.Daily(in, FallbackStats()))
}

func TestDailyWithoutStatistics(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{})
	in := DailyInput{Name: "Jane Doe", DOB: "1990-01-01", Date: "2024-03-15", LuckScore: 65, AstroScore: 80, NatalScore: 60, Count: 3}

	sets := gen.Daily(in, Stats{})
	require.Len(t, sets, 3)
	require.Equal(t, []int{15, 17, 38, 59, 66}, sets[0].WhiteBalls)
	require.Equal(t, 11, sets[0].Powerball)
	require.Equal(t, []int{7, 18, 26, 49, 63}, sets[1].WhiteBalls)
	require.Equal(t, 20, sets[1].Powerball)
}

func TestDailyBestEffortWhenAttemptsExhausted(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{MaxBalanceAttempts: 1})
	in := DailyInput{Name: "Jane Doe", DOB: "1990-01-01", Date: "2024-03-15", LuckScore: 65, AstroScore: 80, NatalScore: 60, Count: 3}

	sets := gen.Daily(in, FallbackStats())
	require.Len(t, sets, 3)
	require.True(t, sets[0].Balanced)
	require.False(t, sets[1].Balanced)
	require.Equal(t, []int{8, 14, 18, 42, 54}, sets[1].WhiteBalls)
	requireValidSet(t, sets[1])
}

func TestDailyCountBounds(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{})
	in := DailyInput{Name: "A", DOB: "1990-01-01", Date: "2024-03-15", Count: 500}
	sets := gen.Daily(in, FallbackStats())
	require.Len(t, sets, MaxDailyCount)

	distinct := make(map[[5]int]struct{})
	for _, set := range sets {
		requireValidSet(t, set)
		var key [5]int
		copy(key[:], set.WhiteBalls)
		distinct[key] = struct{}{}
	}
	require.Greater(t, len(distinct), MaxDailyCount/2)
}

func TestIsBalanced(t *testing.T) {
	require.True(t, IsBalanced([]int{10, 23, 47, 54, 63}))
	require.False(t, IsBalanced([]int{1, 2, 3, 4, 5}))
	require.False(t, IsBalanced([]int{10, 20, 40, 54, 66}))
	require.False(t, IsBalanced([]int{10, 23}))
}

func requireValidSet(t *testing.T, set Set) {
	t.Helper()
	require.Len(t, set.WhiteBalls, 5)
	seen := make(map[int]bool)
	for i, b := range set.WhiteBalls {
		require.GreaterOrEqual(t, b, 1)
		require.LessOrEqual(t, b, 69)
		require.False(t, seen[b], "duplicate %d", b)
		seen[b] = true
		if i > 0 {
			require.Greater(t, b, set.WhiteBalls[i-1])
		}
	}
	require.GreaterOrEqual(t, set.Powerball, 1)
	require.LessOrEqual(t, set.Powerball, 26)
}
