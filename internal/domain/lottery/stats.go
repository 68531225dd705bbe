package lottery

import (
	"slices"
	"strconv"
	"strings"
)

const (
	hotWhiteCount  = 16
	coldWhiteCount = 10
	hotPBCount     = 5
	coldPBCount    = 5
)

// FallbackStats are long-run frequencies used when no drawings can be fetched.
func FallbackStats() Stats {
	return Stats{
		HotNumbers:     []int{61, 32, 63, 21, 69, 36, 62, 39, 37, 23, 10, 24, 59, 20, 3, 27},
		ColdNumbers:    []int{13, 34, 4, 46, 51, 26, 60, 16, 35, 29},
		HotPowerballs:  []int{6, 9, 14, 18, 21},
		ColdPowerballs: []int{1, 12, 15, 17, 25},
		Fallback:       true,
	}
}

// ParseWinningNumbers splits "03 18 36 41 54 07" into five white balls and the
// powerball. Rows with a ball outside 1-69 (white) or 1-26 (powerball) are
// rejected so they never reach the frequency tables.
func ParseWinningNumbers(raw string) ([]int, int, bool) {
	parts := strings.Fields(raw)
	if len(parts) != ballsPerSet+1 {
		return nil, 0, false
	}
	nums := make([]int, 0, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, 0, false
		}
		limit := whiteBallMax
		if i == ballsPerSet {
			limit = powerballMax
		}
		if n < 1 || n > limit {
			return nil, 0, false
		}
		nums = append(nums, n)
	}
	return nums[:ballsPerSet], nums[ballsPerSet], true
}

func validDrawing(d Drawing) bool {
	if len(d.WhiteBalls) != ballsPerSet || d.Powerball < 1 || d.Powerball > powerballMax {
		return false
	}
	for _, b := range d.WhiteBalls {
		if b < 1 || b > whiteBallMax {
			return false
		}
	}
	return true
}

// ComputeStats counts how often each number was drawn. Ties rank by the lower number.
func ComputeStats(draws []Drawing) Stats {
	white := make(map[int]int)
	power := make(map[int]int)
	for _, d := range draws {
		if !validDrawing(d) {
			continue
		}
		for _, b := range d.WhiteBalls {
			white[b]++
		}
		power[d.Powerball]++
	}
	whiteRanked := rankByFrequency(white)
	powerRanked := rankByFrequency(power)
	return Stats{
		HotNumbers:         head(whiteRanked, hotWhiteCount),
		ColdNumbers:        tail(whiteRanked, coldWhiteCount),
		HotPowerballs:      head(powerRanked, hotPBCount),
		ColdPowerballs:     tail(powerRanked, coldPBCount),
		WhiteFrequency:     white,
		PowerballFrequency: power,
		TotalDraws:         len(draws),
	}
}

func rankByFrequency(counts map[int]int) []int {
	nums := make([]int, 0, len(counts))
	for n := range counts {
		nums = append(nums, n)
	}
	slices.SortFunc(nums, func(a, b int) int {
		if counts[a] != counts[b] {
			return counts[b] - counts[a]
		}
		return a - b
	})
	return nums
}

func head(nums []int, n int) []int {
	if len(nums) < n {
		n = len(nums)
	}
	return slices.Clone(nums[:n])
}

func tail(nums []int, n int) []int {
	if len(nums) < n {
		n = len(nums)
	}
	return slices.Clone(nums[len(nums)-n:])
}
