package numerology

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var letterValues = map[rune]int{
	'a': 1, 'j': 1, 's': 1,
	'b': 2, 'k': 2, 't': 2,
	'c': 3, 'l': 3, 'u': 3,
	'd': 4, 'm': 4, 'v': 4,
	'e': 5, 'n': 5, 'w': 5,
	'f': 6, 'o': 6, 'x': 6,
	'g': 7, 'p': 7, 'y': 7,
	'h': 8, 'q': 8, 'z': 8,
	'i': 9, 'r': 9,
}

// concord groups; 0 means no group.
var concordGroups = map[int]int{
	1: 1, 5: 1, 7: 1,
	2: 2, 4: 2, 8: 2, 11: 2, 22: 2,
	3: 3, 6: 3, 9: 3, 33: 3,
}

// IsMaster reports whether n is one of the master numbers 11, 22 or 33.
func IsMaster(n int) bool {
	return n == 11 || n == 22 || n == 33
}

// Reduce sums digits until a single digit remains, stopping early at a master
// number when allowMaster is set.
func Reduce(n int, allowMaster bool) int {
	if n < 0 {
		n = -n
	}
	for n > 9 {
		if allowMaster && IsMaster(n) {
			return n
		}
		n = digitSum(n)
	}
	return n
}

func digitSum(n int) int {
	sum := 0
	for n > 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}

// LifePath reduces month, day and year separately, then their sum.
func LifePath(dob time.Time) int {
	m := Reduce(int(dob.Month()), true)
	d := Reduce(dob.Day(), true)
	y := Reduce(dob.Year(), true)
	return Reduce(m+d+y, true)
}

// Destiny is the reduced letter sum of the full name, 0 when the name has no letters.
func Destiny(name string) int {
	total := 0
	for _, r := range foldName(name) {
		total += letterValues[r]
	}
	if total == 0 {
		return 0
	}
	return Reduce(total, true)
}

// PersonalDay is a plain digit 1-9 for target.
func PersonalDay(dob, target time.Time) int {
	bm := Reduce(int(dob.Month()), false)
	bd := Reduce(dob.Day(), false)
	ty := Reduce(target.Year(), false)
	personalYear := Reduce(bm+bd+ty, true)

	tm := Reduce(int(target.Month()), false)
	td := Reduce(target.Day(), false)
	return Reduce(personalYear+tm+td, false)
}

// Harmony scores how the personal day resonates with the core numbers, in [10, 100].
func Harmony(lifePath, destiny, personalDay int) int {
	score := 50
	pdGroup := concordGroups[personalDay]

	switch {
	case lifePath == personalDay:
		score += 40
	case concordGroups[lifePath] == pdGroup:
		score += 25
	case lifePath%2 == personalDay%2:
		score += 10
	default:
		score -= 5
	}

	switch {
	case destiny == personalDay:
		score += 30
	case concordGroups[destiny] == pdGroup:
		score += 15
	case destiny%2 == personalDay%2:
		score += 5
	}

	if IsMaster(lifePath) || IsMaster(destiny) {
		score += 10
	}
	if personalDay == 8 || personalDay == 9 {
		score += 5
	}
	if score < 10 {
		return 10
	}
	if score > 100 {
		return 100
	}
	return score
}

// foldName lowercases the name, strips diacritics and drops everything but a-z.
func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
