package astrology

import (
	"time"

	"github.com/yanqian/omniluck/pkg/util"
)

type dateSign struct {
	sign                 SunSign
	startMonth, startDay int
	endMonth, endDay     int
}

var dateSigns = []dateSign{
	{SunSign{"Capricorn", "♑"}, 12, 22, 1, 19},
	{SunSign{"Aquarius", "♒"}, 1, 20, 2, 18},
	{SunSign{"Pisces", "♓"}, 2, 19, 3, 20},
	{SunSign{"Aries", "♈"}, 3, 21, 4, 19},
	{SunSign{"Taurus", "♉"}, 4, 20, 5, 20},
	{SunSign{"Gemini", "♊"}, 5, 21, 6, 21},
	{SunSign{"Cancer", "♋"}, 6, 22, 7, 22},
	{SunSign{"Leo", "♌"}, 7, 23, 8, 22},
	{SunSign{"Virgo", "♍"}, 8, 23, 9, 22},
	{SunSign{"Libra", "♎"}, 9, 23, 10, 23},
	{SunSign{"Scorpio", "♏"}, 10, 24, 11, 22},
	{SunSign{"Sagittarius", "♐"}, 11, 23, 12, 21},
}

// SunSignForDate resolves the conventional sun sign from a calendar date.
func SunSignForDate(date time.Time) SunSign {
	month, day := int(date.Month()), date.Day()
	for _, ds := range dateSigns {
		if (month == ds.startMonth && day >= ds.startDay) || (month == ds.endMonth && day <= ds.endDay) {
			return ds.sign
		}
	}
	return dateSigns[0].sign
}

// SunSignForDOB parses a YYYY-MM-DD date of birth.
func SunSignForDOB(dob string) (SunSign, error) {
	date, err := util.ParseDate(dob)
	if err != nil {
		return SunSign{}, err
	}
	return SunSignForDate(date), nil
}
