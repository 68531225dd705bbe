// Package numerology derives Pythagorean core numbers from a birth date and
// name and scores a target day against them.
package numerology

import (
	"log/slog"
	"time"

	apperrors "github.com/yanqian/omniluck/pkg/errors"
	"github.com/yanqian/omniluck/pkg/util"
)

// Profile holds the core numbers and the day's harmony score.
type Profile struct {
	LifePath     int `json:"lifePathNumber"`
	Destiny      int `json:"destinyNumber"`
	PersonalDay  int `json:"personalDayNumber"`
	HarmonyScore int `json:"numerologyScore"`
}

// Service computes numerology profiles.
type Service interface {
	Profile(dob, name string, target time.Time) (Profile, error)
}

type service struct {
	logger *slog.Logger
}

// NewService constructs the numerology service.
func NewService(logger *slog.Logger) Service {
	return &service{logger: logger.With("component", "numerology.service")}
}

func (s *service) Profile(dob, name string, target time.Time) (Profile, error) {
	birth, err := util.ParseDate(dob)
	if err != nil {
		return Profile{}, apperrors.Wrap(apperrors.CodeInvalidInput, "dob must be formatted as YYYY-MM-DD", err)
	}
	lp := LifePath(birth)
	destiny := Destiny(name)
	pd := PersonalDay(birth, target)
	profile := Profile{
		LifePath:     lp,
		Destiny:      destiny,
		PersonalDay:  pd,
		HarmonyScore: Harmony(lp, destiny, pd),
	}
	s.logger.Debug("numerology profile", "life_path", lp, "destiny", destiny, "personal_day", pd)
	return profile, nil
}
