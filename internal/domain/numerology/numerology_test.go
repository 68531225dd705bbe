package numerology

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

func TestReduce(t *testing.T) {
	require.Equal(t, 7, Reduce(1987, true))
	require.Equal(t, 11, Reduce(29, true))
	require.Equal(t, 2, Reduce(29, false))
	require.Equal(t, 11, Reduce(38, true))
	require.Equal(t, 22, Reduce(22, true))
	require.Equal(t, 4, Reduce(22, false))
	require.Equal(t, 0, Reduce(0, true))
}

func TestLifePath(t *testing.T) {
	require.Equal(t, 5, LifePath(date(1987, 11, 14)))
	require.Equal(t, 3, LifePath(date(1990, 1, 1)))
}

func TestDestiny(t *testing.T) {
	require.Equal(t, 9, Destiny("Jane Doe"))
	require.Equal(t, 9, Destiny("JANE  doe!"))
	require.Equal(t, 4, Destiny("José"))
	require.Equal(t, Destiny("Jose"), Destiny("José"))
	require.Equal(t, 0, Destiny(""))
	require.Equal(t, 0, Destiny("123 -"))
}

func TestPersonalDayNeverMaster(t *testing.T) {
	require.Equal(t, 1, PersonalDay(date(1990, 1, 1), date(2024, 3, 15)))
	dob := date(1985, 11, 29)
	day := date(2024, 1, 1)
	for i := 0; i < 366; i++ {
		pd := PersonalDay(dob, day.AddDate(0, 0, i))
		require.GreaterOrEqual(t, pd, 1)
		require.LessOrEqual(t, pd, 9)
	}
}

func TestHarmony(t *testing.T) {
	require.Equal(t, 80, Harmony(5, 9, 1))
	require.Equal(t, 90, Harmony(11, 0, 4))
	require.Equal(t, 65, Harmony(1, 2, 8))
	require.Equal(t, 100, Harmony(8, 8, 8))
}

func TestServiceProfileDeterministicAndBounded(t *testing.T) {
	svc := &service{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	target := date(2024, 3, 15)

	first, err := svc.Profile("1987-11-14", "Jane Doe", target)
	require.NoError(t, err)
	second, err := svc.Profile("1987-11-14", "Jane Doe", target)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 5, first.LifePath)
	require.Equal(t, 9, first.Destiny)
	require.GreaterOrEqual(t, first.HarmonyScore, 10)
	require.LessOrEqual(t, first.HarmonyScore, 100)
}

func TestServiceProfileInvalidDOB(t *testing.T) {
	svc := &service{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	_, err := svc.Profile("14/11/1987", "Jane", date(2024, 3, 15))
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
