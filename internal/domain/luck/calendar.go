package luck

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/omniluck/pkg/errors"
	"github.com/yanqian/omniluck/pkg/util"
)

const (
	icalVersion   = "2.0"
	icalProductID = "-//OmniLuck//Forecast//EN"
	icalDomain    = "omniluck"
)

// ForecastCalendar renders the forecast as an iCalendar feed with one all-day
// event per day. Event UIDs are stable for a user and date so that calendar
// clients update events instead of duplicating them.
func (s *service) ForecastCalendar(ctx context.Context, req Request) ([]byte, error) {
	forecast, err := s.Forecast(ctx, req)
	if err != nil {
		return nil, err
	}
	owner := strings.TrimSpace(req.UID)
	if owner == "" {
		owner = strings.TrimSpace(req.Name) + "|" + strings.TrimSpace(req.DOB)
	}
	return encodeForecast(forecast, owner, s.now())
}

func encodeForecast(forecast Forecast, owner string, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, icalVersion)
	cal.Props.SetText(ical.PropProductID, icalProductID)
	cal.Props.SetText("X-WR-CALNAME", "OmniLuck Forecast")

	for _, day := range forecast.Trajectory {
		date, err := util.ParseDate(day.Date)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "forecast date malformed", err)
		}
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, eventUID(owner, day.Date))
		event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())

		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetDate(date)
		event.Props.Set(start)

		summary := fmt.Sprintf("OmniLuck %d/100", day.LuckScore)
		if day.Date == forecast.BestDay {
			summary += " (best day)"
		}
		event.Props.SetText(ical.PropSummary, summary)
		event.Props.SetText(ical.PropDescription, eventDescription(day, forecast.TrendDirection))

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode forecast calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func eventUID(owner, date string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(icalDomain+":"+owner+":"+date))
	return id.String() + "@" + icalDomain
}

func eventDescription(day ForecastDay, trend string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Luck score %d, transit score %d. Week trend: %s.", day.LuckScore, day.TransitsScore, trend)
	if len(day.MajorAspects) > 0 {
		b.WriteString(" Major aspects: ")
		b.WriteString(strings.Join(day.MajorAspects, ", "))
		b.WriteString(".")
	}
	return b.String()
}
