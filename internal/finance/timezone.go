package finance

import (
	"time"

	"portfolioRisk/internal/analysis"
)

// getEasternTime returns America/New_York location, falling back to fixed EST if tzdata is missing.
func getEasternTime() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}

// tradingDay maps a unix timestamp to its trading date on the exchange.
func tradingDay(ts int64, loc *time.Location) time.Time {
	return analysis.Day(time.Unix(ts, 0).In(loc))
}

// exchangeLocation resolves the exchange timezone reported by Yahoo, New York otherwise.
func exchangeLocation(name string, gmtOffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if gmtOffset != 0 {
		return time.FixedZone("exchange", gmtOffset)
	}
	return getEasternTime()
}
