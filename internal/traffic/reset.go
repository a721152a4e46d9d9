package traffic

import (
	"fmt"
	"time"
)

// DefaultResetDate is the day of month when monthly totals restart.
const DefaultResetDate = 5

// DefaultResetWindow is how long after local midnight a tick counts as the reset tick.
const DefaultResetWindow = 5 * time.Minute

// ResetDecision says which counters the current tick must zero.
type ResetDecision struct {
	DailyReset   bool `json:"daily"`
	MonthlyReset bool `json:"monthly"`
}

// ResetPolicy decides whether a tick falls in the reset window.
type ResetPolicy struct {
	// Date is the day of month (1..28) for the monthly reset.
	Date int
	// Window is measured from local midnight; HHMM < window triggers a daily reset.
	Window time.Duration
	// Location is the timezone used by DecideAt; nil means time.Local.
	Location *time.Location
}

// Validate checks Date and Window.
func (p ResetPolicy) Validate() error {
	if p.Date < 1 || p.Date > 28 {
		return fmt.Errorf("reset date must be within 1..28, got %d", p.Date)
	}
	if p.Window < time.Minute || p.Window > time.Hour {
		return fmt.Errorf("reset window must be within 1m..1h, got %s", p.Window)
	}
	return nil
}

// Decide evaluates hhmm (e.g. 4 for 00:04, 1230 for 12:30) and dd (day of month).
func (p ResetPolicy) Decide(hhmm, dd int) ResetDecision {
	minutes := (hhmm/100)*60 + hhmm%100
	var d ResetDecision
	d.DailyReset = minutes >= 0 && float64(minutes) < p.window().Minutes()
	d.MonthlyReset = d.DailyReset && dd == p.date()
	return d
}

// DecideAt evaluates t in the policy's location.
func (p ResetPolicy) DecideAt(t time.Time) ResetDecision {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return p.Decide(lt.Hour()*100+lt.Minute(), lt.Day())
}

func (p ResetPolicy) window() time.Duration {
	if p.Window <= 0 {
		return DefaultResetWindow
	}
	return p.Window
}

func (p ResetPolicy) date() int {
	if p.Date <= 0 {
		return DefaultResetDate
	}
	return p.Date
}
