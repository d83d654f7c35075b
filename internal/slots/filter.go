// Package slots decides which CoWIN sessions are worth a notification and
// renders the messages sent for them.
package slots

import (
	"fmt"
	"strings"

	"github.com/sachintaksande/cowin-notifier/internal/cowin"
)

// Criteria are the user preferences a session is matched against.
type Criteria struct {
	MinimumAge   int
	MinimumSlots int
	// Vaccine and FeeType are optional; empty accepts any value.
	Vaccine string
	FeeType string
}

// Match is a session that satisfied the criteria.
type Match struct {
	Center  cowin.Center
	Session cowin.Session

	// Announcement is the short spoken variant.
	Announcement string
	// Report is the detailed written variant.
	Report string
}

// Evaluate reports whether session at center satisfies c and, if so, renders
// both message variants.
func Evaluate(center cowin.Center, session cowin.Session, c Criteria) (Match, bool) {
	if !c.accepts(center, session) {
		return Match{}, false
	}
	return Match{
		Center:       center,
		Session:      session,
		Announcement: Announcement(center, session),
		Report:       Report(center, session),
	}, true
}

// Scan evaluates every session of every center in the order received.
func Scan(centers []cowin.Center, c Criteria) []Match {
	var matches []Match
	for _, center := range centers {
		for _, session := range center.Sessions {
			if m, ok := Evaluate(center, session, c); ok {
				matches = append(matches, m)
			}
		}
	}
	return matches
}

func (c Criteria) accepts(center cowin.Center, session cowin.Session) bool {
	if session.Capacity() < c.MinimumSlots {
		return false
	}
	if session.MinAgeLimit > c.MinimumAge {
		return false
	}
	if c.FeeType != "" && !strings.EqualFold(c.FeeType, center.FeeType) {
		return false
	}
	if c.Vaccine != "" && !strings.EqualFold(c.Vaccine, session.Vaccine) {
		return false
	}
	return true
}

// Announcement renders the one-line message read out by the speech channel.
func Announcement(center cowin.Center, session cowin.Session) string {
	return fmt.Sprintf("%d slots available at %s on %s for %d+.",
		session.Capacity(), center.Name, session.Date, session.MinAgeLimit)
}

// Report renders the detailed message sent to messaging channels.
func Report(center cowin.Center, session cowin.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d plus Slots Found!\n", session.MinAgeLimit)
	fmt.Fprintf(&b, "- Center Name: %s\n", center.Name)
	fmt.Fprintf(&b, "- Address: %s\n", center.Address)
	fmt.Fprintf(&b, "- Block Name: %s\n", center.BlockName)
	fmt.Fprintf(&b, "- District: %s\n", center.DistrictName)
	fmt.Fprintf(&b, "- State: %s\n", center.StateName)
	fmt.Fprintf(&b, "- PIN Code: %d\n\n", center.Pincode)
	fmt.Fprintf(&b, "- Date: %s\n", session.Date)
	fmt.Fprintf(&b, "- Age Group: %d plus\n", session.MinAgeLimit)
	fmt.Fprintf(&b, "- Vaccine: %s\n", session.Vaccine)
	fmt.Fprintf(&b, "- Available Slots: %d\n\n", session.Capacity())
	fmt.Fprintf(&b, "- Price: %s", center.FeeType)
	return b.String()
}
