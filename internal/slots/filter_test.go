package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachintaksande/cowin-notifier/internal/cowin"
)

func testCenter(sessions ...cowin.Session) cowin.Center {
	return cowin.Center{
		Name:         "UPHC Sadar",
		Address:      "Near Civil Lines",
		BlockName:    "Nagpur Urban",
		DistrictName: "Nagpur",
		StateName:    "Maharashtra",
		Pincode:      440001,
		FeeType:      "Free",
		Sessions:     sessions,
	}
}

func TestEvaluateBoundaries(t *testing.T) {
	criteria := Criteria{MinimumAge: 44, MinimumSlots: 1}
	tests := []struct {
		name     string
		capacity float64
		age      int
		want     bool
	}{
		{"age limit above minimum", 5, 45, false},
		{"age limit equal to minimum", 5, 44, true},
		{"age limit below minimum", 5, 18, true},
		{"capacity equal to minimum slots", 1, 18, true},
		{"no capacity", 0, 18, false},
		{"fractional capacity below one", 0.5, 18, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := cowin.Session{Date: "17-10-2026", AvailableCapacity: tt.capacity, MinAgeLimit: tt.age}
			_, ok := Evaluate(testCenter(session), session, criteria)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestEvaluateMinimumSlots(t *testing.T) {
	session := cowin.Session{AvailableCapacity: 3, MinAgeLimit: 18}
	_, ok := Evaluate(testCenter(), session, Criteria{MinimumAge: 44, MinimumSlots: 3})
	assert.True(t, ok)
	_, ok = Evaluate(testCenter(), session, Criteria{MinimumAge: 44, MinimumSlots: 4})
	assert.False(t, ok)
}

func TestEvaluateOptionalFilters(t *testing.T) {
	session := cowin.Session{AvailableCapacity: 3, MinAgeLimit: 18, Vaccine: "COVISHIELD"}
	center := testCenter()

	_, ok := Evaluate(center, session, Criteria{MinimumAge: 44, MinimumSlots: 1, Vaccine: "covishield", FeeType: "free"})
	assert.True(t, ok)
	_, ok = Evaluate(center, session, Criteria{MinimumAge: 44, MinimumSlots: 1, Vaccine: "covaxin"})
	assert.False(t, ok)
	_, ok = Evaluate(center, session, Criteria{MinimumAge: 44, MinimumSlots: 1, FeeType: "paid"})
	assert.False(t, ok)
}

func TestMatchMessages(t *testing.T) {
	session := cowin.Session{Date: "17-10-2026", AvailableCapacity: 5, MinAgeLimit: 44, Vaccine: "COVISHIELD"}
	center := testCenter(session)

	m, ok := Evaluate(center, session, Criteria{MinimumAge: 44, MinimumSlots: 1})
	require.True(t, ok)

	assert.Equal(t, "5 slots available at UPHC Sadar on 17-10-2026 for 44+.", m.Announcement)
	assert.Contains(t, m.Announcement, "5 slots available")

	for _, want := range []string{
		"44 plus Slots Found!",
		"- Center Name: UPHC Sadar",
		"- Address: Near Civil Lines",
		"- Block Name: Nagpur Urban",
		"- District: Nagpur",
		"- State: Maharashtra",
		"- PIN Code: 440001",
		"- Date: 17-10-2026",
		"- Age Group: 44 plus",
		"- Vaccine: COVISHIELD",
		"- Available Slots: 5",
		"- Price: Free",
	} {
		assert.Contains(t, m.Report, want)
	}
}

func TestScanKeepsReceivedOrder(t *testing.T) {
	first := testCenter(
		cowin.Session{Date: "17-10-2026", AvailableCapacity: 2, MinAgeLimit: 18},
		cowin.Session{Date: "18-10-2026", AvailableCapacity: 0, MinAgeLimit: 18},
	)
	second := testCenter(cowin.Session{Date: "19-10-2026", AvailableCapacity: 7, MinAgeLimit: 45})
	second.Name = "GMC"
	third := testCenter(cowin.Session{Date: "16-10-2026", AvailableCapacity: 9, MinAgeLimit: 44})
	third.Name = "PHC Kamptee"

	matches := Scan([]cowin.Center{first, second, third}, Criteria{MinimumAge: 44, MinimumSlots: 1})
	require.Len(t, matches, 2)
	assert.Equal(t, "17-10-2026", matches[0].Session.Date)
	assert.Equal(t, "PHC Kamptee", matches[1].Center.Name)
	assert.Empty(t, Scan(nil, Criteria{}))
}
