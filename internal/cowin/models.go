package cowin

// Center is a vaccination site returned by the calendar endpoints.
type Center struct {
	CenterID     int       `json:"center_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	StateName    string    `json:"state_name"`
	DistrictName string    `json:"district_name"`
	BlockName    string    `json:"block_name"`
	Pincode      int       `json:"pincode"`
	FeeType      string    `json:"fee_type"`
	Sessions     []Session `json:"sessions"`
}

// Session is one dated batch of bookable capacity at a center.
type Session struct {
	SessionID         string   `json:"session_id"`
	Date              string   `json:"date"`
	AvailableCapacity float64  `json:"available_capacity"`
	MinAgeLimit       int      `json:"min_age_limit"`
	Vaccine           string   `json:"vaccine"`
	Slots             []string `json:"slots"`
}

// Capacity returns the available capacity as a whole number of slots.
func (s Session) Capacity() int {
	return int(s.AvailableCapacity)
}

// State is an entry of the admin states listing.
type State struct {
	StateID   int    `json:"state_id"`
	StateName string `json:"state_name"`
}

// District is an entry of the admin districts listing.
type District struct {
	DistrictID   int    `json:"district_id"`
	DistrictName string `json:"district_name"`
}

type statesResponse struct {
	States []State `json:"states"`
	TTL    int     `json:"ttl"`
}

type districtsResponse struct {
	Districts []District `json:"districts"`
	TTL       int        `json:"ttl"`
}

// calendarResponse mirrors the calendar payload with pointers on the fields
// that must be present for a session to be evaluated.
type calendarResponse struct {
	Centers *[]calendarCenter `json:"centers"`
}

type calendarCenter struct {
	CenterID     int                `json:"center_id"`
	Name         string             `json:"name"`
	Address      string             `json:"address"`
	StateName    string             `json:"state_name"`
	DistrictName string             `json:"district_name"`
	BlockName    string             `json:"block_name"`
	Pincode      int                `json:"pincode"`
	FeeType      string             `json:"fee_type"`
	Sessions     *[]calendarSession `json:"sessions"`
}

type calendarSession struct {
	SessionID         string   `json:"session_id"`
	Date              string   `json:"date"`
	AvailableCapacity *float64 `json:"available_capacity"`
	MinAgeLimit       *int     `json:"min_age_limit"`
	Vaccine           string   `json:"vaccine"`
	Slots             []string `json:"slots"`
}

func (r calendarResponse) toCenters() ([]Center, error) {
	if r.Centers == nil {
		return nil, ErrMissingCenters
	}
	centers := make([]Center, 0, len(*r.Centers))
	for _, raw := range *r.Centers {
		if raw.Sessions == nil {
			return nil, &MalformedError{Field: "sessions", Center: raw.Name}
		}
		center := Center{
			CenterID:     raw.CenterID,
			Name:         raw.Name,
			Address:      raw.Address,
			StateName:    raw.StateName,
			DistrictName: raw.DistrictName,
			BlockName:    raw.BlockName,
			Pincode:      raw.Pincode,
			FeeType:      raw.FeeType,
			Sessions:     make([]Session, 0, len(*raw.Sessions)),
		}
		for _, s := range *raw.Sessions {
			if s.AvailableCapacity == nil {
				return nil, &MalformedError{Field: "available_capacity", Center: raw.Name}
			}
			if s.MinAgeLimit == nil {
				return nil, &MalformedError{Field: "min_age_limit", Center: raw.Name}
			}
			center.Sessions = append(center.Sessions, Session{
				SessionID:         s.SessionID,
				Date:              s.Date,
				AvailableCapacity: *s.AvailableCapacity,
				MinAgeLimit:       *s.MinAgeLimit,
				Vaccine:           s.Vaccine,
				Slots:             s.Slots,
			})
		}
		centers = append(centers, center)
	}
	return centers, nil
}
