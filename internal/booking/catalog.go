package booking

import "fmt"

// Default venue values.
const (
	DefaultRatePerHour     int64 = 50000
	DefaultExtraPerPerson  int64 = 25000
	DefaultIncludedPlayers       = 2
	DefaultPhoneRegion           = "ID"

	firstSlotHour = 10
	lastSlotHour  = 20
	laneCount     = 8
)

// Catalog is the venue's fixed configuration: which lanes exist, which
// start times may be booked and how bookings are priced.
type Catalog struct {
	Lanes       []string
	Slots       []string
	Pricing     Pricing
	PhoneRegion string
}

// DefaultCatalog returns eight lanes ("Lane 1".."Lane 8"), hourly slots
// from 10:00 through 20:00 and the default price list.
func DefaultCatalog() Catalog {
	lanes := make([]string, 0, laneCount)
	for i := 1; i <= laneCount; i++ {
		lanes = append(lanes, fmt.Sprintf("Lane %d", i))
	}
	slots := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for h := firstSlotHour; h <= lastSlotHour; h++ {
		slots = append(slots, FormatClock(h*60))
	}
	return Catalog{
		Lanes:       lanes,
		Slots:       slots,
		Pricing:     DefaultPricing(),
		PhoneRegion: DefaultPhoneRegion,
	}
}

func (c Catalog) HasLane(lane string) bool { return contains(c.Lanes, lane) }

func (c Catalog) HasSlot(slot string) bool { return contains(c.Slots, slot) }

// Meta is the public description of the catalog used to populate booking forms.
type Meta struct {
	Lanes           []string `json:"lanes"`
	Slots           []string `json:"slots"`
	RatePerHour     int64    `json:"rate_per_hour"`
	ExtraPerPerson  int64    `json:"extra_per_person"`
	IncludedPlayers int      `json:"included_players"`
}

// Meta copies the lane and slot lists so callers cannot mutate the catalog.
func (c Catalog) Meta() Meta {
	return Meta{
		Lanes:           append([]string(nil), c.Lanes...),
		Slots:           append([]string(nil), c.Slots...),
		RatePerHour:     c.Pricing.RatePerHour,
		ExtraPerPerson:  c.Pricing.ExtraPerPerson,
		IncludedPlayers: c.Pricing.IncludedPlayers,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
