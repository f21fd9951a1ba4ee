package booking

// Pricing is a flat hourly lane rate plus a surcharge for every player
// beyond IncludedPlayers.
type Pricing struct {
	RatePerHour     int64 `yaml:"rate_per_hour"`
	ExtraPerPerson  int64 `yaml:"extra_per_person"`
	IncludedPlayers int   `yaml:"included_players"`
}

func DefaultPricing() Pricing {
	return Pricing{
		RatePerHour:     DefaultRatePerHour,
		ExtraPerPerson:  DefaultExtraPerPerson,
		IncludedPlayers: DefaultIncludedPlayers,
	}
}

// ComputeCost returns the total price of a booking.  Inputs are assumed to
// be validated already.
func (p Pricing) ComputeCost(durationHours, players int) int64 {
	extra := players - p.IncludedPlayers
	if extra < 0 {
		extra = 0
	}
	return p.RatePerHour*int64(durationHours) + p.ExtraPerPerson*int64(extra)
}

// ComputeCost prices a booking with the default price list.
func ComputeCost(durationHours, players int) int64 {
	return DefaultPricing().ComputeCost(durationHours, players)
}
