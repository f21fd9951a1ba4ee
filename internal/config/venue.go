package config

import (
    "bytes"
    "errors"
    "fmt"
    "io"
    "os"

    "gopkg.in/yaml.v3"

    "github.com/iliyamo/bowling-lane-reservation/internal/booking"
)

// venueFile is the YAML layout of VENUE_CONFIG.  Keys left out keep the
// built-in defaults.
type venueFile struct {
    Lanes       []string        `yaml:"lanes"`
    Slots       []string        `yaml:"slots"`
    Pricing     booking.Pricing `yaml:"pricing"`
    PhoneRegion string          `yaml:"phone_region"`
}

// LoadVenue returns the venue catalogue.  An empty path yields
// booking.DefaultCatalog().
func LoadVenue(path string) (booking.Catalog, error) {
    if path == "" {
        return booking.DefaultCatalog(), nil
    }
    data, err := os.ReadFile(path)
    if err != nil {
        return booking.Catalog{}, fmt.Errorf("read venue config: %w", err)
    }
    return ParseVenue(data)
}

// ParseVenue decodes a YAML venue catalogue on top of the defaults and
// validates the result.  Unknown keys are rejected.
func ParseVenue(data []byte) (booking.Catalog, error) {
    def := booking.DefaultCatalog()
    vf := venueFile{Lanes: def.Lanes, Slots: def.Slots, Pricing: def.Pricing, PhoneRegion: def.PhoneRegion}

    dec := yaml.NewDecoder(bytes.NewReader(data))
    dec.KnownFields(true)
    if err := dec.Decode(&vf); err != nil && !errors.Is(err, io.EOF) {
        return booking.Catalog{}, fmt.Errorf("parse venue config: %w", err)
    }

    if len(vf.Lanes) == 0 {
        return booking.Catalog{}, errors.New("venue config: at least one lane is required")
    }
    if len(vf.Slots) == 0 {
        return booking.Catalog{}, errors.New("venue config: at least one slot is required")
    }
    for _, s := range vf.Slots {
        if _, err := booking.ParseClock(s); err != nil {
            return booking.Catalog{}, fmt.Errorf("venue config: slot %w", err)
        }
    }
    p := vf.Pricing
    if p.RatePerHour < 0 || p.ExtraPerPerson < 0 || p.IncludedPlayers < 0 {
        return booking.Catalog{}, errors.New("venue config: prices must not be negative")
    }
    return booking.Catalog{
        Lanes:       vf.Lanes,
        Slots:       vf.Slots,
        Pricing:     p,
        PhoneRegion: vf.PhoneRegion,
    }, nil
}
