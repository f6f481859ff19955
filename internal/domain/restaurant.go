package domain

import "strings"

// Price tiers used by the guide.
const (
	PriceTier1 = "€"
	PriceTier2 = "€€"
	PriceTier3 = "€€€"
	PriceTier4 = "€€€€"
)

// notAvailable is the guide's placeholder for missing values.
const notAvailable = "N/A"

// Restaurant is a catalog entry. Name is its identity.
type Restaurant struct {
	Name                   string  `json:"name"`
	Address                string  `json:"address"`
	Location               string  `json:"location"`
	Price                  string  `json:"price"`
	Cuisine                string  `json:"cuisine"`
	Longitude              float64 `json:"longitude"`
	Latitude               float64 `json:"latitude"`
	PhoneNumber            string  `json:"phone_number"`
	URL                    string  `json:"url"`
	WebsiteURL             string  `json:"website_url"`
	Award                  string  `json:"award"`
	GreenStar              string  `json:"green_star"`
	FacilitiesAndServices  string  `json:"facilities_and_services"`
	Description            string  `json:"description"`
	DeliveryAvailable      bool    `json:"delivery_available"`
	OnlineBookingAvailable bool    `json:"online_booking_available"`

	// Owner stays nil until an owner registers the restaurant.
	Owner *string `json:"owner,omitempty"`
}

// Stars returns the Michelin star count derived from the award text.
func (r Restaurant) Stars() int {
	return StarsFromAward(r.Award)
}

func (r Restaurant) HasMichelinStar() bool {
	return r.Stars() > 0
}

func (r Restaurant) HasGreenStar() bool {
	return IsGreenStar(r.GreenStar)
}

// MatchesPriceRange reports whether the restaurant falls in the given tier.
// An empty or unknown tier matches everything.
func (r Restaurant) MatchesPriceRange(priceRange string) bool {
	if priceRange == "" || r.Price == "" {
		return true
	}
	switch priceRange {
	case PriceTier1, PriceTier2, PriceTier3, PriceTier4:
		return r.Price == priceRange
	default:
		return true
	}
}

// MatchesStarRating reports whether the restaurant has at least minStars stars.
func (r Restaurant) MatchesStarRating(minStars float64) bool {
	return float64(r.Stars()) >= minStars
}

// StarsFromAward parses the free-text award field. The checks run from three
// stars down, so "2 Stars" never reads as one star even though it contains "star".
func StarsFromAward(award string) int {
	trimmed := strings.TrimSpace(award)
	if trimmed == "" || trimmed == notAvailable {
		return 0
	}
	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "3") || strings.Contains(lower, "three"):
		return 3
	case strings.Contains(lower, "2") || strings.Contains(lower, "two"):
		return 2
	case strings.Contains(lower, "1") || strings.Contains(lower, "one") || strings.Contains(lower, "star"):
		return 1
	}
	return 0
}

// IsGreenStar: any non-blank value other than "N/A" counts.
func IsGreenStar(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, notAvailable)
}

// ParseYesNo accepts the catalog's "Sì"/"Si" spelling of yes.
func ParseYesNo(v string) bool {
	v = strings.TrimSpace(v)
	return strings.EqualFold(v, "Sì") || strings.EqualFold(v, "Si")
}

// FormatYesNo is the inverse of ParseYesNo.
func FormatYesNo(b bool) string {
	if b {
		return "Sì"
	}
	return "No"
}

// ServicesFromFacilities derives the delivery and online-booking flags for
// legacy rows that predate the dedicated columns.
func ServicesFromFacilities(facilities string) (delivery, booking bool) {
	lower := strings.ToLower(facilities)
	return strings.Contains(lower, "delivery"), strings.Contains(lower, "online")
}
