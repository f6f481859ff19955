package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStarsFromAward(t *testing.T) {
	cases := map[string]int{
		"3 Stars":       3,
		"Three Stars":   3,
		"2 Stars":       2,
		"1 Star":        1,
		"One Star":      1,
		"Selected Star": 1,
		"Bib Gourmand":  0,
		"Selected":      0,
		"":              0,
		"   ":           0,
		"N/A":           0,
	}
	for award, want := range cases {
		assert.Equal(t, want, StarsFromAward(award), "award %q", award)
	}
}

func TestIsGreenStar(t *testing.T) {
	assert.True(t, IsGreenStar("1"))
	assert.True(t, IsGreenStar("Green Star"))
	assert.True(t, IsGreenStar("0"), "any non-placeholder value counts")
	assert.False(t, IsGreenStar(""))
	assert.False(t, IsGreenStar("  "))
	assert.False(t, IsGreenStar("N/A"))
	assert.False(t, IsGreenStar("n/a"))
}

func TestRestaurant_Matchers(t *testing.T) {
	r := Restaurant{Name: "Le Bernardin", Price: PriceTier4, Award: "3 Stars"}

	assert.True(t, r.HasMichelinStar())
	assert.True(t, r.MatchesPriceRange(PriceTier4))
	assert.False(t, r.MatchesPriceRange(PriceTier2))
	assert.True(t, r.MatchesPriceRange(""))
	assert.True(t, r.MatchesPriceRange("cheap"), "unknown tier matches everything")

	assert.True(t, r.MatchesStarRating(2))
	assert.True(t, r.MatchesStarRating(3))
	assert.False(t, Restaurant{Award: "1 Star"}.MatchesStarRating(2))
}

func TestYesNo(t *testing.T) {
	assert.True(t, ParseYesNo("Sì"))
	assert.True(t, ParseYesNo("si"))
	assert.False(t, ParseYesNo("No"))
	assert.False(t, ParseYesNo(""))
	assert.True(t, ParseYesNo(FormatYesNo(true)))
	assert.False(t, ParseYesNo(FormatYesNo(false)))
}

func TestServicesFromFacilities(t *testing.T) {
	delivery, booking := ServicesFromFacilities("Air conditioning,Delivery,Online booking")
	assert.True(t, delivery)
	assert.True(t, booking)

	delivery, booking = ServicesFromFacilities("Garden or park")
	assert.False(t, delivery)
	assert.False(t, booking)
}
