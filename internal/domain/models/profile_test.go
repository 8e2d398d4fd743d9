package models

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_NewProfileSnapshot_WhenValid_ShouldBeSuccessful(t *testing.T) {
	coords := &Coordinates{Latitude: 19.4326, Longitude: -99.1332}

	profile, err := NewProfileSnapshot(Mexico, "  Ciudad de México ", 25, "Otro", Spanish, coords)
	assert.NoError(t, err)
	assert.Equal(t, "Ciudad de México", profile.Location)
	assert.True(t, profile.HasCoordinates())

	coords.Latitude = 0
	assert.Equal(t, 19.4326, profile.Coordinates.Latitude, "snapshot must not share coordinates with caller")
}

func Test_NewProfileSnapshot_WhenInvalid_ShouldFail(t *testing.T) {
	cases := []struct {
		name     string
		country  Country
		location string
		age      int
		language Language
		coords   *Coordinates
	}{
		{"unknown country", "Canadá", "Toronto", 30, Spanish, nil},
		{"empty location", Mexico, "   ", 30, Spanish, nil},
		{"too young", Mexico, "Puebla", 15, Spanish, nil},
		{"too old", Mexico, "Puebla", 100, Spanish, nil},
		{"unknown language", Mexico, "Puebla", 30, "Français", nil},
		{"latitude out of range", Mexico, "Puebla", 30, Spanish, &Coordinates{Latitude: 91}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewProfileSnapshot(c.country, c.location, c.age, "Otro", c.language, c.coords)
			assert.Error(t, err)
		})
	}
}

func Test_Language_Pick(t *testing.T) {
	assert.Equal(t, "hola", Spanish.Pick("hola", "hello"))
	assert.Equal(t, "hello", English.Pick("hola", "hello"))
	assert.Equal(t, "hola", Language("").Pick("hola", "hello"))
}
