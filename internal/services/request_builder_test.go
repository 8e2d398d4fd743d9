package services

import (
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

var testProfile = models.ProfileSnapshot{
	Country:  models.Mexico,
	Location: "Ciudad de México",
	Age:      25,
	Sex:      "Otro",
	Language: models.Spanish,
}

func Test_RequestBuilder_ShouldEmbedDateAndWeekday(t *testing.T) {

	builder := NewRequestBuilder("gemini-2.5-flash", nil)
	mexicoCity := time.FixedZone("CST", -6*3600)

	cases := []struct {
		now      time.Time
		language models.Language
		date     string
		day      string
		hour     string
	}{
		{time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC), models.Spanish, "2026-10-16", "Viernes", "Hora: 9:00"},
		{time.Date(2026, 10, 18, 23, 5, 0, 0, time.UTC), models.English, "2026-10-18", "Sunday", "Hora: 23:00"},
		// late evening in Mexico City is already the next day in UTC
		{time.Date(2026, 10, 16, 22, 0, 0, 0, mexicoCity), models.Spanish, "2026-10-16", "Viernes", "Hora: 22:00"},
		{time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), models.Spanish, "2024-02-29", "Jueves", "Hora: 0:00"},
	}

	for _, c := range cases {
		profile := testProfile
		profile.Language = c.language

		request := builder.Build(profile, c.now)

		assert.Contains(t, request.SystemInstruction, "Hoy es "+c.day+", "+c.date+".")
		assert.Contains(t, request.SystemInstruction, c.hour)
		assert.Equal(t, c.day, DayName(c.now, c.language))
	}
}

func Test_RequestBuilder_ShouldDeclareResponseLanguage(t *testing.T) {

	builder := NewRequestBuilder("gemini-2.5-flash", nil)

	for _, language := range []models.Language{models.Spanish, models.English} {
		profile := testProfile
		profile.Language = language

		request := builder.Build(profile, time.Now())

		assert.Contains(t, request.SystemInstruction, "IDIOMA DE RESPUESTA: "+string(language)+".")
		assert.Contains(t, request.SystemInstruction, "estrictamente en "+string(language))
		assert.Contains(t, request.Prompt, "Usuario configurado en idioma: "+string(language))
	}
}

func Test_RequestBuilder_ShouldEmbedBusinessRules(t *testing.T) {

	request := NewRequestBuilder("gemini-2.5-flash", nil).Build(testProfile, time.Now())
	instruction := request.SystemInstruction

	assert.Contains(t, instruction, FreshnessRule)
	assert.Contains(t, instruction, "NO utilices criterios de edad o sexo para discriminar")
	assert.Contains(t, instruction, "NO incluyas texto fuera del JSON")
	for _, field := range []string{`"profileJobs"`, `"nearbyJobs"`, `"investment"`} {
		assert.Contains(t, instruction, field)
	}

	nearIdx := strings.Index(instruction, "Presencial cercano")
	farIdx := strings.Index(instruction, "Presencial lejano")
	onlineIdx := strings.Index(instruction, "En línea")
	assert.True(t, nearIdx < farIdx && farIdx < onlineIdx, "map channel order must be near, far, online")

	assert.Contains(t, request.Prompt, "Ciudad de México, México")
	assert.Contains(t, request.Prompt, "Edad: 25")
}

func Test_RequestBuilder_Config(t *testing.T) {

	builder := NewRequestBuilder("gemini-2.5-flash", nil)

	withoutCoords := builder.Build(testProfile, time.Now())
	assert.Nil(t, withoutCoords.Config.LocationBias)
	assert.Equal(t, []models.Capability{models.CapabilityWebSearch, models.CapabilityMapSearch},
		withoutCoords.Config.Capabilities)
	assert.Less(t, withoutCoords.Config.Temperature, float32(0.2))
	assert.Equal(t, "gemini-2.5-flash", withoutCoords.Model)

	profile := testProfile
	profile.Coordinates = &models.Coordinates{Latitude: 19.4326, Longitude: -99.1332}

	withCoords := builder.Build(profile, time.Now())
	require.NotNil(t, withCoords.Config.LocationBias)
	assert.Equal(t, models.Coordinates{Latitude: 19.4326, Longitude: -99.1332}, *withCoords.Config.LocationBias)
}

func Test_RequestBuilder_BuildNow_ShouldReadClockOnce(t *testing.T) {

	calls := 0
	fixed := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	builder := NewRequestBuilder("m", func() time.Time {
		calls++
		return fixed
	})

	assert.Equal(t, builder.Build(testProfile, fixed), builder.BuildNow(testProfile))
	assert.Equal(t, 1, calls)
}
