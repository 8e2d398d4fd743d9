package bot

import (
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"unicode/utf8"
)

func Test_DirectionsURL_ShouldEncodeCompanyAndAddress(t *testing.T) {
	job := models.JobEntry{CompanyName: "Café & Co", Address: "Av. Reforma 222, CDMX"}
	assert.Equal(t, "https://www.google.com/maps/search/Caf%C3%A9%20%26%20Co%20Av.%20Reforma%20222%2C%20CDMX",
		directionsURL(job))
}

func Test_IsFavorableHour_ShouldIncludeBounds(t *testing.T) {
	assert.False(t, isFavorableHour(8, 9, 18))
	assert.True(t, isFavorableHour(9, 9, 18))
	assert.True(t, isFavorableHour(18, 9, 18))
	assert.False(t, isFavorableHour(19, 9, 18))
}

func Test_RenderJobsMap_WhenProfileHasCoordinates_ShouldCenterOnThem(t *testing.T) {

	profile := &models.ProfileSnapshot{Language: models.English,
		Coordinates: &models.Coordinates{Latitude: 19.4326, Longitude: -99.1332}}

	messages := renderJobsMap(1, profile, nil, displayHint{language: models.English})

	require.Len(t, messages, 2)
	assert.Equal(t, "🗺 Nearby jobs on the map: 0", messages[0].(botApi.MessageConfig).Text)
	origin := messages[1].(botApi.LocationConfig)
	assert.Equal(t, 19.4326, origin.Latitude)
	assert.Equal(t, -99.1332, origin.Longitude)
}

func Test_FormatVenueCaption_ShouldKeepGivenJobType(t *testing.T) {
	caption := formatVenueCaption(models.JobEntry{CompanyName: "Bimbo", JobType: "Almacén"}, models.Spanish)
	assert.Contains(t, caption, "Tipo: Almacén")
	assert.NotContains(t, caption, defaultJobType)
}

func Test_RenderJobsList_WhenNotFavorable_ShouldNotEmphasize(t *testing.T) {

	jobs := []models.JobEntry{{CompanyName: "Oxxo", ApplicationMethod: models.InPerson,
		OfficialLink: "https://oxxo.example/empleo", Requirements: []string{"", "Primaria"}}}

	messages := renderJobsList(1, jobs, displayHint{language: models.Spanish})

	require.Len(t, messages, 2)
	assert.NotContains(t, messages[0].(botApi.MessageConfig).Text, "Buen momento")
	assert.Equal(t, "1. Oxxo\nPostulación: Presencial\nRequisitos:\n  • Primaria\n"+
		"🧭 Trazar ruta física: https://www.google.com/maps/search/Oxxo%20",
		messages[1].(botApi.MessageConfig).Text)
}

func Test_FormatJob_WhenOnline_ShouldShowOfficialLinkOnly(t *testing.T) {

	job := models.JobEntry{CompanyName: "Bimbo", Address: "Calle 5", ApplicationMethod: models.OfficialLink,
		OfficialLink: "https://bimbo.example/empleo"}

	text := formatJob(1, job, displayHint{language: models.English})

	assert.Contains(t, text, "🔗 https://bimbo.example/empleo")
	assert.NotContains(t, text, directionsBaseURL)
}

func Test_RenderJobsList_WhenEmpty_ShouldSayNothingFound(t *testing.T) {
	messages := renderJobsList(1, nil, displayHint{language: models.English})
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].(botApi.MessageConfig).Text, "No recent jobs were found.")
}

func Test_RenderSelection_ShouldOfferInvestmentOnlyWhenPresent(t *testing.T) {

	withoutInvestment := renderSelection(1, &models.RecommendationResult{Status: "Synchrony established."},
		displayHint{language: models.English})
	keyboard := withoutInvestment.ReplyMarkup.(botApi.ReplyKeyboardMarkup)
	assert.Len(t, keyboard.Keyboard[0], 1)

	withInvestment := renderSelection(1, &models.RecommendationResult{Investment: &models.InvestmentStrategy{}},
		displayHint{language: models.English})
	keyboard = withInvestment.ReplyMarkup.(botApi.ReplyKeyboardMarkup)
	require.Len(t, keyboard.Keyboard[0], 2)
	assert.Equal(t, "📈 Micro-Investment", keyboard.Keyboard[0][1].Text)
}

func Test_RenderSources_WhenEmpty_ShouldReturnNothing(t *testing.T) {
	assert.Empty(t, renderSources(1, nil, models.Spanish))
	assert.Len(t, renderSources(1, []string{"https://a.example"}, models.Spanish), 1)
}

func Test_RenderSources_WhenLinksAreLong_ShouldSplitUnderTelegramLimit(t *testing.T) {

	var sources []string
	for i := 0; i < 20; i++ {
		sources = append(sources, fmt.Sprintf("https://vertexaisearch.cloud.google.com/grounding-api-redirect/%d/%s", i,
			strings.Repeat("AbC&d", 36)))
	}

	messages := renderSources(1, sources, models.English)

	require.Greater(t, len(messages), 1)
	var joined strings.Builder
	for _, message := range messages {
		msg := message.(botApi.MessageConfig)
		assert.LessOrEqual(t, utf8.RuneCountInString(msg.Text), maxMessageLength)
		assert.Equal(t, botApi.ModeHTML, msg.ParseMode)
		joined.WriteString(msg.Text + "\n")
	}
	assert.Contains(t, joined.String(), "1. Verification link</a>")
	assert.Contains(t, joined.String(), "20. Verification link</a>")
	assert.Contains(t, joined.String(), `href="https://vertexaisearch.cloud.google.com/grounding-api-redirect/19/AbC&amp;d`)
}

func Test_RenderInvestment_ShouldProjectTiersAndEndWithDisclaimer(t *testing.T) {

	msg := renderInvestment(1, &models.InvestmentStrategy{InitialCapital: 20}, models.Spanish)

	assert.Contains(t, msg.Text, "$10 → $320")
	assert.Contains(t, msg.Text, "$100 → $3200")
	assert.True(t, strings.HasSuffix(msg.Text, "no constituyen asesoría financiera."))
}

func Test_FormatCapital(t *testing.T) {
	assert.Equal(t, "$500", formatCapital(500))
	assert.Equal(t, "$99.50", formatCapital(99.5))
}
