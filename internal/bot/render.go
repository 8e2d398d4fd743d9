package bot

import (
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/maxaizer/solon/internal/session"
	"github.com/samber/lo"
	"html"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	directionsBaseURL = "https://www.google.com/maps/search/"
	defaultJobType    = "Vacante General"
	// maxMessageLength is the telegram limit for a single text message.
	maxMessageLength = 4096
	// projectionMultiplier turns a capital tier into its 180 day projection.
	projectionMultiplier = 32
)

var capitalTiers = []float64{10, 20, 50, 100}

// defaultOrigin is the geographic centre of Mexico, used when the profile has no coordinates.
var defaultOrigin = models.Coordinates{Latitude: 23.6345, Longitude: -102.5528}

// displayHint carries what presentation needs besides the result.
type displayHint struct {
	language  models.Language
	favorable bool
}

func renderSelection(chatID int64, result *models.RecommendationResult, hint displayHint) botApi.MessageConfig {

	lines := []string{
		"✅ " + result.Status,
		hint.language.Pick(
			fmt.Sprintf("Vacantes para tu perfil: %d. Vacantes en el mapa: %d.", len(result.ProfileJobs), len(result.NearbyJobs)),
			fmt.Sprintf("Jobs for your profile: %d. Jobs on the map: %d.", len(result.ProfileJobs), len(result.NearbyJobs))),
	}
	if result.HasInvestment() {
		lines = append(lines, hint.language.Pick("También hay una estrategia de micro-inversión.",
			"A micro-investment strategy is also available."))
	}
	lines = append(lines, hint.language.Pick("Elige una vista.", "Choose a view."))

	msg := botApi.NewMessage(chatID, strings.Join(lines, "\n"))
	msg.ReplyMarkup = selectionKeyboard(result, hint.language)
	msg.DisableWebPagePreview = true
	return msg
}

// renderJobsList renders the profile channel, one message per entry.
func renderJobsList(chatID int64, jobs []models.JobEntry, hint displayHint) []botApi.Chattable {

	header := hint.language.Pick("💼 Vacantes para tu perfil", "💼 Jobs for your profile")
	if hint.favorable {
		header += "\n" + hint.language.Pick("⏰ Buen momento para postular: los reclutadores están activos.",
			"⏰ Good time to apply: recruiters are active.")
	}
	if len(jobs) == 0 {
		header += "\n" + hint.language.Pick("No se encontraron vacantes recientes.", "No recent jobs were found.")
	}

	headerMsg := botApi.NewMessage(chatID, header)
	headerMsg.ReplyMarkup = jobsKeyboard(session.JobsProfile, hint.language)

	messages := []botApi.Chattable{headerMsg}
	for i, job := range jobs {
		msg := botApi.NewMessage(chatID, formatJob(i+1, job, hint))
		msg.DisableWebPagePreview = true
		messages = append(messages, msg)
	}
	return messages
}

func formatJob(number int, job models.JobEntry, hint displayHint) string {

	lang := hint.language
	var b strings.Builder

	title := fmt.Sprintf("%d. %s", number, job.CompanyName)
	if hint.favorable && job.IsInPerson() {
		title = "⭐ " + title
	}
	b.WriteString(title + "\n")

	writeField(&b, lang.Pick("Urgencia", "Urgency"), job.Urgency)
	writeField(&b, lang.Pick("Postulación", "Application"), applicationMethodLabel(job.ApplicationMethod, lang))
	writeField(&b, lang.Pick("Publicada", "Published"), job.Date)
	writeField(&b, lang.Pick("Dirección", "Address"), job.Address)
	writeField(&b, lang.Pick("Contacto", "Contact"), job.ContactInfo)

	requirements := lo.Filter(job.Requirements, func(r string, _ int) bool { return strings.TrimSpace(r) != "" })
	if len(requirements) > 0 {
		b.WriteString(lang.Pick("Requisitos:", "Requirements:") + "\n")
		for _, requirement := range requirements {
			b.WriteString("  • " + requirement + "\n")
		}
	}

	if job.DailyInsight != "" {
		b.WriteString("💡 " + job.DailyInsight + "\n")
	}
	if job.IsInPerson() {
		b.WriteString(lang.Pick("🧭 Trazar ruta física: ", "🧭 Plot physical route: ") + directionsURL(job) + "\n")
	} else if job.OfficialLink != "" {
		b.WriteString("🔗 " + job.OfficialLink + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(name + ": " + value + "\n")
}

func applicationMethodLabel(method models.ApplicationMethod, lang models.Language) string {
	switch method {
	case models.InPerson:
		return lang.Pick("Presencial", "In person")
	case models.OfficialLink:
		return lang.Pick("Sitio oficial", "Official site")
	default:
		return string(method)
	}
}

// renderJobsMap renders the map channel: the origin marker first, then one venue and one
// caption per entry with coordinates. Entries without coordinates are left out.
func renderJobsMap(chatID int64, profile *models.ProfileSnapshot, jobs []models.JobEntry, hint displayHint) []botApi.Chattable {

	origin := mapOrigin(profile)
	located := lo.Filter(jobs, func(job models.JobEntry, _ int) bool { return job.HasCoords() })

	header := hint.language.Pick(
		fmt.Sprintf("🗺 Vacantes cercanas en el mapa: %d", len(located)),
		fmt.Sprintf("🗺 Nearby jobs on the map: %d", len(located)))

	headerMsg := botApi.NewMessage(chatID, header)
	headerMsg.ReplyMarkup = jobsKeyboard(session.JobsMap, hint.language)

	messages := []botApi.Chattable{
		headerMsg,
		botApi.NewLocation(chatID, origin.Latitude, origin.Longitude),
	}

	for _, job := range located {
		messages = append(messages, botApi.NewVenue(chatID, job.CompanyName, job.Address, job.Coords.Lat, job.Coords.Lng))
		caption := botApi.NewMessage(chatID, formatVenueCaption(job, hint.language))
		caption.DisableWebPagePreview = true
		messages = append(messages, caption)
	}
	return messages
}

func mapOrigin(profile *models.ProfileSnapshot) models.Coordinates {
	if profile != nil && profile.HasCoordinates() {
		return *profile.Coordinates
	}
	return defaultOrigin
}

func formatVenueCaption(job models.JobEntry, lang models.Language) string {

	jobType := job.JobType
	if jobType == "" {
		jobType = defaultJobType
	}

	var b strings.Builder
	b.WriteString(job.CompanyName + "\n")
	writeField(&b, lang.Pick("Urgencia", "Urgency"), job.Urgency)
	writeField(&b, lang.Pick("Tipo", "Type"), jobType)
	if job.DailyInsight != "" {
		b.WriteString("💡 " + job.DailyInsight + "\n")
	}
	b.WriteString(lang.Pick("Cómo llegar: ", "Directions: ") + directionsURL(job))
	return b.String()
}

// directionsURL builds a maps search for company and address. Spaces are encoded as %20.
func directionsURL(job models.JobEntry) string {
	query := url.QueryEscape(job.CompanyName + " " + job.Address)
	return directionsBaseURL + strings.ReplaceAll(query, "+", "%20")
}

func renderInvestment(chatID int64, strategy *models.InvestmentStrategy, language models.Language) botApi.MessageConfig {

	var b strings.Builder
	b.WriteString(language.Pick("📈 Estrategia de micro-inversión", "📈 Micro-investment strategy") + "\n")
	b.WriteString(language.Pick("Capital inicial: ", "Initial capital: ") + formatCapital(strategy.InitialCapital) + "\n")
	if strategy.Methodology != "" {
		b.WriteString(language.Pick("Metodología: ", "Methodology: ") + strategy.Methodology + "\n")
	}

	for _, sector := range strategy.Sectors {
		b.WriteString("\n")
		if sector.Icon != "" {
			b.WriteString(sector.Icon + " ")
		}
		b.WriteString(sector.Sector + "\n")
		for _, tip := range sector.Tips {
			b.WriteString("  • " + tip.Title)
			if tip.Advice != "" {
				b.WriteString(": " + tip.Advice)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n" + language.Pick("Proyección a 180 días:", "180 day projection:") + "\n")
	for _, tier := range capitalTiers {
		b.WriteString(fmt.Sprintf("  %s → %s\n", formatCapital(tier), formatCapital(tier*projectionMultiplier)))
	}

	b.WriteString("\n" + language.Pick(
		"ℹ️ Estas estrategias son de carácter educativo y no constituyen asesoría financiera.",
		"ℹ️ These strategies are educational and do not constitute financial advice."))

	msg := botApi.NewMessage(chatID, b.String())
	msg.ReplyMarkup = backKeyboard(language)
	return msg
}

func formatCapital(capital float64) string {
	if capital == float64(int64(capital)) {
		return fmt.Sprintf("$%d", int64(capital))
	}
	return fmt.Sprintf("$%.2f", capital)
}

// renderSources lists the verification links as numbered anchors, split into as many messages
// as needed to stay under the telegram length limit. Nothing is returned without sources.
func renderSources(chatID int64, sources []string, language models.Language) []botApi.Chattable {

	if len(sources) == 0 {
		return nil
	}

	label := language.Pick("Enlace de verificación", "Verification link")
	var messages []botApi.Chattable
	var b strings.Builder
	b.WriteString(language.Pick("🔎 Fuentes de verificación:", "🔎 Verification sources:"))

	flush := func() {
		msg := botApi.NewMessage(chatID, b.String())
		msg.ParseMode = botApi.ModeHTML
		msg.DisableWebPagePreview = true
		messages = append(messages, msg)
		b.Reset()
	}

	for i, source := range sources {
		line := fmt.Sprintf(`<a href="%s">%d. %s</a>`, html.EscapeString(source), i+1, label)
		if b.Len() > 0 && utf8.RuneCountInString(b.String())+1+utf8.RuneCountInString(line) > maxMessageLength {
			flush()
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	flush()

	return messages
}

// isFavorableHour reports whether the hour is inside the inclusive window.
func isFavorableHour(hour, from, to int) bool {
	return hour >= from && hour <= to
}
