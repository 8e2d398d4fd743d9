package services

import (
	_ "embed"
	"github.com/maxaizer/solon/internal/domain/models"
	"strings"
	"text/template"
	"time"
)

// FreshnessRule is embedded verbatim into every system instruction.
const FreshnessRule = "NO muestres ninguna información cuya fecha de publicación supere los 7 días de antigüedad respecto a hoy"

const defaultTemperature float32 = 0.1

//go:embed prompts/system_instruction.tmpl
var systemInstructionRaw string

//go:embed prompts/user_prompt.tmpl
var userPromptRaw string

var (
	systemInstructionTemplate = template.Must(template.New("system_instruction").Parse(systemInstructionRaw))
	userPromptTemplate        = template.Must(template.New("user_prompt").Parse(userPromptRaw))
)

var dayNames = map[models.Language][7]string{
	models.Spanish: {"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"},
	models.English: {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
}

type instructionData struct {
	DayName       string
	Date          string
	Hour          int
	Language      models.Language
	FreshnessRule string
}

type RequestBuilder struct {
	model string
	now   func() time.Time
}

func NewRequestBuilder(model string, now func() time.Time) *RequestBuilder {
	if now == nil {
		now = time.Now
	}
	return &RequestBuilder{model: model, now: now}
}

// BuildNow reads the clock once and builds the request for that instant.
func (b *RequestBuilder) BuildNow(profile models.ProfileSnapshot) models.RecommendationRequest {
	return b.Build(profile, b.now())
}

// Build is pure: the same profile and timestamp always give the same request.
// Day name, date and hour are all taken in the timestamp's own location.
func (b *RequestBuilder) Build(profile models.ProfileSnapshot, now time.Time) models.RecommendationRequest {

	data := instructionData{
		DayName:       DayName(now, profile.Language),
		Date:          now.Format(time.DateOnly),
		Hour:          now.Hour(),
		Language:      profile.Language,
		FreshnessRule: FreshnessRule,
	}

	request := models.RecommendationRequest{
		Model:             b.model,
		SystemInstruction: render(systemInstructionTemplate, data),
		Prompt:            render(userPromptTemplate, profile),
		Config: models.RequestConfig{
			Capabilities: []models.Capability{models.CapabilityWebSearch, models.CapabilityMapSearch},
			Temperature:  defaultTemperature,
		},
	}

	if profile.Coordinates != nil {
		bias := *profile.Coordinates
		request.Config.LocationBias = &bias
	}

	return request
}

func DayName(t time.Time, language models.Language) string {
	names, ok := dayNames[language]
	if !ok {
		names = dayNames[models.Spanish]
	}
	return names[t.Weekday()]
}

func render(tmpl *template.Template, data any) string {
	var sb strings.Builder
	// templates are parsed at init and only reference fields that exist
	if err := tmpl.Execute(&sb, data); err != nil {
		panic(err)
	}
	return strings.TrimSpace(sb.String())
}
