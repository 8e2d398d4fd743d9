package models

type ApplicationMethod string

const (
	InPerson     ApplicationMethod = "Presencial"
	OfficialLink ApplicationMethod = "Oficial"
)

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// JobEntry is one recommendation exactly as the model returned it. Nothing is validated or sanitized.
type JobEntry struct {
	Date              string            `json:"date,omitempty"`
	CompanyName       string            `json:"companyName"`
	Address           string            `json:"address"`
	ContactInfo       string            `json:"contactInfo,omitempty"`
	ApplicationMethod ApplicationMethod `json:"applicationMethod,omitempty"`
	Urgency           string            `json:"urgency"`
	Requirements      []string          `json:"requirements,omitempty"`
	DailyInsight      string            `json:"dailyInsight,omitempty"`
	JobType           string            `json:"jobType,omitempty"`
	OfficialLink      string            `json:"officialLink,omitempty"`
	Coords            *GeoPoint         `json:"coords,omitempty"`
}

func (j JobEntry) IsInPerson() bool {
	return j.ApplicationMethod == InPerson
}

func (j JobEntry) HasCoords() bool {
	return j.Coords != nil
}
