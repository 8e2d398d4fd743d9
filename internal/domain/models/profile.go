package models

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"strings"
)

type Country string

const (
	Mexico       Country = "México"
	UnitedStates Country = "Estados Unidos"
)

type Language string

const (
	Spanish Language = "Español"
	English Language = "Inglés"
)

func ToCountry(s string) (Country, error) {
	switch strings.TrimSpace(s) {
	case string(Mexico):
		return Mexico, nil
	case string(UnitedStates):
		return UnitedStates, nil
	default:
		return "", errors.New("invalid country")
	}
}

func ToLanguage(s string) (Language, error) {
	switch strings.TrimSpace(s) {
	case string(Spanish):
		return Spanish, nil
	case string(English):
		return English, nil
	default:
		return "", errors.New("invalid language")
	}
}

// Pick returns es or en depending on the language. Unknown languages fall back to Spanish.
func (l Language) Pick(es, en string) string {
	if l == English {
		return en
	}
	return es
}

type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// ProfileSnapshot is what the user submitted. It is built once per submission and never changed.
type ProfileSnapshot struct {
	Country     Country      `json:"country" validate:"country"`
	Location    string       `json:"location" validate:"required"`
	Age         int          `json:"age" validate:"gte=16,lte=99"`
	Sex         string       `json:"sex"`
	Language    Language     `json:"language" validate:"language"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

var profileValidator = newProfileValidator()

func newProfileValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		_, err := ToCountry(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		_, err := ToLanguage(fl.Field().String())
		return err == nil
	})
	return v
}

func NewProfileSnapshot(country Country, location string, age int, sex string, language Language,
	coordinates *Coordinates) (ProfileSnapshot, error) {

	var coords *Coordinates
	if coordinates != nil {
		c := *coordinates
		coords = &c
	}

	profile := ProfileSnapshot{
		Country:     country,
		Location:    strings.TrimSpace(location),
		Age:         age,
		Sex:         strings.TrimSpace(sex),
		Language:    language,
		Coordinates: coords,
	}

	if err := profile.Validate(); err != nil {
		return ProfileSnapshot{}, err
	}
	return profile, nil
}

func (p ProfileSnapshot) Validate() error {
	if err := profileValidator.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

func (p ProfileSnapshot) HasCoordinates() bool {
	return p.Coordinates != nil
}
