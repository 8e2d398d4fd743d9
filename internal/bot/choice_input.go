package bot

import (
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/solon/internal/domain/models"
)

type countryInput struct {
	chatID   int64
	onFinish func(country models.Country)
}

func newCountryInput(chatID int64, onFinish func(country models.Country)) *countryInput {
	return &countryInput{chatID: chatID, onFinish: onFinish}
}

func (a *countryInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(a.chatID, "¿En qué país buscas empleo?")
	msg.ReplyMarkup = optionsKeyboard([]string{string(models.Mexico), string(models.UnitedStates)})
	return msg
}

func (a *countryInput) HandleInput(input string) botApi.Chattable {
	country, err := models.ToCountry(input)
	if err != nil {
		return botApi.NewMessage(a.chatID, "Elige un país del teclado.")
	}
	a.onFinish(country)
	return nil
}

type languageInput struct {
	chatID   int64
	onFinish func(language models.Language)
}

func newLanguageInput(chatID int64, onFinish func(language models.Language)) *languageInput {
	return &languageInput{chatID: chatID, onFinish: onFinish}
}

func (a *languageInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(a.chatID, "¿En qué idioma quieres los resultados? / Results language?")
	msg.ReplyMarkup = optionsKeyboard([]string{string(models.Spanish), string(models.English)})
	return msg
}

func (a *languageInput) HandleInput(input string) botApi.Chattable {
	language, err := models.ToLanguage(input)
	if err != nil {
		return botApi.NewMessage(a.chatID, "Elige un idioma del teclado.")
	}
	a.onFinish(language)
	return nil
}
