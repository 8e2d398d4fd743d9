package bot

import (
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/solon/internal/domain/models"
	log "github.com/sirupsen/logrus"
	"strconv"
	"strings"
)

const (
	startCommandName   = "start"
	profileCommandName = "profile"
)

// submitFunc hands the finished profile over and returns the message for the user.
type submitFunc func(profile models.ProfileSnapshot) botApi.Chattable

type profileCommand struct {
	api                  apiInterface
	chatID               int64
	submit               submitFunc
	inputHandlers        []inputHandler
	curHandlerIndex      int
	country              models.Country
	location             string
	age                  int
	sex                  string
	language             models.Language
	coordinates          *models.Coordinates
	finishCallback       func()
	finalMessageKeyboard *botApi.ReplyKeyboardMarkup
}

func newProfileCommand(api apiInterface, chatID int64, submit submitFunc) *profileCommand {

	cmd := &profileCommand{api: api, chatID: chatID, submit: submit}

	country := newCountryInput(chatID, func(country models.Country) {
		cmd.country = country
		cmd.curHandlerIndex++
	})

	location := newLocationTextInput(chatID, func(location string) {
		cmd.location = strings.TrimSpace(location)
		cmd.curHandlerIndex++
	})

	age := newAgeInput(chatID, func(input string) {
		cmd.age, _ = strconv.Atoi(strings.TrimSpace(input))
		cmd.curHandlerIndex++
	})

	sex := newSexInput(chatID, func(sex string) { cmd.sex = sex; cmd.curHandlerIndex++ })

	language := newLanguageInput(chatID, func(language models.Language) {
		cmd.language = language
		cmd.curHandlerIndex++
	})

	geolocation := newGeolocationInput(chatID, func(coordinates *models.Coordinates) {
		cmd.coordinates = coordinates
		cmd.curHandlerIndex++
	})

	cmd.inputHandlers = []inputHandler{country, location, age, sex, language, geolocation}
	return cmd
}

func (c *profileCommand) WithFinishCallback(callback func()) {
	c.finishCallback = callback
}

func (c *profileCommand) WithKeyboardOnFinalMessage(keyboard botApi.ReplyKeyboardMarkup) {
	c.finalMessageKeyboard = &keyboard
}

func (c *profileCommand) Run() {
	_, _ = sendWithLogError(c.api, c.inputHandlers[0].InitMessage())
}

func (c *profileCommand) OnUserInput(input string) {
	c.advance(func() botApi.Chattable {
		return c.inputHandlers[c.curHandlerIndex].HandleInput(input)
	})
}

// OnUserLocation is accepted only on the geolocation step.
func (c *profileCommand) OnUserLocation(coordinates models.Coordinates) bool {

	if c.curHandlerIndex >= len(c.inputHandlers) {
		return false
	}
	geolocation, ok := c.inputHandlers[c.curHandlerIndex].(*geolocationInput)
	if !ok {
		return false
	}

	c.advance(func() botApi.Chattable {
		geolocation.HandleLocation(coordinates)
		return nil
	})
	return true
}

func (c *profileCommand) advance(handle func() botApi.Chattable) {

	previousIndex := c.curHandlerIndex
	msg := handle()

	handlerChanged := previousIndex != c.curHandlerIndex
	allHandlersFinished := c.curHandlerIndex >= len(c.inputHandlers)

	if !handlerChanged {
		if msg != nil {
			_, _ = sendWithLogError(c.api, msg)
		}
		return
	}

	if !allHandlersFinished {
		_, _ = sendWithLogError(c.api, c.inputHandlers[c.curHandlerIndex].InitMessage())
		return
	}

	if c.finishCallback != nil {
		c.finishCallback()
	}
	c.submitProfile()
}

func (c *profileCommand) submitProfile() {

	profile, err := models.NewProfileSnapshot(c.country, c.location, c.age, c.sex, c.language, c.coordinates)
	if err != nil {
		log.Warnf("chat %v submitted an invalid profile: %v", c.chatID, err)
		msg := botApi.NewMessage(c.chatID, "El perfil no es válido, empieza de nuevo con /start.")
		if c.finalMessageKeyboard != nil {
			msg.ReplyMarkup = c.finalMessageKeyboard
		}
		_, _ = sendWithLogError(c.api, msg)
		return
	}

	if msg := c.submit(profile); msg != nil {
		_, _ = sendWithLogError(c.api, msg)
	}
}

func newLocationTextInput(chatID int64, onFinish func(input string)) *textInput {
	input := newTextInput(chatID, "¿En qué ciudad o zona buscas? Por ejemplo, \"Ciudad de México\" o "+
		"\"Monterrey, Nuevo León\".", onFinish)
	input.AddValidation(validation{
		function:     func(input string) bool { return strings.TrimSpace(input) != "" },
		errorMessage: "Escribe una ubicación.",
	})
	return input
}

func newAgeInput(chatID int64, onFinish func(input string)) *textInput {
	input := newTextInput(chatID, "¿Cuántos años tienes? (de 16 a 99)", onFinish)
	input.AddValidation(validation{
		function: func(input string) bool {
			age, err := strconv.Atoi(strings.TrimSpace(input))
			return err == nil && age >= 16 && age <= 99
		},
		errorMessage: "Introduce un número de 16 a 99.",
	})
	return input
}

func newSexInput(chatID int64, onFinish func(input string)) *textInput {
	input := newTextInput(chatID, "¿Sexo?", onFinish).WithSuggestions("Masculino", "Femenino", "Otro")
	input.AddValidation(validation{
		function:     func(input string) bool { return strings.TrimSpace(input) != "" },
		errorMessage: "Elige una opción o escríbela.",
	})
	return input
}
