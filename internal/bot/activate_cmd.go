package bot

import (
	"errors"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/solon/internal/session"
	log "github.com/sirupsen/logrus"
	"strings"
)

const activateCommandName = "activate"

// activateCommand is the credential selection flow: the user pastes a Gemini api key and
// the session starts using it right away.
type activateCommand struct {
	api                  apiInterface
	chatID               int64
	session              *session.Session
	input                inputHandler
	apiKey               string
	keyInputFinished     bool
	finishCallback       func()
	finalMessageKeyboard *botApi.ReplyKeyboardMarkup
}

func newActivateCommand(api apiInterface, chatID int64, s *session.Session) *activateCommand {

	cmd := &activateCommand{api: api, chatID: chatID, session: s}

	input := newTextInput(chatID, "Pega tu API key de Gemini. Necesita un proyecto con facturación activa "+
		"(https://ai.google.dev/gemini-api/docs/billing).", func(key string) {
		cmd.apiKey = strings.TrimSpace(key)
		cmd.keyInputFinished = true
	})
	input.AddValidation(validation{
		function: func(input string) bool {
			key := strings.TrimSpace(input)
			return key != "" && !strings.ContainsAny(key, " \t\n")
		},
		errorMessage: "La API key no puede contener espacios.",
	})
	cmd.input = input
	return cmd
}

func (c *activateCommand) WithFinishCallback(callback func()) {
	c.finishCallback = callback
}

func (c *activateCommand) WithKeyboardOnFinalMessage(keyboard botApi.ReplyKeyboardMarkup) {
	c.finalMessageKeyboard = &keyboard
}

func (c *activateCommand) Run() {

	err := c.session.BeginActivation()
	if err == nil {
		_, _ = sendWithLogError(c.api, c.input.InitMessage())
		return
	}

	var transitionErr *session.InvalidTransitionError
	text := "No se puede activar una API key ahora."
	if errors.As(err, &transitionErr) && transitionErr.From == session.CredentialActive {
		text = "La API key ya está activa."
	}
	c.finish(text)
}

func (c *activateCommand) OnUserInput(input string) {

	msg := c.input.HandleInput(input)

	if !c.keyInputFinished {
		_, _ = sendWithLogError(c.api, msg)
		return
	}

	if err := c.session.CompleteActivation(c.apiKey); err != nil {
		log.Warnf("chat %v could not complete activation: %v", c.chatID, err)
		c.finish("No se pudo activar la API key, inténtalo de nuevo con /activate.")
		return
	}

	log.Infof("chat %v activated its own api key", c.chatID)
	c.finish("API key activada. Empieza con /start. Puedes borrar el mensaje con la llave.")
}

func (c *activateCommand) Abort() {
	if err := c.session.AbortActivation(); err != nil {
		log.Warnf("chat %v could not abort activation: %v", c.chatID, err)
	}
}

func (c *activateCommand) finish(text string) {

	if c.finishCallback != nil {
		c.finishCallback()
	}

	msg := botApi.NewMessage(c.chatID, text)
	if c.finalMessageKeyboard != nil {
		msg.ReplyMarkup = c.finalMessageKeyboard
	}
	_, _ = sendWithLogError(c.api, msg)
}
