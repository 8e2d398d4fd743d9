package bot

import (
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/solon/internal/domain/models"
)

const (
	shareLocationButton = "📍 Compartir ubicación"
	skipLocationButton  = "Omitir"
)

// geolocationInput waits for a shared location or an explicit skip.
type geolocationInput struct {
	chatID   int64
	onFinish func(coordinates *models.Coordinates)
}

func newGeolocationInput(chatID int64, onFinish func(coordinates *models.Coordinates)) *geolocationInput {
	return &geolocationInput{chatID: chatID, onFinish: onFinish}
}

func (a *geolocationInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(a.chatID, "Comparte tu ubicación para priorizar vacantes cercanas, o pulsa \""+
		skipLocationButton+"\".")
	msg.ReplyMarkup = geolocationKeyboard()
	return msg
}

func (a *geolocationInput) HandleInput(input string) botApi.Chattable {
	if input != skipLocationButton {
		return botApi.NewMessage(a.chatID, "Usa el botón para compartir tu ubicación o pulsa \""+skipLocationButton+"\".")
	}
	a.onFinish(nil)
	return nil
}

func (a *geolocationInput) HandleLocation(coordinates models.Coordinates) {
	a.onFinish(&coordinates)
}

func geolocationKeyboard() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButtonLocation(shareLocationButton),
		),
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(skipLocationButton),
			botApi.NewKeyboardButton(cancelButton),
		),
	)
}
