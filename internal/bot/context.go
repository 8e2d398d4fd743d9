package bot

import (
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/solon/internal/domain/models"
)

type userContext struct {
	chatID         int64
	curCommand     command
	curCommandName string
}

func newUserContext(chatID int64) *userContext {
	return &userContext{chatID: chatID}
}

func (u *userContext) RunCommand(command command, name string, finalKeyboard botApi.ReplyKeyboardMarkup) {
	u.curCommand = command
	u.curCommandName = name
	u.curCommand.WithFinishCallback(func() {
		if u.curCommand == command {
			u.curCommand = nil
			u.curCommandName = ""
		}
	})
	u.curCommand.WithKeyboardOnFinalMessage(finalKeyboard)
	u.curCommand.Run()
}

func (u *userContext) HasRunningCommand() bool {
	return u.curCommand != nil
}

func (u *userContext) OnUserInput(input string) {
	u.curCommand.OnUserInput(input)
}

// OnUserLocation hands the location to the running command. It reports false when
// nothing was waiting for it.
func (u *userContext) OnUserLocation(coordinates models.Coordinates) bool {
	receiver, ok := u.curCommand.(locationReceiver)
	if !ok {
		return false
	}
	return receiver.OnUserLocation(coordinates)
}

// AbortCommand drops the running command without finishing it.
func (u *userContext) AbortCommand() {
	if u.curCommand == nil {
		return
	}
	if cmd, ok := u.curCommand.(abortable); ok {
		cmd.Abort()
	}
	u.curCommand = nil
	u.curCommandName = ""
}
