package bot

import (
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/maxaizer/solon/internal/session"
)

type action string

const (
	actionOpportunities action = "opportunities"
	actionInvestment    action = "investment"
	actionListView      action = "list"
	actionMapView       action = "map"
	actionBack          action = "back"
	actionNewSearch     action = "new_search"
	actionCancel        action = "cancel"
)

const cancelButton = "Cancelar"

var actionLabels = map[action][2]string{
	actionOpportunities: {"💼 Oportunidades", "💼 Opportunities"},
	actionInvestment:    {"📈 Micro-Inversión", "📈 Micro-Investment"},
	actionListView:      {"📋 Vista lista", "📋 List view"},
	actionMapView:       {"🗺 Vista mapa", "🗺 Map view"},
	actionBack:          {"⬅️ Volver", "⬅️ Back"},
	actionNewSearch:     {"🔄 Nueva búsqueda", "🔄 New search"},
	actionCancel:        {cancelButton, "Cancel"},
}

// labelActions resolves a button text in any language.
var labelActions = func() map[string]action {
	result := make(map[string]action, len(actionLabels)*2)
	for a, labels := range actionLabels {
		result[labels[0]] = a
		result[labels[1]] = a
	}
	return result
}()

func label(a action, language models.Language) string {
	labels := actionLabels[a]
	return language.Pick(labels[0], labels[1])
}

func button(a action, language models.Language) botApi.KeyboardButton {
	return botApi.NewKeyboardButton(label(a, language))
}

func defaultReplyKeyboard() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton("/"+startCommandName),
			botApi.NewKeyboardButton("/"+activateCommandName),
		),
	)
}

func keyboardWithExit() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(cancelButton),
		),
	)
}

func loadingKeyboard(language models.Language) botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(botApi.NewKeyboardButtonRow(button(actionCancel, language)))
}

func optionsKeyboard(options []string) botApi.ReplyKeyboardMarkup {
	row := make([]botApi.KeyboardButton, 0, len(options))
	for _, option := range options {
		row = append(row, botApi.NewKeyboardButton(option))
	}
	return botApi.NewReplyKeyboard(row, botApi.NewKeyboardButtonRow(botApi.NewKeyboardButton(cancelButton)))
}

func selectionKeyboard(result *models.RecommendationResult, language models.Language) botApi.ReplyKeyboardMarkup {
	row := botApi.NewKeyboardButtonRow(button(actionOpportunities, language))
	if result.HasInvestment() {
		row = append(row, button(actionInvestment, language))
	}
	return botApi.NewReplyKeyboard(row, botApi.NewKeyboardButtonRow(button(actionNewSearch, language)))
}

func jobsKeyboard(mode session.JobsMode, language models.Language) botApi.ReplyKeyboardMarkup {
	other := actionMapView
	if mode == session.JobsMap {
		other = actionListView
	}
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(button(other, language), button(actionBack, language)),
		botApi.NewKeyboardButtonRow(button(actionNewSearch, language)),
	)
}

func backKeyboard(language models.Language) botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(button(actionBack, language), button(actionNewSearch, language)),
	)
}
