package bot

import (
	"context"
	"errors"
	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/solon/internal/domain/events"
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/maxaizer/solon/internal/session"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

const (
	cancelCommandName = "cancel"
	resetCommandName  = "reset"
)

type dispatcher interface {
	Dispatch(ctx context.Context, s *session.Session, profile models.ProfileSnapshot) error
}

type Options struct {
	FavorableFromHour int
	FavorableToHour   int
	Location          *time.Location
	Now               func() time.Time
}

func (o *Options) setDefaults() {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.FavorableFromHour == 0 && o.FavorableToHour == 0 {
		o.FavorableFromHour, o.FavorableToHour = 9, 18
	}
}

type Bot struct {
	api          apiInterface
	tgApi        *botApi.BotAPI
	ctx          context.Context
	mu           sync.Mutex
	userContexts map[int64]*userContext
	bus          EventBus.Bus
	sessions     *session.Manager
	dispatcher   dispatcher
	options      Options
}

func NewBot(token string, bus EventBus.Bus, sessions *session.Manager, dispatcher dispatcher,
	options Options) (*Bot, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", api.Self.UserName)

	err = botApi.SetLogger(log.StandardLogger())
	if err != nil {
		return nil, err
	}

	createdBot, err := newBot(api, bus, sessions, dispatcher, options)
	if err != nil {
		return nil, err
	}
	createdBot.tgApi = api
	return createdBot, nil
}

func newBot(api apiInterface, bus EventBus.Bus, sessions *session.Manager, dispatcher dispatcher,
	options Options) (*Bot, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if sessions == nil {
		return nil, errors.New("session manager is nil")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is nil")
	}

	options.setDefaults()
	createdBot := &Bot{
		api:          api,
		ctx:          context.Background(),
		userContexts: make(map[int64]*userContext),
		bus:          bus,
		sessions:     sessions,
		dispatcher:   dispatcher,
		options:      options,
	}

	subscriptions := map[string]interface{}{
		events.RecommendationReadyTopic:  createdBot.onRecommendationReady,
		events.RecommendationFailedTopic: createdBot.onRecommendationFailed,
		events.CredentialChangedTopic:    createdBot.onCredentialChanged,
	}
	for topic, handler := range subscriptions {
		if err := bus.Subscribe(topic, handler); err != nil {
			return nil, err
		}
	}
	return createdBot, nil
}

// Run receives updates until the context is done. Requests started from chats are bound to ctx.
func (b *Bot) Run(ctx context.Context) {

	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.tgApi.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.tgApi.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			if !update.Message.Chat.IsPrivate() {
				continue
			}
			go b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) handleMessage(message *botApi.Message) {

	b.mu.Lock()
	defer b.mu.Unlock()

	chatID := message.Chat.ID

	if message.Location != nil {
		b.handleLocation(chatID, models.Coordinates{
			Latitude:  message.Location.Latitude,
			Longitude: message.Location.Longitude,
		})
		return
	}

	if cmd := message.Command(); cmd != "" {
		b.handleCommand(chatID, cmd)
		return
	}

	if a, ok := labelActions[message.Text]; ok {
		b.handleAction(chatID, a)
		return
	}

	b.handleInput(chatID, message.Text)
}

func (b *Bot) userContext(chatID int64) *userContext {
	if b.userContexts[chatID] == nil {
		b.userContexts[chatID] = newUserContext(chatID)
	}
	return b.userContexts[chatID]
}

func (b *Bot) handleCommand(chatID int64, command string) {

	switch command {
	case startCommandName:
		b.startProfile(chatID)
	case activateCommandName:
		ctx := b.userContext(chatID)
		ctx.AbortCommand()
		ctx.RunCommand(newActivateCommand(b.api, chatID, b.sessions.Get(chatID)), activateCommandName,
			defaultReplyKeyboard())
	case cancelCommandName:
		b.handleAction(chatID, actionCancel)
	case resetCommandName:
		b.userContext(chatID).AbortCommand()
		b.sessions.Get(chatID).Reset()
		b.send(chatID, "Sesión reiniciada. Usa /start para buscar de nuevo.", defaultReplyKeyboard())
	default:
		b.send(chatID, "Comando desconocido.", defaultReplyKeyboard())
	}
}

func (b *Bot) startProfile(chatID int64) {

	ctx := b.userContext(chatID)
	ctx.AbortCommand()
	s := b.sessions.Get(chatID)

	if s.View() == session.ViewLoading {
		b.send(chatID, "Ya hay una búsqueda en curso, pulsa \""+cancelButton+"\" para detenerla.",
			loadingKeyboard(models.Spanish))
		return
	}
	if s.Credential() != session.CredentialActive {
		b.send(chatID, "Sólon busca vacantes recientes para tu perfil. Para empezar activa una API key "+
			"de Gemini con /activate.", defaultReplyKeyboard())
		return
	}

	ctx.RunCommand(newProfileCommand(b.api, chatID, b.submitter(chatID)), profileCommandName, defaultReplyKeyboard())
}

func (b *Bot) submitter(chatID int64) submitFunc {
	return func(profile models.ProfileSnapshot) botApi.Chattable {

		err := b.dispatcher.Dispatch(b.ctx, b.sessions.Get(chatID), profile)

		var msg botApi.MessageConfig
		switch {
		case err == nil:
			msg = botApi.NewMessage(chatID, profile.Language.Pick("⏳ Sincronizando patrones del mercado laboral...",
				"⏳ Synchronizing job market patterns..."))
			msg.ReplyMarkup = loadingKeyboard(profile.Language)
		case errors.Is(err, session.ErrRequestInFlight):
			msg = botApi.NewMessage(chatID, profile.Language.Pick("Ya hay una búsqueda en curso.",
				"A search is already in progress."))
			msg.ReplyMarkup = loadingKeyboard(profile.Language)
		case errors.Is(err, session.ErrNoCredential):
			msg = botApi.NewMessage(chatID, profile.Language.Pick("Activa una API key con /activate.",
				"Activate an API key with /activate."))
			msg.ReplyMarkup = defaultReplyKeyboard()
		default:
			log.Errorf("chat %v could not submit profile: %v", chatID, err)
			msg = botApi.NewMessage(chatID, "Error interno.")
			msg.ReplyMarkup = defaultReplyKeyboard()
		}
		return msg
	}
}

func (b *Bot) handleAction(chatID int64, a action) {

	s := b.sessions.Get(chatID)

	if a == actionCancel {
		b.cancel(chatID, s)
		return
	}
	if a == actionNewSearch {
		b.startProfile(chatID)
		return
	}

	var err error
	switch a {
	case actionOpportunities, actionListView:
		err = s.ShowJobs(session.JobsProfile)
	case actionMapView:
		err = s.ShowJobs(session.JobsMap)
	case actionInvestment:
		err = s.ShowInvestment()
	case actionBack:
		err = s.ShowSelection()
	}

	if err != nil {
		b.send(chatID, "No hay resultados que mostrar. Usa /start para buscar.", defaultReplyKeyboard())
		return
	}

	for _, msg := range b.renderState(chatID, s.State()) {
		_, _ = sendWithLogError(b.api, msg)
	}
}

func (b *Bot) cancel(chatID int64, s *session.Session) {

	ctx := b.userContext(chatID)
	if ctx.HasRunningCommand() {
		ctx.AbortCommand()
		b.send(chatID, "Cancelado.", defaultReplyKeyboard())
		return
	}

	if s.Cancel() {
		b.send(chatID, "Búsqueda cancelada.", defaultReplyKeyboard())
		return
	}
	b.send(chatID, "No hay nada que cancelar.", defaultReplyKeyboard())
}

// renderState renders the current sub view of a session with results.
func (b *Bot) renderState(chatID int64, state session.State) []botApi.Chattable {

	if state.View != session.ViewResults || state.Result == nil {
		return nil
	}

	hint := b.displayHint(state.Profile)
	switch state.SubView {
	case session.SubViewJobs:
		if state.JobsMode == session.JobsMap {
			return renderJobsMap(chatID, state.Profile, state.Result.NearbyJobs, hint)
		}
		return renderJobsList(chatID, state.Result.ProfileJobs, hint)
	case session.SubViewInvestment:
		return []botApi.Chattable{renderInvestment(chatID, state.Result.Investment, hint.language)}
	default:
		messages := []botApi.Chattable{renderSelection(chatID, state.Result, hint)}
		return append(messages, renderSources(chatID, state.Result.Sources, hint.language)...)
	}
}

func (b *Bot) displayHint(profile *models.ProfileSnapshot) displayHint {
	hint := displayHint{language: models.Spanish}
	if profile != nil {
		hint.language = profile.Language
	}
	hour := b.options.Now().In(b.options.Location).Hour()
	hint.favorable = isFavorableHour(hour, b.options.FavorableFromHour, b.options.FavorableToHour)
	return hint
}

func (b *Bot) handleInput(chatID int64, input string) {

	ctx := b.userContexts[chatID]
	if ctx != nil && ctx.HasRunningCommand() {
		ctx.OnUserInput(input)
		return
	}

	b.send(chatID, "Usa /start para buscar vacantes o /activate para activar tu API key.", defaultReplyKeyboard())
}

// handleLocation passes the location to the profile form. Locations arriving after the
// profile was submitted are dropped.
func (b *Bot) handleLocation(chatID int64, coordinates models.Coordinates) {

	ctx := b.userContexts[chatID]
	if ctx == nil || !ctx.HasRunningCommand() || !b.sessions.Get(chatID).AcceptsLocation() {
		log.Debugf("dropping location of chat %v, nothing is waiting for it", chatID)
		return
	}

	if !ctx.OnUserLocation(coordinates) {
		log.Debugf("dropping location of chat %v, the form is not at the location step", chatID)
	}
}

func (b *Bot) onRecommendationReady(event events.RecommendationReady) {

	state := b.sessions.Get(event.ChatID).State()
	if state.View != session.ViewResults {
		log.WithField("request_id", event.RequestID).Debugf("chat %v left the results view", event.ChatID)
		return
	}

	for _, msg := range b.renderState(event.ChatID, state) {
		_, _ = sendWithLogError(b.api, msg)
	}
}

func (b *Bot) onRecommendationFailed(event events.RecommendationFailed) {

	text := "⚠️ " + event.Message
	if event.CredentialError {
		text += "\n/activate"
	}
	b.send(event.ChatID, text, defaultReplyKeyboard())
}

func (b *Bot) onCredentialChanged(event events.CredentialChanged) {
	b.sessions.ApplySharedCheck(event.Valid)
}

func (b *Bot) send(chatID int64, text string, keyboard botApi.ReplyKeyboardMarkup) {
	msg := botApi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, _ = sendWithLogError(b.api, msg)
}
