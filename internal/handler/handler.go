package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hanzi/internal/domain"
	"hanzi/internal/middleware"
	"hanzi/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const requestTimeout = 10 * time.Second

// Handler manages all bot interactions
type Handler struct {
	bot             *tele.Bot
	authService     *service.AuthService
	studyService    *service.StudyService
	charService     *service.CharacterService
	progressService *service.ProgressService
	logger          *zap.Logger

	// User states (in-memory state machine)
	states   map[int64]*domain.StateData
	stateMux sync.RWMutex

	// Per-user locks so double taps on a button are handled one at a time
	callbackLocks map[int64]*sync.Mutex
	callbackMux   sync.Mutex
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	authService *service.AuthService,
	studyService *service.StudyService,
	charService *service.CharacterService,
	progressService *service.ProgressService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:             bot,
		authService:     authService,
		studyService:    studyService,
		charService:     charService,
		progressService: progressService,
		logger:          logger,
		states:          make(map[int64]*domain.StateData),
		callbackLocks:   make(map[int64]*sync.Mutex),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Open to everyone: /start greets, text carries the password
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle(tele.OnText, h.handleText)

	protected := h.bot.Group()
	protected.Use(middleware.AuthMiddleware(h.authService, h.logger))

	// Commands
	protected.Handle("/study", h.handleStudy)
	protected.Handle("/progress", h.handleProgress)
	protected.Handle("/random", h.handleRandom)
	protected.Handle("/favorites", h.handleFavorites)

	// Callback queries (inline buttons)
	protected.Handle(&btnStudy, h.handleStudy)
	protected.Handle(&btnProgress, h.handleProgress)
	protected.Handle(&btnRandom, h.handleRandom)
	protected.Handle(&btnFavorites, h.handleFavorites)
	protected.Handle(&btnReveal, h.handleReveal)
	protected.Handle(&btnGrade, h.handleGrade)
	protected.Handle(&btnFavorite, h.handleToggleFavorite)
	protected.Handle(&btnEndSession, h.handleEndSession)
	protected.Handle(&btnMainMenu, h.handleStart)

	// Generic callback handler for data that did not match a button
	protected.Handle(tele.OnCallback, h.handleCallback)
}

// Notify sends a plain message to a user, used by the reminder job
func (h *Handler) Notify(_ context.Context, userID int64, text string) error {
	_, err := h.bot.Send(tele.ChatID(userID), text, mainMenuMarkup())
	return err
}

// GetState returns user's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{State: domain.StateIdle}
	}
	return state
}

// SetState sets user's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets user to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{State: domain.StateIdle})
}

// lockUser serializes callbacks of one user and returns the unlock function
func (h *Handler) lockUser(userID int64) func() {
	h.callbackMux.Lock()
	lock, exists := h.callbackLocks[userID]
	if !exists {
		lock = &sync.Mutex{}
		h.callbackLocks[userID] = lock
	}
	h.callbackMux.Unlock()

	lock.Lock()
	return lock.Unlock
}

func ownerKey(userID int64) string {
	return fmt.Sprintf("tg:%d", userID)
}

// Inline keyboard buttons
var (
	btnStudy = tele.Btn{
		Unique: "study",
		Text:   "📚 Study",
	}
	btnProgress = tele.Btn{
		Unique: "progress",
		Text:   "📊 Progress",
	}
	btnRandom = tele.Btn{
		Unique: "random",
		Text:   "🎲 Random character",
	}
	btnFavorites = tele.Btn{
		Unique: "favorites",
		Text:   "⭐ Favorites",
	}
	btnReveal = tele.Btn{
		Unique: "reveal",
		Text:   "👁 Show answer",
	}
	btnGrade = tele.Btn{
		Unique: "grade",
	}
	btnFavorite = tele.Btn{
		Unique: "fav",
	}
	btnEndSession = tele.Btn{
		Unique: "end_session",
		Text:   "⏹ End session",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Main menu",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnStudy),
		menu.Row(btnProgress, btnRandom),
		menu.Row(btnFavorites),
	)
	return menu
}

const mainMenuText = "🏠 Main menu\n\nChoose an action or send a character, pinyin or English word to look it up:"
