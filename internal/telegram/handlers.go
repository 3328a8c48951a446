package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/EndiD-D/Imposter/internal/config"
	"github.com/EndiD-D/Imposter/internal/game"
	"github.com/EndiD-D/Imposter/internal/storage"
)

// MessageSender defines the interface for sending messages.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ScoreStore is the optional persistence surface used by the handler
// (player registration and the leaderboard).
type ScoreStore interface {
	UpsertPlayer(ctx context.Context, userID int64, username, displayName string) error
	Leaderboard(ctx context.Context, limit int) ([]storage.Player, error)
}

// LobbyTracker lets the handler drop a remembered lobby message when a
// session dies without the engine announcing it.
type LobbyTracker interface {
	ForgetLobby(ref game.ChannelRef)
}

// Callback payloads for the inline buttons.
const (
	cbJoin        = "imposter:join"
	cbLeave       = "imposter:leave"
	cbReveal      = "imposter:reveal"
	cbSkip        = "imposter:skip"
	cbClearVote   = "imposter:clearvote"
	cbVotePrefix  = "imposter:vote_"
	cbCountPrefix = "imposter:count_"
)

// countPromptWindow bounds how long the host gets to pick the imposter
// count before the game starts with 1.
const countPromptWindow = 20 * time.Second

const leaderboardSize = 10

// pendingStart tracks an open imposter-count prompt for one channel.
type pendingStart struct {
	host  int64
	timer *time.Timer
}

type Handler struct {
	Bot     MessageSender
	Service game.Service
	Store   ScoreStore   // may be nil
	Tracker LobbyTracker // may be nil
	Cfg     *config.Config

	names *nameResolver // may be nil

	mu      sync.Mutex
	pending map[game.ChannelRef]*pendingStart
}

func NewHandler(bot MessageSender, service game.Service, store ScoreStore, tracker LobbyTracker, names *nameResolver, cfg *config.Config) *Handler {
	return &Handler{
		Bot:     bot,
		Service: service,
		Store:   store,
		Tracker: tracker,
		names:   names,
		Cfg:     cfg,
		pending: make(map[game.ChannelRef]*pendingStart),
	}
}

// HandleHelp - /help and /start
func (h *Handler) HandleHelp(msg *tgbotapi.Message) {
	text := "🎭 *Imposter* — a social deduction party game.\n\n" +
		"/startgame — open a lobby (run again as host to begin)\n" +
		"/clue <text> — submit your clue on your turn\n" +
		"/endgame — host only, abort the game\n" +
		"/rules — how to play\n" +
		"/leaderboard — all-time scores\n\n" +
		"Join with the *Join* button on the lobby message. " +
		"The turn order is fixed by join order and never changes. " +
		"After the game starts, tap *Reveal Role* — your role is shown only to you.\n" +
		fmt.Sprintf("Flow: %d rounds → recap each round → final vote → reveal → end.", h.Cfg.RoundsBeforeVote)
	h.reply(msg.Chat.ID, text)
}

// HandleRules - /rules
func (h *Handler) HandleRules(msg *tgbotapi.Message) {
	text := "📜 *Rules*\n\n" +
		fmt.Sprintf("• On your turn, send `/clue <text>` — short, max %d characters, never the exact word.\n", h.Cfg.MaxClueLen) +
		"• Civilians know the secret word; imposters must bluff.\n" +
		"• The order is fixed (join order).\n" +
		fmt.Sprintf("• After %d rounds everyone votes who the imposter is. Then roles and the word are revealed.", h.Cfg.RoundsBeforeVote)
	h.reply(msg.Chat.ID, text)
}

// HandleStartGame - /startgame: create a lobby, or (as host) begin the
// game, asking for the imposter count when the roster allows 2.
func (h *Handler) HandleStartGame(msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() {
		h.reply(msg.Chat.ID, "Group chats only.")
		return
	}
	ref := chanRef(msg.Chat)
	uid := msg.From.ID

	err := h.Service.CreateLobby(ref, uid)
	if err == nil {
		h.rememberPlayer(msg.From)
		h.reply(msg.Chat.ID, "✅ Lobby created. Players join with the button above. Run /startgame again to begin.")
		return
	}
	if !errors.Is(err, game.ErrLobbyExists) {
		h.reply(msg.Chat.ID, h.errText(err))
		return
	}

	// lobby exists: this is the host's "begin" invocation
	opts, err := h.Service.StartOptions(ref, uid)
	if err != nil {
		h.reply(msg.Chat.ID, h.errText(err))
		return
	}

	if len(opts) == 1 {
		if err := h.Service.Start(ref, uid, opts[0]); err != nil {
			h.reply(msg.Chat.ID, h.errText(err))
		}
		return
	}

	h.promptImposterCount(ref, msg.Chat.ID, uid, opts)
}

// promptImposterCount asks the host to pick 1 or 2 imposters, starting
// with 1 when the window closes without an answer.
func (h *Handler) promptImposterCount(ref game.ChannelRef, chatID, host int64, opts []int) {
	var buttons []tgbotapi.InlineKeyboardButton
	labels := make([]string, 0, len(opts))
	for _, n := range opts {
		labels = append(labels, strconv.Itoa(n))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			strconv.Itoa(n), fmt.Sprintf("%s%d", cbCountPrefix, n)))
	}

	prompt := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"🎲 *Choose imposters*: pick *%s* within %d seconds (buttons or a plain reply).",
		strings.Join(labels, " / "), int(countPromptWindow.Seconds())))
	prompt.ParseMode = tgbotapi.ModeMarkdown
	prompt.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
	sendMessage(h.Bot, prompt)

	h.mu.Lock()
	if p := h.pending[ref]; p != nil {
		p.timer.Stop()
	}
	h.pending[ref] = &pendingStart{
		host: host,
		timer: time.AfterFunc(countPromptWindow, func() {
			h.resolvePendingStart(ref, chatID, host, 1)
		}),
	}
	h.mu.Unlock()
}

// resolvePendingStart consumes the open prompt (button, reply or
// timeout all funnel here) and starts the game. First caller wins.
func (h *Handler) resolvePendingStart(ref game.ChannelRef, chatID, host int64, count int) {
	h.mu.Lock()
	p := h.pending[ref]
	if p == nil || p.host != host {
		h.mu.Unlock()
		return
	}
	delete(h.pending, ref)
	p.timer.Stop()
	h.mu.Unlock()

	if err := h.Service.Start(ref, host, count); err != nil {
		h.reply(chatID, h.errText(err))
	}
}

// HandleCountReply - plain-text digit from the host while an imposter
// count prompt is open. Anything else is ignored.
func (h *Handler) HandleCountReply(msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	ref := chanRef(msg.Chat)

	h.mu.Lock()
	p := h.pending[ref]
	h.mu.Unlock()
	if p == nil || p.host != msg.From.ID {
		return
	}

	count, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil || (count != 1 && count != 2) {
		return
	}
	h.resolvePendingStart(ref, msg.Chat.ID, msg.From.ID, count)
}

// HandleEndGame - /endgame, host only.
func (h *Handler) HandleEndGame(msg *tgbotapi.Message) {
	ref := chanRef(msg.Chat)
	if err := h.Service.EndGame(ref, msg.From.ID); err != nil {
		h.reply(msg.Chat.ID, h.errText(err))
		return
	}
	h.clearPending(ref)
	if h.Tracker != nil {
		h.Tracker.ForgetLobby(ref)
	}
	h.reply(msg.Chat.ID, "🧹 Ended. Lobby and game cleared.")
}

// HandleClue - /clue <text> on the player's turn. The engine echoes
// accepted clues publicly, so only rejections get a reply.
func (h *Handler) HandleClue(msg *tgbotapi.Message) {
	ref := chanRef(msg.Chat)
	if err := h.Service.SubmitClue(ref, msg.From.ID, msg.CommandArguments()); err != nil {
		h.reply(msg.Chat.ID, h.errText(err))
	}
}

// HandleLeaderboard - /leaderboard, all-time scores from recorded
// games. Needs the database.
func (h *Handler) HandleLeaderboard(msg *tgbotapi.Message) {
	if h.Store == nil {
		h.reply(msg.Chat.ID, "The leaderboard needs a database and none is configured.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	players, err := h.Store.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		log.Printf("[LEADERBOARD] query failed: %v", err)
		h.reply(msg.Chat.ID, "Couldn't load the leaderboard, try again later.")
		return
	}
	if len(players) == 0 {
		h.reply(msg.Chat.ID, "No finished games recorded yet.")
		return
	}

	var b strings.Builder
	b.WriteString("🏆 *Leaderboard*\n")
	for i, p := range players {
		name := p.DisplayName
		if name == "" {
			name = strconv.FormatInt(p.UserID, 10)
		}
		fmt.Fprintf(&b, "%d. %s — %d pts (%d games)\n", i+1, name, p.Score, p.Games)
	}
	h.reply(msg.Chat.ID, b.String())
}

// HandleCallback routes inline button presses.
func (h *Handler) HandleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil {
		return
	}
	ref := chanRef(cb.Message.Chat)
	data := cb.Data

	switch {
	case data == cbJoin:
		h.handleJoin(ref, cb)
	case data == cbLeave:
		h.handleLeave(ref, cb)
	case data == cbReveal:
		h.handleReveal(ref, cb)
	case data == cbSkip:
		h.handleVote(ref, cb, 0)
	case data == cbClearVote:
		h.handleClearVote(ref, cb)
	case strings.HasPrefix(data, cbVotePrefix):
		target, err := strconv.ParseInt(strings.TrimPrefix(data, cbVotePrefix), 10, 64)
		if err != nil {
			return
		}
		h.handleVote(ref, cb, target)
	case strings.HasPrefix(data, cbCountPrefix):
		count, err := strconv.Atoi(strings.TrimPrefix(data, cbCountPrefix))
		if err != nil {
			return
		}
		answerCallback(h.Bot, cb.ID, "")
		h.resolvePendingStart(ref, cb.Message.Chat.ID, cb.From.ID, count)
	}
}

func (h *Handler) handleJoin(ref game.ChannelRef, cb *tgbotapi.CallbackQuery) {
	if err := h.Service.Join(ref, cb.From.ID); err != nil {
		answerCallback(h.Bot, cb.ID, h.errText(err))
		return
	}
	h.rememberPlayer(cb.From)
	answerCallback(h.Bot, cb.ID, "✅ Joined the lobby!")
}

func (h *Handler) handleLeave(ref game.ChannelRef, cb *tgbotapi.CallbackQuery) {
	closed, err := h.Service.Leave(ref, cb.From.ID)
	if err != nil {
		answerCallback(h.Bot, cb.ID, h.errText(err))
		return
	}
	if closed {
		h.clearPending(ref)
		if h.Tracker != nil {
			h.Tracker.ForgetLobby(ref)
		}
		answerCallback(h.Bot, cb.ID, "🧹 Host left — lobby closed.")
		h.reply(cb.Message.Chat.ID, "🧹 The host left, lobby closed. Use /startgame to open a new one.")
		return
	}
	answerCallback(h.Bot, cb.ID, "✅ Left the lobby.")
}

func (h *Handler) handleReveal(ref game.ChannelRef, cb *tgbotapi.CallbackQuery) {
	role, err := h.Service.RevealRole(ref, cb.From.ID)
	if err != nil {
		answerCallback(h.Bot, cb.ID, h.errText(err))
		return
	}
	if role.Imposter {
		answerCallbackAlert(h.Bot, cb.ID, "🕵️ You are the IMPOSTER. You don't know the word — blend in.")
		return
	}
	answerCallbackAlert(h.Bot, cb.ID, fmt.Sprintf("✅ You are a CIVILIAN.\nSecret word: %s", role.Word))
}

func (h *Handler) handleVote(ref game.ChannelRef, cb *tgbotapi.CallbackQuery, target int64) {
	if err := h.Service.CastVote(ref, cb.From.ID, target); err != nil {
		answerCallback(h.Bot, cb.ID, h.errText(err))
		return
	}
	if target == 0 {
		answerCallback(h.Bot, cb.ID, "✅ You voted to skip.")
		return
	}
	answerCallback(h.Bot, cb.ID, "✅ Vote recorded.")
}

func (h *Handler) handleClearVote(ref game.ChannelRef, cb *tgbotapi.CallbackQuery) {
	if err := h.Service.ClearVote(ref, cb.From.ID); err != nil {
		answerCallback(h.Bot, cb.ID, h.errText(err))
		return
	}
	answerCallback(h.Bot, cb.ID, "✅ Cleared your vote.")
}

// rememberPlayer seeds the name cache and registers the player in the
// score store, best effort.
func (h *Handler) rememberPlayer(user *tgbotapi.User) {
	if user == nil {
		return
	}
	if h.names != nil {
		h.names.remember(user)
	}
	if h.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Store.UpsertPlayer(ctx, user.ID, user.UserName, user.FirstName); err != nil {
		log.Printf("[STORE] failed to upsert player %d: %v", user.ID, err)
	}
}

func (h *Handler) clearPending(ref game.ChannelRef) {
	h.mu.Lock()
	if p := h.pending[ref]; p != nil {
		p.timer.Stop()
		delete(h.pending, ref)
	}
	h.mu.Unlock()
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sendMessage(h.Bot, msg)
}

// errText maps an engine rejection to the short message shown to the
// acting user.
func (h *Handler) errText(err error) string {
	switch {
	case errors.Is(err, game.ErrNoActiveSession):
		return "No game here. Use /startgame to create a lobby."
	case errors.Is(err, game.ErrLobbyExists):
		return "A lobby already exists here."
	case errors.Is(err, game.ErrAlreadyStarted):
		return "Game already started."
	case errors.Is(err, game.ErrAlreadyJoined):
		return "You're already in the lobby."
	case errors.Is(err, game.ErrNotInLobby):
		return "Can't leave now — either the game started or you're not in this lobby."
	case errors.Is(err, game.ErrNotHost):
		return "Host only."
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return fmt.Sprintf("Not enough players, need at least %d.", h.Cfg.MinPlayers)
	case errors.Is(err, game.ErrNotYourTurn):
		return "Not your turn."
	case errors.Is(err, game.ErrAlreadySubmitted):
		return "You already submitted this round."
	case errors.Is(err, game.ErrExactWord):
		return "Don't type the exact secret word."
	case errors.Is(err, game.ErrEmptyClue):
		return "Clue can't be empty. Use /clue <text>."
	case errors.Is(err, game.ErrClueTooLong):
		return fmt.Sprintf("Clue too long, max %d characters.", h.Cfg.MaxClueLen)
	case errors.Is(err, game.ErrVotingInProgress):
		return "Voting is open — no clues right now."
	case errors.Is(err, game.ErrVotingClosed):
		return "Voting is closed."
	case errors.Is(err, game.ErrNotAPlayer):
		return "Only players can do that."
	case errors.Is(err, game.ErrSelfVote):
		return "You can't vote for yourself."
	case errors.Is(err, game.ErrUnknownTarget):
		return "That player isn't in this game."
	default:
		log.Printf("Unexpected game error: %v", err)
		return "Something went wrong, try again."
	}
}
