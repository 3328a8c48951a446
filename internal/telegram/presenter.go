package telegram

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/EndiD-D/Imposter/internal/game"
)

// Presenter renders engine notifications into chat messages. It is the
// only component that remembers message ids (the editable lobby
// message); everything else is fire-and-forget.
type Presenter struct {
	bot   MessageSender
	names *nameResolver

	mu        sync.Mutex
	lobbyMsgs map[game.ChannelRef]int
}

var _ game.Presenter = (*Presenter)(nil)

func NewPresenter(bot MessageSender, names *nameResolver) *Presenter {
	return &Presenter{
		bot:       bot,
		names:     names,
		lobbyMsgs: make(map[game.ChannelRef]int),
	}
}

func lobbyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Join", cbJoin),
			tgbotapi.NewInlineKeyboardButtonData("➖ Leave", cbLeave),
		),
	)
}

// LobbyUpdated edits the lobby message in place, or posts it if this
// is a fresh lobby (or the old message is gone).
func (p *Presenter) LobbyUpdated(ref game.ChannelRef, view game.LobbyView) {
	chatID := ref.Channel
	text := fmt.Sprintf(
		"🎭 *Imposter — Lobby*\n"+
			"Tap *Join* to enter. When ready, the host runs /startgame again to begin.\n\n"+
			"Host: %s\nPlayers: %d\nFixed order: %s\n\n"+
			"_Roles are revealed privately after start._",
		p.names.Mention(chatID, view.Host),
		len(view.Order),
		p.names.MentionList(chatID, view.Order),
	)

	p.mu.Lock()
	msgID, ok := p.lobbyMsgs[ref]
	p.mu.Unlock()

	if ok {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, lobbyKeyboard())
		edit.ParseMode = tgbotapi.ModeMarkdown
		if _, err := p.bot.Send(edit); err == nil {
			return
		}
		// message deleted or uneditable, fall through and repost
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = lobbyKeyboard()
	sent, err := p.bot.Send(msg)
	if err != nil {
		log.Printf("Failed to send lobby message: %v", err)
		return
	}
	p.mu.Lock()
	p.lobbyMsgs[ref] = sent.MessageID
	p.mu.Unlock()
}

func (p *Presenter) GameStarted(ref game.ChannelRef, order []int64, rounds int) {
	chatID := ref.Channel
	p.send(chatID, fmt.Sprintf(
		"🚀 *Game started!*\nOrder is fixed: %s\n\n%d rounds → final vote → reveal.",
		p.names.MentionList(chatID, order), rounds))

	reveal := tgbotapi.NewMessage(chatID, "🎭 Tap the button to see your role. Only you will see it.")
	reveal.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎭 Reveal Role", cbReveal),
		),
	)
	sendMessage(p.bot, reveal)
}

func (p *Presenter) RoundStarted(ref game.ChannelRef, round int, order []int64) {
	chatID := ref.Channel
	p.send(chatID, fmt.Sprintf("🌀 *Round %d begins!* Order is fixed:\n%s",
		round, p.names.MentionList(chatID, order)))
}

func (p *Presenter) TurnPrompt(ref game.ChannelRef, player int64, timeout time.Duration) {
	chatID := ref.Channel
	p.send(chatID, fmt.Sprintf("✍️ It's %s's turn. Submit with `/clue <text>`.\n_Timeout: %ds_",
		p.names.Mention(chatID, player), int(timeout.Seconds())))
}

func (p *Presenter) ClueSubmitted(ref game.ChannelRef, player int64, clue string) {
	chatID := ref.Channel
	p.send(chatID, fmt.Sprintf("*%s:* %s", p.names.DisplayName(chatID, player), clue))
}

func (p *Presenter) ClueTimedOut(ref game.ChannelRef, player int64) {
	chatID := ref.Channel
	p.send(chatID, fmt.Sprintf("*%s:* %s", p.names.DisplayName(chatID, player), game.TimeoutClue))
}

func (p *Presenter) RoundRecap(ref game.ChannelRef, round int, order []int64, clues map[int64]string) {
	chatID := ref.Channel
	var b strings.Builder
	fmt.Fprintf(&b, "📜 *Round %d recap*\n", round)
	for _, uid := range order {
		clue, ok := clues[uid]
		if !ok {
			clue = "—"
		}
		fmt.Fprintf(&b, "• *%s:* `%s`\n", p.names.DisplayName(chatID, uid), clue)
	}
	p.send(chatID, b.String())
}

func (p *Presenter) VotingOpened(ref game.ChannelRef, order []int64, timeout time.Duration) {
	chatID := ref.Channel

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, uid := range order {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				p.names.DisplayName(chatID, uid),
				fmt.Sprintf("%s%d", cbVotePrefix, uid)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⏭️ Skip", cbSkip),
		tgbotapi.NewInlineKeyboardButtonData("🧹 Clear Vote", cbClearVote),
	))

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"🗳 *Final vote!* Who is the imposter?\nYour confirmation is private. _Voting closes in %ds._",
		int(timeout.Seconds())))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	sendMessage(p.bot, msg)
}

func (p *Presenter) RevealResult(ref game.ChannelRef, rev game.Reveal) {
	chatID := ref.Channel

	var b strings.Builder
	fmt.Fprintf(&b, "🎬 *Reveal!* The secret word was *%s*.\n", rev.Word)
	fmt.Fprintf(&b, "Imposter(s): %s\n", p.names.MentionList(chatID, rev.Imposters))

	switch {
	case rev.HasTop && rev.TopGuess == 0:
		b.WriteString("Top vote guess: ⏭️ Skip\n")
	case rev.HasTop:
		fmt.Fprintf(&b, "Top vote guess: %s\n", p.names.Mention(chatID, rev.TopGuess))
	default:
		b.WriteString("Top vote guess: tie / no clear top guess.\n")
	}

	b.WriteString("\n*Vote summary*\n")
	if len(rev.Counts) == 0 {
		b.WriteString("No votes were cast.")
	}
	for _, vc := range rev.Counts {
		if vc.Target == 0 {
			fmt.Fprintf(&b, "⏭️ Skip: *%d*\n", vc.Count)
		} else {
			fmt.Fprintf(&b, "🗳 %s: *%d*\n", p.names.Mention(chatID, vc.Target), vc.Count)
		}
	}
	p.send(chatID, b.String())
}

func (p *Presenter) GameEnded(ref game.ChannelRef) {
	p.mu.Lock()
	delete(p.lobbyMsgs, ref)
	p.mu.Unlock()
	p.send(ref.Channel, "🧹 *Game ended* — lobby cleared. Use /startgame to play again.")
}

// ForgetLobby drops the remembered lobby message, used when a session
// is torn down without the engine announcing an ending (host leave,
// explicit /endgame).
func (p *Presenter) ForgetLobby(ref game.ChannelRef) {
	p.mu.Lock()
	delete(p.lobbyMsgs, ref)
	p.mu.Unlock()
}

func (p *Presenter) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sendMessage(p.bot, msg)
}
