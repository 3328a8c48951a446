package telegram

import (
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// memberGetter is the slice of the Telegram API the resolver needs.
type memberGetter interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// nameResolver turns user ids into display names and mentions, used
// only for rendering. Lookups are cached; a failed lookup degrades to
// the numeric id.
type nameResolver struct {
	bot memberGetter

	mu    sync.Mutex
	cache map[int64]string
}

func newNameResolver(bot memberGetter) *nameResolver {
	return &nameResolver{bot: bot, cache: make(map[int64]string)}
}

// remember seeds the cache from a user object already in hand (joins,
// callbacks), avoiding an API round trip later.
func (n *nameResolver) remember(user *tgbotapi.User) {
	if user == nil {
		return
	}
	name := user.FirstName
	if name == "" {
		name = user.UserName
	}
	if name == "" {
		return
	}
	n.mu.Lock()
	n.cache[user.ID] = name
	n.mu.Unlock()
}

// DisplayName resolves a human-readable name for uid in chat.
func (n *nameResolver) DisplayName(chatID, uid int64) string {
	n.mu.Lock()
	if name, ok := n.cache[uid]; ok {
		n.mu.Unlock()
		return name
	}
	n.mu.Unlock()

	member, err := n.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: uid},
	})
	if err != nil || member.User == nil {
		return strconv.FormatInt(uid, 10)
	}

	name := member.User.FirstName
	if name == "" {
		name = member.User.UserName
	}
	if name == "" {
		name = strconv.FormatInt(uid, 10)
	}

	n.mu.Lock()
	n.cache[uid] = name
	n.mu.Unlock()
	return name
}

// Mention renders a tappable mention for uid.
func (n *nameResolver) Mention(chatID, uid int64) string {
	return fmt.Sprintf("[%s](tg://user?id=%d)", n.DisplayName(chatID, uid), uid)
}

// MentionList joins mentions in the given order, "—" when empty.
func (n *nameResolver) MentionList(chatID int64, ids []int64) string {
	if len(ids) == 0 {
		return "—"
	}
	out := ""
	for i, uid := range ids {
		if i > 0 {
			out += ", "
		}
		out += n.Mention(chatID, uid)
	}
	return out
}
