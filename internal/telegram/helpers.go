package telegram

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/EndiD-D/Imposter/internal/game"
)

func sendMessage(bot MessageSender, msg tgbotapi.Chattable) {
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

// answerCallback confirms a button press with a toast visible only to
// the presser.
func answerCallback(bot MessageSender, callbackID, text string) {
	if _, err := bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
}

// answerCallbackAlert is answerCallback with a modal popup, for
// content the presser should not miss (role reveals).
func answerCallbackAlert(bot MessageSender, callbackID, text string) {
	if _, err := bot.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
}

// chanRef keys the game session for a chat. Telegram has no separate
// community/channel split, so the chat id fills both halves of the key.
func chanRef(chat *tgbotapi.Chat) game.ChannelRef {
	return game.ChannelRef{Community: chat.ID, Channel: chat.ID}
}
