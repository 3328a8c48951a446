package telegram

import (
	"log"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/EndiD-D/Imposter/internal/config"
	"github.com/EndiD-D/Imposter/internal/game"
	"github.com/EndiD-D/Imposter/internal/storage"
	"github.com/EndiD-D/Imposter/internal/words"
)

type Bot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
}

// NewBot wires the whole stack: Telegram API, word pool, game engine
// and (when POSTGRES_DSN is set) the results store.
func NewBot(cfg *config.Config) (*Bot, error) {
	botToken := os.Getenv("TELEGRAM_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_TOKEN is not set")
	}

	botAPI, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}

	var store *storage.Storage
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		store, err = storage.New(dsn)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(); err != nil {
			log.Fatalf("cannot ping DB: %v", err)
		}
		log.Println("✅ Connected to Postgres")
	} else {
		log.Println("POSTGRES_DSN not set, playing without the leaderboard")
	}

	pool := words.Load(cfg.WordsFile)
	names := newNameResolver(botAPI)
	presenter := NewPresenter(botAPI, names)

	// keep interface fields nil when no store exists
	var results game.ResultStore
	var scores ScoreStore
	if store != nil {
		results = store
		scores = store
	}

	manager := game.NewManager(cfg, pool, presenter, results)
	handler := NewHandler(botAPI, manager, scores, presenter, names, cfg)

	return &Bot{
		bot:     botAPI,
		handler: handler,
	}, nil
}

// Start consumes the long-poll update stream until the process exits.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	log.Println("Bot started!")

	for update := range updates {
		switch {
		case update.Message != nil:
			msg := update.Message
			if !msg.IsCommand() {
				// maybe an answer to an open imposter-count prompt
				b.handler.HandleCountReply(msg)
				continue
			}
			switch msg.Command() {
			case "start", "help":
				b.handler.HandleHelp(msg)
			case "rules":
				b.handler.HandleRules(msg)
			case "startgame":
				b.handler.HandleStartGame(msg)
			case "endgame":
				b.handler.HandleEndGame(msg)
			case "clue":
				b.handler.HandleClue(msg)
			case "leaderboard":
				b.handler.HandleLeaderboard(msg)
			}
		case update.CallbackQuery != nil:
			b.handler.HandleCallback(update.CallbackQuery)
		}
	}
}
