package bot

import (
	"log"
	"sync/atomic"
	"time"

	"lordcord/commands"
	"lordcord/model"
	"lordcord/scheduler"
	"lordcord/tasks"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

type Bot struct {
	Session            *discordgo.Session
	DB                 *sqlx.DB
	Registry           *scheduler.Registry
	TempBans           *tasks.TempBanAdapter
	TempRoles          *tasks.TempRoleAdapter
	Giveaways          *tasks.GiveawayAdapter
	Tickets            *tasks.TicketAdapter
	Bets               *tasks.BetManager
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	StartedAt          time.Time
	config             atomic.Value // *model.Config
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

// Adapters returns every entity adapter that persists expiry records, in
// the shape reconciliation consumes.
func (b *Bot) Adapters() []scheduler.Adapter {
	return []scheduler.Adapter{b.TempBans, b.TempRoles, b.Giveaways, b.Tickets}
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions
	dg.StateEnabled = false

	reg := scheduler.New()
	webhook := cfg.LogWebhookURL

	b := &Bot{
		Session:   dg,
		DB:        db,
		Registry:  reg,
		TempBans:  &tasks.TempBanAdapter{DB: db, Registry: reg, Client: dg, Webhook: webhook},
		TempRoles: &tasks.TempRoleAdapter{DB: db, Registry: reg, Client: dg, Webhook: webhook},
		Giveaways: &tasks.GiveawayAdapter{DB: db, Registry: reg, Client: dg, Webhook: webhook},
		Tickets:   &tasks.TicketAdapter{DB: db, Registry: reg, Client: dg, Webhook: webhook},
		Bets:      tasks.NewBetManager(reg, dg, cfg.BetDebounce),
		StartedAt: time.Now(),
	}
	b.config.Store(cfg)
	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.Registry.CloseAll()
	b.Session.Close()
}

func (b *Bot) RefreshCommands(guildID string) {
	cmds := commands.Generate()
	log.Printf("Registering %d commands for guild %s...", len(cmds), guildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}
