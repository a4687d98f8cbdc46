package model

import "time"

// ServerConfig holds per-guild settings.
type ServerConfig struct {
	Name         string   `mapstructure:"name"`
	GuildID      string   `mapstructure:"guild_id"`
	Enable       bool     `mapstructure:"enable"`
	AdminRoleIDs []string `mapstructure:"admin_role_ids"`
}

// Config stores the application configuration. Secrets come from the
// environment, tunables from config.yaml.
type Config struct {
	BotToken         string
	LogWebhookURL    string
	DeveloperUserIDs []string

	DatabasePath    string                  `mapstructure:"database_path"`
	TicketGrace     time.Duration           `mapstructure:"ticket_grace"`
	BetDebounce     time.Duration           `mapstructure:"bet_debounce"`
	GiveawayWinners int                     `mapstructure:"giveaway_winners"`
	ServerConfigs   map[string]ServerConfig `mapstructure:"servers"`
}
