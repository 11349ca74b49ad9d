package config

// ImapConfig represents the configuration for the IMAP mail source
type ImapConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string
	DaysBack int
}

// DirConfig represents the configuration for the directory mail source
type DirConfig struct {
	Path string
}

// RedisConfig represents the configuration for the Redis store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DiscordConfig represents the configuration for the Discord notifier
type DiscordConfig struct {
	WebhookURL   string
	DashboardURL string
	Timeout      string
}

// GetImap returns the IMAP configuration
func (c *Config) GetImap() ImapConfig {
	return ImapConfig{
		Host:     c.GetString("mail.imap.host"),
		Port:     c.GetInt("mail.imap.port"),
		Username: c.GetString("mail.imap.username"),
		Password: c.GetString("mail.imap.password"),
		Mailbox:  c.GetString("mail.imap.mailbox"),
		DaysBack: c.GetInt("mail.imap.days_back"),
	}
}

// GetDir returns the directory source configuration
func (c *Config) GetDir() DirConfig {
	return DirConfig{
		Path: c.GetString("mail.dir.path"),
	}
}

// GetRedis returns the Redis store configuration
func (c *Config) GetRedis() RedisConfig {
	return RedisConfig{
		Addr:     c.GetString("store.redis.addr"),
		Password: c.GetString("store.redis.password"),
		DB:       c.GetInt("store.redis.db"),
	}
}

// GetDiscord returns the Discord notifier configuration
func (c *Config) GetDiscord() DiscordConfig {
	return DiscordConfig{
		WebhookURL:   c.GetString("notify.discord.webhook_url"),
		DashboardURL: c.GetString("notify.discord.dashboard_url"),
		Timeout:      c.GetString("notify.discord.timeout"),
	}
}
