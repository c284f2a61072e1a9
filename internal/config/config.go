package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port     string
		LogLevel string
	}
	Chat struct {
		Channel string
		URL     string
		Nick    string
	}
	Admission struct {
		GlobalInterval time.Duration
		UserCooldown   time.Duration
		MaxRangeSpan   int
	}
	Keepalive struct {
		Interval time.Duration
		QuietGap time.Duration
	}
	Inject struct {
		Token string
	}
	Lookup struct {
		BaseURL string
	}
	Speech struct {
		APIKey  string
		VoiceID string
	}
}

func Load() Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("chat.url", "wss://irc-ws.chat.twitch.tv:443")

	v.SetDefault("admission.global_interval_s", 12)
	v.SetDefault("admission.user_cooldown_s", 75)
	v.SetDefault("admission.max_range_span", 5)

	v.SetDefault("keepalive.interval_s", 60)
	v.SetDefault("keepalive.quiet_gap_s", 55)

	v.SetDefault("lookup.base_url", "https://bible-api.com")

	// Map envs
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.log_level", "LOG_LEVEL")

	v.BindEnv("chat.channel", "CHAT_CHANNEL")
	v.BindEnv("chat.url", "CHAT_WS_URL")
	v.BindEnv("chat.nick", "CHAT_NICK")

	v.BindEnv("admission.global_interval_s", "ADMIT_GLOBAL_INTERVAL_S")
	v.BindEnv("admission.user_cooldown_s", "ADMIT_USER_COOLDOWN_S")
	v.BindEnv("admission.max_range_span", "ADMIT_MAX_RANGE_SPAN")

	v.BindEnv("keepalive.interval_s", "KEEPALIVE_INTERVAL_S")
	v.BindEnv("keepalive.quiet_gap_s", "KEEPALIVE_QUIET_GAP_S")

	v.BindEnv("inject.token", "INJECT_TOKEN")

	v.BindEnv("lookup.base_url", "LOOKUP_BASE_URL")

	v.BindEnv("speech.api_key", "ELEVENLABS_API_KEY")
	v.BindEnv("speech.voice_id", "ELEVENLABS_VOICE_ID")

	var c Config
	c.Server.Port = v.GetString("server.port")
	c.Server.LogLevel = v.GetString("server.log_level")

	c.Chat.Channel = v.GetString("chat.channel")
	c.Chat.URL = v.GetString("chat.url")
	c.Chat.Nick = v.GetString("chat.nick")

	c.Admission.GlobalInterval = time.Duration(v.GetInt("admission.global_interval_s")) * time.Second
	c.Admission.UserCooldown = time.Duration(v.GetInt("admission.user_cooldown_s")) * time.Second
	c.Admission.MaxRangeSpan = v.GetInt("admission.max_range_span")

	c.Keepalive.Interval = time.Duration(v.GetInt("keepalive.interval_s")) * time.Second
	c.Keepalive.QuietGap = time.Duration(v.GetInt("keepalive.quiet_gap_s")) * time.Second

	c.Inject.Token = v.GetString("inject.token")

	c.Lookup.BaseURL = v.GetString("lookup.base_url")

	c.Speech.APIKey = v.GetString("speech.api_key")
	c.Speech.VoiceID = v.GetString("speech.voice_id")

	log.Printf("config loaded: port=%s chat_channel=%s", c.Server.Port, c.Chat.Channel)
	return c
}
