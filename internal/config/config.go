// Package config loads runtime settings from the environment.
package config

import (
	"log"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"infobot/internal/entities"
)

type Config struct {
	Env           string `env:"ENV" env-default:"prod"`
	BotToken      string `env:"BOT_TOKEN"`
	AdminID       int64  `env:"ADMIN_ID"`
	DBFile        string `env:"DB_FILE" env-default:"users.db"`
	HTTPAddr      string `env:"HTTP_ADDR" env-default:"0.0.0.0:8080"`
	JWTSecret     string `env:"JWT_SECRET" env-default:"change-me"`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:"root"`
	UPIAddress    string `env:"UPI_ADDRESS" env-default:"admin@upi"`

	// SpecialUsers seeds the allow-list at startup, format "id:label,id:label".
	SpecialUsers string `env:"SPECIAL_USERS" env-default:""`
}

// MustLoad reads the environment into a Config and exits on anything the
// bot cannot run without.
func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is not set")
	}
	if cfg.AdminID == 0 {
		log.Fatal("ADMIN_ID is not set")
	}
	return &cfg
}

// SeedSpecialUsers parses the SPECIAL_USERS value. Malformed entries are
// skipped rather than fatal; the list is runtime-editable anyway.
func (c *Config) SeedSpecialUsers() []entities.SpecialUser {
	if c.SpecialUsers == "" {
		return nil
	}
	var out []entities.SpecialUser
	for _, pair := range strings.Split(c.SpecialUsers, ",") {
		id, label, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			continue
		}
		uid, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, entities.SpecialUser{ID: uid, Label: label})
	}
	return out
}
