package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/gatewarden.db"

	// Key material.
	MasterKeyHex string // 64 hex chars; every working key is derived from it
	JWTSecret    string // HMAC secret for the operator API

	// Devices known at startup, "id" or "id:class" entries.
	KnownDevices []string

	// Window codes
	WindowMinutes int

	// Consumed-nonce retention
	NonceRetentionDays int // 0 = keep forever
	PruneIntervalHours int // how often the pruner runs (default 6)
}

func FromEnv() Config {
	addr := getenvDefault("GATEWARDEN_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("GATEWARDEN_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("GATEWARDEN_DB_PATH", "./data/gatewarden.db")

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   dbPath,

		MasterKeyHex: strings.TrimSpace(os.Getenv("GATEWARDEN_MASTER_KEY")),
		JWTSecret:    strings.TrimSpace(os.Getenv("GATEWARDEN_JWT_SECRET")),

		KnownDevices: splitCSV(os.Getenv("GATEWARDEN_KNOWN_DEVICES")),

		WindowMinutes: getenvInt("GATEWARDEN_WINDOW_MINUTES", 5),

		NonceRetentionDays: getenvInt("GATEWARDEN_NONCE_RETENTION_DAYS", 30),
		PruneIntervalHours: getenvInt("GATEWARDEN_PRUNE_INTERVAL_HOURS", 6),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
