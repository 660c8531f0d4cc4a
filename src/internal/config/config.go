package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=core_ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultServerAddr = ":8080"
const defaultChannelID = "LedgerApp"
const defaultChannelKey = "LedgerChannelKey001"
const defaultDormancyDays = 180
const defaultLockTimeout = 5 * time.Second

type Config struct {
	DatabaseDSN   string
	MigrationsDir string
	ServerAddr    string
	ChannelID     string
	ChannelKey    string
	DormancyDays  int
	LockTimeout   time.Duration
}

func Load() (Config, error) {
	conn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if conn == "" {
		conn = defaultConnectionString
	}

	serverAddr := strings.TrimSpace(os.Getenv("SERVER_ADDR"))
	if serverAddr == "" {
		serverAddr = defaultServerAddr
	}

	channelID := strings.TrimSpace(os.Getenv("CHANNEL_ID"))
	if channelID == "" {
		channelID = defaultChannelID
	}

	channelKey := strings.TrimSpace(os.Getenv("CHANNEL_KEY"))
	if channelKey == "" {
		channelKey = defaultChannelKey
	}

	dormancyDays := defaultDormancyDays
	if raw := strings.TrimSpace(os.Getenv("DORMANCY_DAYS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			dormancyDays = parsed
		}
	}

	lockTimeout := defaultLockTimeout
	if raw := strings.TrimSpace(os.Getenv("LOCK_TIMEOUT_MS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			lockTimeout = time.Duration(parsed) * time.Millisecond
		}
	}

	return Config{
		DatabaseDSN:   normalizeConnectionString(conn),
		MigrationsDir: filepath.Join("src", "migrations"),
		ServerAddr:    serverAddr,
		ChannelID:     channelID,
		ChannelKey:    channelKey,
		DormancyDays:  dormancyDays,
		LockTimeout:   lockTimeout,
	}, nil
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
