package p2p

import (
	"log/slog"
	"strings"

	"github.com/bitcoin-sv/blockfetch/internal/logger"
)

func slogUpperString(key, val string) slog.Attr {
	return slog.String(key, strings.ToUpper(val))
}

const slogLvlTrace = logger.LevelTrace
