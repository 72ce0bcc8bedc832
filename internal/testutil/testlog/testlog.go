package testlog

import (
	"testing"

	"github.com/danmuck/mllpctl/internal/logging"
	"github.com/rs/zerolog/log"
)

func Start(t *testing.T) {
	t.Helper()
	logging.Configure(logging.Tests("mllpctl-test"))
	log.Debug().Str("test", t.Name()).Msg("start")
}
