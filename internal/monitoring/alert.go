package monitoring

import (
	"github.com/rs/zerolog/log"
)

// Alert logs an operator alert (shipped to an alerting pipeline elsewhere).
func Alert(message string, labels map[string]string) {
	log.Error().
		Str("alert", message).
		Fields(labels).
		Msg("ALERT: account lifecycle issue detected")
}
