package clients

import "time"

const (
	MAX_RETRIES        = 3
	INITIAL_BACKOFF    = 1 * time.Second
	MAX_BACKOFF        = 8 * time.Second
	USER_AGENT         = "ideiamap-client/1.0 (+https://github.com/spacesedan/ideiamap)"
	GEOCODE_USER_AGENT = "floripa-sentimento-mapa"
)
