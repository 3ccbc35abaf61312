package models

import (
	"net/http"
	"strconv"
	"time"
)

// ParseRateLimit reads limit, remaining and reset (unix seconds) headers.
// Missing or malformed headers leave the field at its zero value.
func ParseRateLimit(h http.Header, limitKey, remainingKey, resetKey string) RateLimit {
	var rl RateLimit
	if v, err := strconv.Atoi(h.Get(limitKey)); err == nil {
		rl.Limit = v
	}
	if v, err := strconv.Atoi(h.Get(remainingKey)); err == nil {
		rl.Remaining = v
	}
	if v, err := strconv.ParseInt(h.Get(resetKey), 10, 64); err == nil && v > 0 {
		rl.Reset = time.Unix(v, 0).UTC()
	}
	return rl
}

func (r RateLimit) IsZero() bool {
	return r.Limit == 0 && r.Remaining == 0 && r.Reset.IsZero()
}
