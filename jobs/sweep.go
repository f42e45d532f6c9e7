package jobs

import (
	"log"
	"os"
	"strconv"
	"time"

	"marketpay/services"
)

// sweepWindow is how long a failure counter lives without new hits
// before it is dropped.
func sweepWindow() time.Duration {
	if v := os.Getenv("GATEWAY_FAILURE_WINDOW_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return 15 * time.Minute
}

// StartGuardSweeper periodically drops idle failure counters so the
// guard store does not grow without bound.
func StartGuardSweeper() {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		for {
			<-ticker.C
			removed := services.Guard.Sweep(sweepWindow())
			if removed > 0 {
				log.Printf("🧹 Guard sweep removed %d idle counters", removed)
			}
		}
	}()
}
