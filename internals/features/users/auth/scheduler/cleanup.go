package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"laboissim_backend/internals/features/users/auth/service"
)

// StartAuthCleanupScheduler sweeps expired refresh tokens and the
// access-token blacklist once per interval (default: daily).
func StartAuthCleanupScheduler(db *gorm.DB) {
	go func() {
		interval := 24 * time.Hour
		if val := os.Getenv("AUTH_CLEANUP_INTERVAL_HOURS"); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
				interval = time.Duration(parsed) * time.Hour
			}
		}

		for {
			log.Println("[CLEANUP] sweeping expired auth rows...")
			service.CleanupExpiredAuthRows(db)
			time.Sleep(interval)
		}
	}()
}
