package ratelimit

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/thanghienlanh/web33/pkg/logger"
	"go.uber.org/zap"
)

// StartSweeper schedules l.Sweep every interval, independent of request traffic.
// The caller stops the returned scheduler on shutdown.
func StartSweeper(l *MemoryLimiter, interval time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if removed := l.Sweep(); removed > 0 {
			logger.Log.Debug("Swept expired rate limit windows", zap.Int("removed", removed))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule rate limit sweep: %w", err)
	}
	c.Start()
	return c, nil
}
