package spacetraveling

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eringen/spacetraveling/pagecache"
	"github.com/eringen/spacetraveling/prismic"
)

func (a *App) startWarmer() error {
	if !a.Config.WarmEnabled() {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(a.Config.WarmSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		a.Warm(ctx)
	}); err != nil {
		return err
	}
	c.Start()
	a.warmer = c
	a.Logger.Info("warmer scheduled", "schedule", a.Config.WarmSchedule)
	return nil
}

// Warm generates the listing and the enumerated posts that have no cache
// entry. Failures are logged and do not stop the remaining pages.
func (a *App) Warm(ctx context.Context) {
	warmed := 0
	warm := func(key string, ttl time.Duration, gen pagecache.Generator) {
		if _, ok := a.Cache.Peek(ctx, key); ok {
			return
		}
		if _, err := a.Cache.Generate(ctx, key, ttl, gen); err != nil {
			if !errors.Is(err, prismic.ErrNotFound) {
				a.Logger.Warn("warm page", "key", key, "error", err)
			}
			return
		}
		warmed++
	}

	warm(homeKey, a.Config.ListingTTL, a.homeGenerator())
	uids, err := a.Source.Paths(ctx)
	if err != nil {
		a.Logger.Warn("warm: enumerate posts", "error", err)
		return
	}
	for _, uid := range uids {
		warm(postKey(uid), a.Config.PostTTL, a.postGenerator(uid))
	}
	a.Logger.Debug("warm finished", "generated", warmed)
}
