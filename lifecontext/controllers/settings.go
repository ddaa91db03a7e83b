package controllers

import (
	"go.uber.org/zap"

	"lifecontext/lifecontext/config"
	"lifecontext/lifecontext/utils/logging"
)

// SettingsController exposes the persisted configuration surface. The
// capture pipeline reads these values; only the dashboard writes them.
type SettingsController struct {
	store *config.SettingsStore
}

func NewSettingsController(store *config.SettingsStore) *SettingsController {
	return &SettingsController{store: store}
}

func (c *SettingsController) Get() config.Settings {
	return c.store.Get()
}

func (c *SettingsController) Update(next config.Settings) error {
	if err := c.store.Update(next); err != nil {
		return err
	}
	logging.AppLogger.Info("settings updated",
		zap.Bool("crawlEnabled", next.CrawlEnabled),
		zap.String("frontend", next.FrontendHost+":"+next.FrontendPort),
	)
	return nil
}
