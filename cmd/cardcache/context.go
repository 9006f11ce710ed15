package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cardcache/internal/cardcache"
	"cardcache/internal/config"
	"cardcache/internal/kvstore"
	"cardcache/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// engineFunc is the body of a command that works on an initialized engine.
type engineFunc func(ctx context.Context, engine *cardcache.Engine) error

// withEngine locks the data directory, opens the store, initializes the
// engine and runs fn. When save is set the bulk tables are persisted after fn
// succeeds.
func (c *commandContext) withEngine(cmd *cobra.Command, save bool, fn engineFunc) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	ctx := logging.WithSessionID(cmd.Context(), uuid.NewString())
	base, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger := logging.WithContext(ctx, base)

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another cardcache process is using %s", cfg.Paths.DataDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(logger, "failed to release data dir lock", "lock_release_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove "+cfg.LockPath()+" if no cardcache process is running"),
				logging.String(logging.FieldImpact, "later commands may report the cache as busy"),
			)
		}
	}()

	store, err := kvstore.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	engine := newEngine(cfg, store, logger)
	if err := engine.Initialize(ctx); err != nil {
		logging.ErrorWithContext(logger, "card cache failed to load", "cache_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the storage settings and that "+cfg.Paths.DataDir+" is readable"),
		)
		return err
	}
	if err := fn(ctx, engine); err != nil {
		return err
	}
	if save {
		if err := engine.SaveAll(ctx); err != nil {
			logging.ErrorWithContext(logger, "card cache changes were not saved", "cache_save_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "rerun the command once storage is writable"),
			)
			return err
		}
	}
	return nil
}

func newEngine(cfg *config.Config, store kvstore.Store, logger *slog.Logger) *cardcache.Engine {
	return cardcache.New(store, logger,
		cardcache.WithTTL(cfg.EntityTTL()),
		cardcache.WithCleanupInterval(cfg.CleanupInterval()),
		cardcache.WithFAQExpiry(cfg.FAQExpiry()),
	)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
