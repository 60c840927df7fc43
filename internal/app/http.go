package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mcansh/snkrs-sub000/internal/catalog"
	"github.com/mcansh/snkrs-sub000/internal/config"
	"github.com/mcansh/snkrs-sub000/internal/handlers"
	"github.com/mcansh/snkrs-sub000/internal/media"
	"github.com/mcansh/snkrs-sub000/internal/profile"
	"github.com/mcansh/snkrs-sub000/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config, log zerolog.Logger) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	store := catalog.NewPG(infra.db)

	cookieOpts := session.CookieOptions{
		Secure: cfg.Production(),
	}

	var sessions session.Manager
	switch cfg.SessionBackend {
	case "cookie":
		sessions = session.NewCookieManager(cfg.SessionSecret, cookieOpts)
	default:
		sessions = session.NewKVManager(infra.redis, cookieOpts)
	}

	profiles := profile.NewReader(infra.redis, store, log)

	var uploader *media.Uploader
	if cfg.MediaEndpoint != "" {
		uploader, err = media.NewUploader(ctx, media.Config{
			Endpoint:  cfg.MediaEndpoint,
			AccessKey: cfg.MediaAccessKey,
			SecretKey: cfg.MediaSecretKey,
			Bucket:    cfg.MediaBucket,
			UseSSL:    cfg.MediaUseSSL,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("bucket", cfg.MediaBucket).Msg("media storage ready")
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	h := handlers.New(store, profiles, sessions, uploader, log, cfg.Production())
	h.Register(router)

	return router, infra.close, nil
}
