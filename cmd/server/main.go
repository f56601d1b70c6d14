package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/news-cms/internal/config"
	"github.com/iliyamo/news-cms/internal/database"
	"github.com/iliyamo/news-cms/internal/handler"
	"github.com/iliyamo/news-cms/internal/queue"
	"github.com/iliyamo/news-cms/internal/repository"
	"github.com/iliyamo/news-cms/internal/router"
	"github.com/iliyamo/news-cms/internal/service"
	"github.com/iliyamo/news-cms/internal/storage"
	"github.com/iliyamo/news-cms/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	news := repository.NewNewsRepo(db)

	issuer := utils.NewIssuer(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	cookies := utils.NewCookieWriter(cfg.CookieDomain, cfg.CookieSecure, cfg.CookieSame, cfg.AccessTTL, cfg.RefreshTTL)
	authSvc := service.NewAuthService(users, issuer)

	images, err := storage.NewImageStore(cfg.UploadDir, cfg.BaseURL, cfg.UploadMaxSize, cfg.UploadMIME)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	go queue.StartPublishedConsumer()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Auth:       handler.NewAuthHandler(authSvc, cookies),
		Users:      handler.NewUserHandler(users),
		Categories: handler.NewCategoryHandler(categories),
		News:       handler.NewNewsHandler(news, categories, images),
		Issuer:     issuer,
		Redis:      rdb,
		UploadDir:  cfg.UploadDir,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
