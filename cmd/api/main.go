package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/domain/pricing"
	"storefront/internal/handler"
	"storefront/internal/infra/api"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/querycache"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func newLogger(cfg config.Config) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	if cfg.IsProd() {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	return logrus.NewEntry(l).WithField("service", "storefront")
}

// 永続ストア（カート・通貨・設定・remember-me のトークン）
func openStore(ctx context.Context, cfg config.Config, log *logrus.Entry) (repo.KVStore, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		gormDB, err := db.Connect(cfg.PostgresDSN(), log.WithField("component", "db"))
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect postgres")
		}
		store := infraRepo.NewGormKVStore(gormDB)
		if err := store.Migrate(ctx); err != nil {
			return nil, nil, errors.Wrap(err, "migrate")
		}
		closer := func() {
			if sqlDB, err := gormDB.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return store, closer, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, errors.Wrap(err, "ping redis")
		}
		return infraRepo.NewRedisKVStore(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil

	case config.StorageMemory:
		return infraRepo.NewMemoryKVStore(), func() {}, nil

	default:
		store, err := infraRepo.NewFileKVStore(cfg.StoragePath)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open file store")
		}
		return store, func() {}, nil
	}
}

func main() {
	// .env は無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//ストレージ
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open storage")
	}
	defer closeStore()

	countries, err := pricing.LoadCountries(cfg.CurrencyTable)
	if err != nil {
		log.WithError(err).Fatal("load currency table")
	}

	//トークンは remember-me なら永続、それ以外はプロセス内
	tokens := infraRepo.NewTokenKVRepository(store, infraRepo.NewMemoryKVStore(), log.WithField("component", "token"))

	executor, err := api.New(api.Config{
		BaseURL:    cfg.APIBaseURL,
		Tokens:     tokens,
		Timeout:    cfg.APITimeout,
		Retries:    cfg.APIRetries,
		RetryDelay: cfg.APIRetryBase,
		Logger:     log,
	})
	if err != nil {
		log.WithError(err).Fatal("create executor")
	}

	cache := querycache.New(querycache.Options{Logger: log})
	defer cache.Close()

	//Repository生成
	authRepo := infraRepo.NewAuthAPIRepository(executor)
	productRepo := infraRepo.NewProductAPIRepository(executor, cache)
	fileRepo := infraRepo.NewFileAPIRepository(executor, cache)
	favoriteRepo := infraRepo.NewFavoriteAPIRepository(executor, cache, tokens)
	billRepo := infraRepo.NewBillAPIRepository(executor, cache)
	paymentRepo := infraRepo.NewPaymentAPIRepository(executor, cache)
	userRepo := infraRepo.NewUserAPIRepository(executor, cache)
	cartRepo := infraRepo.NewCartKVRepository(store)
	prefRepo := infraRepo.NewPreferenceKVRepository(store)

	//Usecase生成
	authValidator := validator.NewAuthValidator()
	settingsUC := usecase.NewSettingsUsecase(ctx, cfg.Language, prefRepo, log)
	currencyUC := usecase.NewCurrencyUsecase(ctx, countries, prefRepo, log)
	favoriteUC := usecase.NewFavoriteUsecase(favoriteRepo, tokens, log)
	catalogUC := usecase.NewCatalogUsecase(productRepo, favoriteUC, currencyUC, settingsUC, log)
	cartUC := usecase.NewCartUsecase(ctx, cartRepo, productRepo, log)
	checkoutUC := usecase.NewCheckoutUsecase(cartUC, currencyUC, settingsUC, billRepo, paymentRepo, userRepo, tokens, log)
	billUC := usecase.NewBillUsecase(billRepo, tokens, log)
	productUC := usecase.NewProductUsecase(productRepo, fileRepo, log)
	profileUC := usecase.NewProfileUsecase(userRepo, tokens, authValidator, log)
	authUC := usecase.NewAuthUsecase(authRepo, tokens, cache, authValidator, log)

	//Handler生成
	e := server.NewRouter(server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(catalogUC, productUC, settingsUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC, currencyUC, settingsUC),
		Favorite:     handler.NewFavoriteHandler(favoriteUC, catalogUC),
		Preference:   handler.NewPreferenceHandler(currencyUC, settingsUC),
		Profile:      handler.NewProfileHandler(profileUC),
		Order:        handler.NewOrderHandler(billUC, checkoutUC, settingsUC),
		AdminOrder:   handler.NewAdminOrderHandler(billUC, settingsUC),
		AdminUser:    handler.NewAdminUserHandler(profileUC),
	}, tokens, log.WithField("component", "http"))

	//Server起動
	if err := server.Start(ctx, e, cfg.Addr(), cfg.ShutdownPeriod, log); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
