package main

import (
	"net/http"
	"os"

	"go.uber.org/zap"

	"sampleshare/internal/config"
	"sampleshare/internal/encryption"
	"sampleshare/internal/handlers"
	"sampleshare/internal/middleware"
	"sampleshare/internal/repo"
	"sampleshare/internal/service"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	if err := os.MkdirAll(cfg.TempPath, 0o700); err != nil {
		sugar.Fatalw("failed to prepare temp dir", "path", cfg.TempPath, "error", err)
	}

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	catalogRepo := repo.NewCatalogRepository(gormDB)
	accountingRepo := repo.NewAccountingRepository(gormDB)

	// внешний gpg, если задан бинарь; иначе встроенная связка ключей
	var enc encryption.Encryptor
	if cfg.GPGBinary != "" {
		enc = encryption.NewGPGEncryptor(cfg.GPGBinary, cfg.GPGHome, cfg.TempPath, sugar)
	} else {
		enc = encryption.NewKeyringEncryptor(cfg.KeyringPath, cfg.TempPath, sugar)
	}
	pipeline := encryption.NewPipeline(enc, cfg.TempPath, sugar)

	delivery := service.NewDeliveryService(catalogRepo, accountingRepo, pipeline,
		cfg.CleanRoot, cfg.DetectedRoot, sugar)

	h := handlers.NewHandler(userRepo, delivery, sugar, cfg)

	sugar.Infow(
		"Starting server",
		"addr", cfg.RunAddress,
	)

	sugar.Infow("Config",
		"DatabaseDSN", cfg.DatabaseDSN,
		"CleanRoot", cfg.CleanRoot,
		"DetectedRoot", cfg.DetectedRoot,
		"TempPath", cfg.TempPath,
		"GPGBinary", cfg.GPGBinary,
	)

	if err := http.ListenAndServe(cfg.RunAddress, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
