package config

import (
	"flag"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseDSN string `env:"DATABASE_URI"`

	// Корни деревьев хранилища образцов
	CleanRoot    string `env:"CLEAN_ROOT"`
	DetectedRoot string `env:"DETECTED_ROOT"`

	// Рабочая область временных файлов конвейера шифрования
	TempPath string `env:"TEMP_PATH"`

	// Шифрование: либо внешний gpg с его хранилищем ключей,
	// либо встроенная связка (файл keyring)
	GPGBinary   string `env:"GPG_BINARY"`
	GPGHome     string `env:"GPG_HOME"`
	KeyringPath string `env:"KEYRING_PATH"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "адрес и порт сервера")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.CleanRoot, "clean-root", cfg.CleanRoot, "корень хранилища чистых файлов")
	flag.StringVar(&cfg.DetectedRoot, "detected-root", cfg.DetectedRoot, "корень хранилища детектируемых файлов")
	flag.StringVar(&cfg.TempPath, "temp-path", cfg.TempPath, "каталог временных файлов шифрования")
	flag.StringVar(&cfg.GPGBinary, "gpg-binary", cfg.GPGBinary, "путь к бинарю gpg (пусто — встроенное шифрование)")
	flag.StringVar(&cfg.GPGHome, "gpg-home", cfg.GPGHome, "homedir gpg с ключами получателей")
	flag.StringVar(&cfg.KeyringPath, "keyring", cfg.KeyringPath, "файл связки публичных ключей для встроенного шифрования")
	flag.Parse()

	// Defaults
	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8081"
	}
	if cfg.CleanRoot == "" {
		cfg.CleanRoot = filepath.Join("storage", "clean")
	}
	if cfg.DetectedRoot == "" {
		cfg.DetectedRoot = filepath.Join("storage", "detected")
	}
	if cfg.TempPath == "" {
		cfg.TempPath = filepath.Join("storage", "tmp")
	}

	return cfg
}
