package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		StatsTTL time.Duration `yaml:"stats_ttl"`
	} `yaml:"redis"`
	Storage struct {
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		CacheDir  string `yaml:"cache_dir"`
	} `yaml:"storage"`
	Firebase struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firebase"`
	Auth struct {
		SigningKey string        `yaml:"signing_key"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
	} `yaml:"auth"`
}

func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}

	if cfg.Auth.AccessTTL == 0 {
		cfg.Auth.AccessTTL = 20 * time.Hour
	}
	if cfg.Auth.RefreshTTL == 0 {
		cfg.Auth.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.Redis.StatsTTL == 0 {
		cfg.Redis.StatsTTL = 30 * time.Second
	}
	if cfg.Storage.CacheDir == "" {
		cfg.Storage.CacheDir = os.TempDir()
	}
	return cfg
}
