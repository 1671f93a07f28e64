package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"portal/internal/structures"
	"strings"
)

var defaultIdentityEntities = []string{"residents", "staff", "users"}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.redis.keyPrefix", "portal:")
	v.SetDefault("store.redis.shardedRoots", []string{"archives"})
	v.SetDefault("archive.identityEntities", defaultIdentityEntities)
	v.SetDefault("archive.assetPreviewField", "photoPublicId")
	v.SetDefault("auth.adminRole", "admin")
	v.SetDefault("cache.ttl", "30s")

	v.BindEnv("logger.level", "PORTAL_LOG_LEVEL")
	v.BindEnv("store.driver", "PORTAL_STORE_DRIVER")
	v.BindEnv("store.redis.url", "PORTAL_REDIS_URL")
	v.BindEnv("identity.dsn", "PORTAL_IDENTITY_DSN")
	v.BindEnv("auth.jwtSecret", "PORTAL_JWT_SECRET")
	v.BindEnv("assets.bucket", "PORTAL_S3_BUCKET")
	v.BindEnv("assets.accessKey", "PORTAL_S3_ACCESS_KEY")
	v.BindEnv("assets.secretKey", "PORTAL_S3_SECRET_KEY")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "MunicipalPortalArchive"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
