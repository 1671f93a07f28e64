package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	KeyPrefix    string        `yaml:"keyPrefix"`
	PoolSize     int           `yaml:"poolSize"`
	MaxRetries   int           `yaml:"maxRetries"`
	ShardedRoots []string      `yaml:"shardedRoots"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type StoreConfig struct {
	Driver string      `yaml:"driver" validate:"required|in:memory,redis"`
	Redis  RedisConfig `yaml:"redis"`
}

type IdentityConfig struct {
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

type AssetsConfig struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	KeyPrefix string `yaml:"keyPrefix"`
}

type ArchiveConfig struct {
	IdentityEntities  []string `yaml:"identityEntities"`
	AssetPreviewField string   `yaml:"assetPreviewField"`
}

type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwtSecret"`
	Issuer    string `yaml:"issuer"`
	AdminRole string `yaml:"adminRole"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server         `yaml:"webServer"`
	Persistence Persistence    `yaml:"persistence"`
	Logger      LoggerConfig   `yaml:"logger"`
	Store       StoreConfig    `yaml:"store"`
	Identity    IdentityConfig `yaml:"identity"`
	Assets      AssetsConfig   `yaml:"assets"`
	Archive     ArchiveConfig  `yaml:"archive"`
	Auth        AuthConfig     `yaml:"auth"`
	Cache       CacheConfig    `yaml:"cache"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}
