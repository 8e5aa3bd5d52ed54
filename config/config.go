package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Game     GameConfig     `mapstructure:"game"`
	MapData  MapDataConfig  `mapstructure:"mapdata"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

// GameConfig holds the territory economy and progression tuning knobs.
// Distances are meters, money is whole dollars.
type GameConfig struct {
	TerritoryRadiusM       float64 `mapstructure:"territory_radius_m"`
	ProtectionRangeM       float64 `mapstructure:"protection_range_m"`
	CollectionRangeM       float64 `mapstructure:"collection_range_m"`
	ManualJoinDistanceM    float64 `mapstructure:"manual_join_distance_m"`
	AutoJoinSearchRadiusM  float64 `mapstructure:"auto_join_search_radius_m"`
	MaxProtectingUsers     int     `mapstructure:"max_protecting_users"`
	MaxProtectedBusinesses int     `mapstructure:"max_protected_businesses"`
	MaxDailyRemovals       int     `mapstructure:"max_daily_removals"`
	ProfitPerMinute        float64 `mapstructure:"profit_per_minute"`
	MaxAccumulationMin     int     `mapstructure:"max_accumulation_min"`

	RegenIntervalS int `mapstructure:"regen_interval_s"`
	RegenAmount    int `mapstructure:"regen_amount"`

	EnemyCount         int     `mapstructure:"enemy_count"`
	EnemySpawnRadiusM  float64 `mapstructure:"enemy_spawn_radius_m"`
	EnemyMoveIntervalS int     `mapstructure:"enemy_move_interval_s"`

	AutosaveIntervalS int    `mapstructure:"autosave_interval_s"`
	ItemCatalogPath   string `mapstructure:"item_catalog_path"`
}

type MapDataConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTLH        time.Duration `mapstructure:"jwt_ttl_h"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	// AllowedOrigins lists the WebSocket origins that are permitted.
	// An empty slice allows all origins (useful for local development only).
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/game.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("game.territory_radius_m", 2000)
	v.SetDefault("game.protection_range_m", 2000)
	v.SetDefault("game.collection_range_m", 2000)
	v.SetDefault("game.manual_join_distance_m", 2000)
	v.SetDefault("game.auto_join_search_radius_m", 10000)
	v.SetDefault("game.max_protecting_users", 10)
	v.SetDefault("game.max_protected_businesses", 15)
	v.SetDefault("game.max_daily_removals", 2)
	v.SetDefault("game.profit_per_minute", 1)
	v.SetDefault("game.max_accumulation_min", 60)
	v.SetDefault("game.regen_interval_s", 60)
	v.SetDefault("game.regen_amount", 5)
	v.SetDefault("game.enemy_count", 15)
	v.SetDefault("game.enemy_spawn_radius_m", 1500)
	v.SetDefault("game.enemy_move_interval_s", 10)
	v.SetDefault("game.autosave_interval_s", 300)
	v.SetDefault("mapdata.timeout", "10s")
	v.SetDefault("security.jwt_ttl_h", "72h")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
