package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "config.yaml"

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port" validate:"gte=0,lte=65535"`
		Addr string `yaml:"-"` // 不从配置文件读取，而是在加载后计算
	} `yaml:"server"`
	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format" validate:"omitempty,oneof=text json"`
		Output   string `yaml:"output" validate:"omitempty,oneof=stdout file both"`
		FilePath string `yaml:"file_path"`
	} `yaml:"log"`

	DB struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Username        string `yaml:"username"`
		Password        string `yaml:"password"`
		Database        string `yaml:"database"`
		Charset         string `yaml:"charset"`
		DSN             string `yaml:"-"`                 // 不从配置文件读取，而是在加载后计算
		MaxOpenConns    int    `yaml:"max_open_conns"`    // 最大打开连接数
		MaxIdleConns    int    `yaml:"max_idle_conns"`    // 最大空闲连接数
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 连接最大生命周期（分钟）
	} `yaml:"database"`
	Redis struct {
		Addr          string `yaml:"addr"` // 为空时不启用热门列表缓存
		Password      string `yaml:"password"`
		DB            int    `yaml:"db"`
		PoolSize      int    `yaml:"pool_size"`
		Prefix        string `yaml:"prefix"`
		HotListTTLSec int    `yaml:"hot_list_ttl_sec" validate:"gte=0"` // 热门咨询师列表缓存时间，单位：秒
	} `yaml:"redis"`
	Recommend RecommendConfig `yaml:"recommend"`
	Availability struct {
		MaxRequests      uint32 `yaml:"max_requests"`      // 半开状态允许的请求数
		IntervalSec      int    `yaml:"interval_sec"`      // 闭合状态下的计数清零周期
		TimeoutSec       int    `yaml:"timeout_sec"`       // 断开后多久进入半开
		FailureThreshold uint32 `yaml:"failure_threshold"` // 连续失败多少次断开
	} `yaml:"availability"`
	RateLimit struct {
		Requests  int  `yaml:"requests" validate:"gte=0"`
		WindowSec int  `yaml:"window_sec" validate:"gte=0"`
		Disabled  bool `yaml:"disabled"`
	} `yaml:"rate_limit"`
	Timeouts struct {
		RequestSec  int `yaml:"request_sec"`  // 请求超时，单位：秒
		ResponseSec int `yaml:"response_sec"` // 响应超时，单位：秒
		IdleSec     int `yaml:"idle_sec"`     // 空闲超时，单位：秒
	} `yaml:"timeouts"`
	Scheduler struct {
		CheckIntervalSec  int `yaml:"check_interval_sec"`   // 调度器检查间隔（秒）
		HotListRefreshSec int `yaml:"hot_list_refresh_sec"` // 热门列表缓存刷新间隔（秒），0 表示不刷新
	} `yaml:"scheduler"`
}

// RecommendConfig 推荐流程的可调参数
type RecommendConfig struct {
	MoodLookbackDays    int     `yaml:"mood_lookback_days" validate:"gte=1"`
	UrgentMoodThreshold float64 `yaml:"urgent_mood_threshold" validate:"gte=0,lte=10"`
	MaxResults          int     `yaml:"max_results" validate:"gte=1"`
	CollaborativeLimit  int     `yaml:"collaborative_limit" validate:"gte=0"` // 协同过滤取用的历史咨询师数量
	PreferenceLimit     int     `yaml:"preference_limit" validate:"gte=0"`    // 偏好分析取用的历史咨询师数量

	DisableCollaborative   bool `yaml:"disable_collaborative"`
	DisablePersonalization bool `yaml:"disable_personalization"`
	DisableDiversity       bool `yaml:"disable_diversity"`

	Personalization struct {
		PriceSensitiveBelow float64 `yaml:"price_sensitive_below"`
		QualityFirstRating  float64 `yaml:"quality_first_rating"`
		DefaultPrice        float64 `yaml:"default_price"`  // 历史咨询师均无价格时的缺省均价
		DefaultRating       float64 `yaml:"default_rating"` // 历史咨询师均无评分时的缺省均分
	} `yaml:"personalization"`

	// 多样性权重沿用原有的手调数值，属于可调参数
	Diversity struct {
		HeadSize      int     `yaml:"head_size" validate:"gte=0"`
		PriceDivisor  float64 `yaml:"price_divisor" validate:"gt=0"`
		LocationBonus float64 `yaml:"location_bonus"`
	} `yaml:"diversity"`

	Tags struct {
		AffordableBelow        float64 `yaml:"affordable_below"`
		HighRatingFrom         float64 `yaml:"high_rating_from"`
		ExperiencedReviewsOver int     `yaml:"experienced_reviews_over"`
	} `yaml:"tags"`

	Dictionary Dictionary `yaml:"dictionary"`
}

// Load 加载配置：优先 config.yaml，失败时退回环境变量
func Load() *Config {
	// 首先尝试加载.env文件中的环境变量
	_ = godotenv.Load() // 忽略错误，如果.env文件不存在，继续使用系统环境变量

	cfg, err := LoadFile(defaultConfigFile)
	if err != nil {
		log.Printf("Error loading %s: %v, falling back to environment variables", defaultConfigFile, err)
		return loadFromEnv()
	}
	log.Printf("Loading configuration from %s", defaultConfigFile)
	return cfg
}

// LoadFile 从指定的yaml文件加载配置，并应用环境变量覆盖与默认值
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFromEnv() *Config {
	var cfg Config

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		cfg.DB.DSN = dsn
	}
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")

	applyEnvOverrides(&cfg)
	cfg.ApplyDefaults()

	log.Println("配置从环境变量加载，部分配置可能缺失")
	return &cfg
}

// applyEnvOverrides 从环境变量中加载敏感信息
func applyEnvOverrides(cfg *Config) {
	if envUsername := os.Getenv("DATABASE_USERNAME"); envUsername != "" {
		cfg.DB.Username = envUsername
	}
	if envPassword := os.Getenv("DATABASE_PASSWORD"); envPassword != "" {
		cfg.DB.Password = envPassword
	}
	if envPassword := os.Getenv("REDIS_PASSWORD"); envPassword != "" {
		cfg.Redis.Password = envPassword
	}
}

// ApplyDefaults 为未配置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	c.Server.Addr = fmt.Sprintf(":%d", c.Server.Port)

	if c.DB.Charset == "" {
		c.DB.Charset = "utf8mb4"
	}
	if c.DB.DSN == "" && c.DB.Host != "" {
		// 预约时间等字段直接扫描为 time.Time，必须开启 parseTime
		c.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true&loc=Local",
			c.DB.Username,
			c.DB.Password,
			c.DB.Host,
			c.DB.Port,
			c.DB.Database,
			c.DB.Charset)
	}

	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "counselor:"
	}
	if c.Redis.HotListTTLSec == 0 {
		c.Redis.HotListTTLSec = 300
	}

	if c.Availability.MaxRequests == 0 {
		c.Availability.MaxRequests = 1
	}
	if c.Availability.IntervalSec == 0 {
		c.Availability.IntervalSec = 60
	}
	if c.Availability.TimeoutSec == 0 {
		c.Availability.TimeoutSec = 30
	}
	if c.Availability.FailureThreshold == 0 {
		c.Availability.FailureThreshold = 5
	}

	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 60
	}
	if c.RateLimit.WindowSec == 0 {
		c.RateLimit.WindowSec = 60
	}

	if c.Timeouts.RequestSec == 0 {
		c.Timeouts.RequestSec = 15
	}
	if c.Timeouts.ResponseSec == 0 {
		c.Timeouts.ResponseSec = 30
	}
	if c.Timeouts.IdleSec == 0 {
		c.Timeouts.IdleSec = 60
	}

	if c.Scheduler.CheckIntervalSec <= 0 {
		c.Scheduler.CheckIntervalSec = 60
	}

	c.Recommend.applyDefaults()
}

func (r *RecommendConfig) applyDefaults() {
	if r.MoodLookbackDays == 0 {
		r.MoodLookbackDays = 7
	}
	if r.UrgentMoodThreshold == 0 {
		r.UrgentMoodThreshold = 4.0
	}
	if r.MaxResults == 0 {
		r.MaxResults = 10
	}
	if r.CollaborativeLimit == 0 {
		r.CollaborativeLimit = 3
	}
	if r.PreferenceLimit == 0 {
		r.PreferenceLimit = 5
	}

	p := &r.Personalization
	if p.PriceSensitiveBelow == 0 {
		p.PriceSensitiveBelow = 250
	}
	if p.QualityFirstRating == 0 {
		p.QualityFirstRating = 4.8
	}
	if p.DefaultPrice == 0 {
		p.DefaultPrice = 300
	}
	if p.DefaultRating == 0 {
		p.DefaultRating = 4.5
	}

	d := &r.Diversity
	if d.HeadSize == 0 {
		d.HeadSize = 5
	}
	if d.PriceDivisor == 0 {
		d.PriceDivisor = 100
	}
	if d.LocationBonus == 0 {
		d.LocationBonus = 10
	}

	t := &r.Tags
	if t.AffordableBelow == 0 {
		t.AffordableBelow = 300
	}
	if t.HighRatingFrom == 0 {
		t.HighRatingFrom = 4.8
	}
	if t.ExperiencedReviewsOver == 0 {
		t.ExperiencedReviewsOver = 50
	}

	r.Dictionary = r.Dictionary.withDefaults()
}

// Validate 校验配置字段
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default 返回只包含默认值的配置，主要用于测试和命令行工具
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}
