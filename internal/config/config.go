package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig            `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig          `mapstructure:"database"` // PostgreSQL配置
	Sync     SyncConfig              `mapstructure:"sync"`     // 同步调度配置
	Sources  map[string]SourceConfig `mapstructure:"sources"`  // 多数据源独立配置
	Salary   SalaryConfig            `mapstructure:"salary"`   // 身价抓取配置
	Fantasy  FantasyConfig           `mapstructure:"fantasy"`  // 幻想计分/选队配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// SyncConfig 同步调度配置
type SyncConfig struct {
	Cron           string   `mapstructure:"cron"`            // 定时同步Cron表达式（空则不调度）
	EnabledSources []string `mapstructure:"enabled_sources"` // 启用的数据源列表
	StartYear      int      `mapstructure:"start_year"`      // 默认同步起始赛季
	EndYear        int      `mapstructure:"end_year"`        // 默认同步结束赛季
}

// SourceConfig 单个数据源的独立配置
type SourceConfig struct {
	BaseURL      string `mapstructure:"base_url"`       // API基础地址
	Timeout      int    `mapstructure:"timeout"`        // 请求超时（秒）
	PauseMs      int    `mapstructure:"pause_ms"`       // 每次请求后的固定停顿（毫秒），礼貌限速
	RetryPauseMs int    `mapstructure:"retry_pause_ms"` // 失败后重试前的停顿（毫秒），比常规停顿长
	PageLimit    int    `mapstructure:"page_limit"`     // 分页 limit 参数
	Proxy        string `mapstructure:"proxy"`          // 代理地址
}

// SalaryConfig 身价页面抓取配置
type SalaryConfig struct {
	PageURL        string  `mapstructure:"page_url"`        // 身价页面地址
	Timeout        int     `mapstructure:"timeout"`         // 请求超时（秒）
	MinPrice       int     `mapstructure:"min_price"`       // 有效身价下限
	MaxPrice       int     `mapstructure:"max_price"`       // 有效身价上限
	MatchThreshold float64 `mapstructure:"match_threshold"` // 车手名相似度接受阈值
}

// FantasyConfig 幻想计分与选队配置
type FantasyConfig struct {
	Budget      int `mapstructure:"budget"`       // 选队预算上限
	LineupSize  int `mapstructure:"lineup_size"`  // 每队车手数
	TopN        int `mapstructure:"top_n"`        // 返回的最优组合数
	MinStarts   int `mapstructure:"min_starts"`   // 候选车手最少历史出赛数
	RecentRaces int `mapstructure:"recent_races"` // 近期状态统计窗口（场数）
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if s, ok := cfg.Sources["espn"]; ok {
		if v := os.Getenv("ESPN_BASE_URL"); v != "" {
			s.BaseURL = v
		}
		if v := os.Getenv("ESPN_PROXY"); v != "" {
			s.Proxy = v
		}
		cfg.Sources["espn"] = s
	}
	if v := os.Getenv("SALARY_PAGE_URL"); v != "" {
		cfg.Salary.PageURL = v
	}
}

// applyDefaults 未配置项回落到缺省值
func applyDefaults(cfg *Config) {
	for name, s := range cfg.Sources {
		if s.Timeout <= 0 {
			s.Timeout = 15
		}
		if s.PauseMs <= 0 {
			s.PauseMs = 250
		}
		if s.RetryPauseMs <= 0 {
			s.RetryPauseMs = 2000
		}
		if s.PageLimit <= 0 {
			s.PageLimit = 100
		}
		cfg.Sources[name] = s
	}
	if cfg.Salary.Timeout <= 0 {
		cfg.Salary.Timeout = 15
	}
	if cfg.Salary.MinPrice <= 0 {
		cfg.Salary.MinPrice = 1
	}
	if cfg.Salary.MaxPrice <= 0 {
		cfg.Salary.MaxPrice = 60
	}
	if cfg.Salary.MatchThreshold <= 0 {
		cfg.Salary.MatchThreshold = 0.78
	}
	if cfg.Fantasy.Budget <= 0 {
		cfg.Fantasy.Budget = 100
	}
	if cfg.Fantasy.LineupSize <= 0 {
		cfg.Fantasy.LineupSize = 4
	}
	if cfg.Fantasy.TopN <= 0 {
		cfg.Fantasy.TopN = 5
	}
	if cfg.Fantasy.MinStarts <= 0 {
		cfg.Fantasy.MinStarts = 2
	}
	if cfg.Fantasy.RecentRaces <= 0 {
		cfg.Fantasy.RecentRaces = 8
	}
}
