// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置结构体
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Model      ModelConfig      `mapstructure:"model"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	RateLimits RateLimitsConfig `mapstructure:"rate_limits"`
}

// RateLimitsConfig 限流配置（HTTP + LLM）
type RateLimitsConfig struct {
	LLM map[string]LLMRateLimitConfig `mapstructure:"llm"`
}

// LLMRateLimitConfig 单个 LLM Provider 的限流配置
type LLMRateLimitConfig struct {
	TokensPerMinute   int     `mapstructure:"tokens_per_minute"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	MaxConcurrent     int     `mapstructure:"max_concurrent"`
}

// AgentConfig 客服代理循环配置
type AgentConfig struct {
	MaxIterations int      `mapstructure:"max_iterations"` // 单次调用的迭代预算，<=0 使用默认 6
	HistoryWindow int      `mapstructure:"history_window"` // 渲染进提示词的最近轮数，<=0 使用默认 10
	Timeout       string   `mapstructure:"timeout"`        // 单次调用截止时间，如 "60s"；空表示不设截止
	Temperature   float64  `mapstructure:"temperature"`
	Stop          []string `mapstructure:"stop"` // 为空时使用协议默认停止序列
}

// APIConfig API 服务配置
type APIConfig struct {
	Port       int              `mapstructure:"port"`
	Host       string           `mapstructure:"host"`
	Timeout    string           `mapstructure:"timeout"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Middleware MiddlewareConfig `mapstructure:"middleware"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	Enable       bool     `mapstructure:"enable"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	Auth          bool   `mapstructure:"auth"`
	RateLimit     bool   `mapstructure:"rate_limit"`
	RateLimitRPS  int    `mapstructure:"rate_limit_rps"`
	JWTKey        string `mapstructure:"jwt_key"`
	JWTTimeout    string `mapstructure:"jwt_timeout"`     // 如 "1h"
	JWTMaxRefresh string `mapstructure:"jwt_max_refresh"` // 如 "1h"
	AdminUser     string `mapstructure:"admin_user"`
	AdminPassword string `mapstructure:"admin_password"` // 支持 ${VAR} 与 secret:<name>
}

// ModelConfig 模型配置
type ModelConfig struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// LLMConfig LLM 模型配置
type LLMConfig struct {
	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig 模型提供商配置
type ProviderConfig struct {
	APIKey  string               `mapstructure:"api_key"`
	BaseURL string               `mapstructure:"base_url"`
	Models  map[string]ModelInfo `mapstructure:"models"`
}

// ModelInfo 模型信息
type ModelInfo struct {
	Name          string  `mapstructure:"name"`
	ContextWindow int     `mapstructure:"context_window"`
	Temperature   float64 `mapstructure:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens"`
}

// DefaultsConfig 默认模型配置，格式 provider.model_key，如 "dashscope.qwen_turbo"
type DefaultsConfig struct {
	LLM string `mapstructure:"llm"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Commerce CommerceConfig `mapstructure:"commerce"`
	Session  SessionConfig  `mapstructure:"session"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// CommerceConfig 订单/商品/售后/工单存储配置
type CommerceConfig struct {
	Type     string `mapstructure:"type"`      // memory | postgres
	DSN      string `mapstructure:"dsn"`       // Postgres 连接串，type=postgres 时必填
	PoolSize int    `mapstructure:"pool_size"` // pgx 连接池上限，<=0 使用 pgx 默认
	SeedFile string `mapstructure:"seed_file"` // memory 模式下加载的种子数据（JSON），可为空
}

// SessionConfig 会话历史存储配置
type SessionConfig struct {
	Type     string `mapstructure:"type"` // memory | redis | sqlite
	Addr     string `mapstructure:"addr"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
	Path     string `mapstructure:"path"` // sqlite 文件路径
	TTL      string `mapstructure:"ttl"`  // redis 会话过期时间，空表示不过期
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Type     string `mapstructure:"type"` // memory | redis
	Addr     string `mapstructure:"addr"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
	TTL      string `mapstructure:"ttl"` // 商品/店铺快照缓存时间，如 "5m"
}

// SimulationConfig 模拟业务策略；不代表真实的退货规则或物流数据
type SimulationConfig struct {
	ReturnWindowDays    int     `mapstructure:"return_window_days"`    // 已签收订单可退天数（含当天），<=0 使用默认 7
	TrackingSignedRatio float64 `mapstructure:"tracking_signed_ratio"` // 模拟轨迹末节点为已签收的概率，<0 使用默认 0.5
}

// SecretsConfig 密钥来源配置
type SecretsConfig struct {
	Provider string      `mapstructure:"provider"` // env | memory | vault
	Vault    VaultConfig `mapstructure:"vault"`
}

// VaultConfig HashiCorp Vault 配置
type VaultConfig struct {
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	PathPrefix string `mapstructure:"path_prefix"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	File      string `mapstructure:"file"`
	RedactPII bool   `mapstructure:"redact_pii"` // 调试日志中的收件人、手机尾号等做脱敏，默认开启
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// TracingConfig 链路追踪配置（OpenTelemetry）
type TracingConfig struct {
	Enable         bool   `mapstructure:"enable"`
	ServiceName    string `mapstructure:"service_name"`
	ExportEndpoint string `mapstructure:"export_endpoint"`
	Protocol       string `mapstructure:"protocol"` // grpc（默认，hertz-contrib provider）| http（OTLP/HTTP）
	Insecure       bool   `mapstructure:"insecure"`
}

// PrometheusConfig Prometheus 配置
type PrometheusConfig struct {
	Enable bool `mapstructure:"enable"`
	Port   int  `mapstructure:"port"`
}

// ParseDuration 解析配置中的时长字符串，空或非法时返回 def
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	replaceEnvVars(&config)
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("agent.max_iterations", 6)
	v.SetDefault("agent.history_window", 10)
	v.SetDefault("agent.temperature", 0.2)
	v.SetDefault("storage.commerce.type", "memory")
	v.SetDefault("storage.session.type", "memory")
	v.SetDefault("storage.cache.type", "memory")
	v.SetDefault("simulation.return_window_days", 7)
	v.SetDefault("simulation.tracking_signed_ratio", 0.5)
	v.SetDefault("secrets.provider", "env")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.redact_pii", true)
}

// expandEnv 将 "${VAR}" 形式替换为环境变量值；变量未设置时保留原值
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "$") {
		return s
	}
	envVar := strings.TrimPrefix(strings.TrimSuffix(s, "}"), "${")
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return s
}

// replaceEnvVars 替换配置中的环境变量
func replaceEnvVars(config *Config) {
	for provider, providerConfig := range config.Model.LLM.Providers {
		providerConfig.APIKey = expandEnv(providerConfig.APIKey)
		config.Model.LLM.Providers[provider] = providerConfig
	}
	config.Storage.Commerce.DSN = expandEnv(config.Storage.Commerce.DSN)
	config.Storage.Session.Password = expandEnv(config.Storage.Session.Password)
	config.Storage.Cache.Password = expandEnv(config.Storage.Cache.Password)
	config.API.Middleware.JWTKey = expandEnv(config.API.Middleware.JWTKey)
	config.API.Middleware.AdminPassword = expandEnv(config.API.Middleware.AdminPassword)
	config.Secrets.Vault.Token = expandEnv(config.Secrets.Vault.Token)
}

// LoadAPIConfig 加载 API 配置（仅 configs/api.yaml）
func LoadAPIConfig() (*Config, error) {
	return LoadConfig("configs/api.yaml")
}

// LoadAPIConfigWithModel 加载 API 配置并合并同目录下 model.yaml 的模型配置
func LoadAPIConfigWithModel(apiPath string) (*Config, error) {
	if apiPath == "" {
		apiPath = "configs/api.yaml"
	}
	cfg, err := LoadConfig(apiPath)
	if err != nil {
		return nil, err
	}
	modelPath := filepath.Join(filepath.Dir(apiPath), "model.yaml")
	modelCfg, err := LoadConfig(modelPath)
	if err == nil {
		cfg.Model = modelCfg.Model
		if cfg.RateLimits.LLM == nil {
			cfg.RateLimits.LLM = modelCfg.RateLimits.LLM
		}
	}
	return cfg, nil
}
