package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用总配置，按环境加载
type Config struct {
	Env    string       `yaml:"-"` // 实际加载的环境名
	Server ServerConfig `yaml:"server"`
	LLM    LLMConfig    `yaml:"llm"`
	Sheets SheetsConfig `yaml:"sheets"`
	CORS   CORSConfig   `yaml:"cors"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	Mode        string `yaml:"mode"`          // debug, release, test
	MaxUploadMB int64  `yaml:"max_upload_mb"` // multipart 内存上限
}

type LLMConfig struct {
	Provider       string `yaml:"provider"` // openai, gemini
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // 0 表示不设置
}

type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Env 返回当前环境（APP_ENV），默认 local
func Env() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "local"
}

// Load 先加载 .env（不存在则忽略），再读取 dir/<env>.yaml
// 支持: local, dev, prod，env 为空时取 APP_ENV
func Load(dir, env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if env == "" {
		env = Env()
	}
	path := filepath.Join(dir, env+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	cfg.Env = env
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// 允许环境变量覆盖敏感配置
	overrideFromEnv(cfg)
	cfg.applyProviderDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default 默认配置，yaml 中未出现的字段保留默认值
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 5001, Mode: "debug", MaxUploadMB: 16},
		LLM:    LLMConfig{Provider: ProviderOpenAI},
		Sheets: SheetsConfig{
			CredentialsFile: "credentials.json",
			SheetName:       "Sheet1",
		},
		CORS: CORSConfig{AllowOrigins: []string{"*"}},
		Log:  LogConfig{Level: "info", Format: "json"},
	}
}

// applyProviderDefaults 按 provider 补齐模型与接口地址
func (c *Config) applyProviderDefaults() {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.Model == "" {
			c.LLM.Model = "gpt-4o"
		}
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "https://api.openai.com/v1"
		}
	case ProviderGemini:
		if c.LLM.Model == "" {
			c.LLM.Model = "gemini-2.0-flash"
		}
	}
}

// Validate 缺少大模型 API key 或 provider 未知时启动失败
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm api key is not set (set OPENAI_API_KEY, GEMINI_API_KEY, LLM_API_KEY or llm.api_key)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func overrideFromEnv(c *Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" && v != c.LLM.Provider {
		// 切换 provider 时丢弃文件里属于原 provider 的 key、模型与地址
		c.LLM.Provider = v
		c.LLM.APIKey = ""
		c.LLM.Model = ""
		c.LLM.BaseURL = ""
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.LLM.Provider == ProviderOpenAI {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.LLM.Provider == ProviderGemini {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("GOOGLE_CREDENTIALS_FILE"); v != "" {
		c.Sheets.CredentialsFile = v
	}
	if v := os.Getenv("SPREADSHEET_ID"); v != "" {
		c.Sheets.SpreadsheetID = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Server.Mode = v
	}
}
