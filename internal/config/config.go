package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"

	"sorlens/internal/model"
	"sorlens/internal/parser"
)

// ConfigFileName 配置文件名（位于可执行文件同目录）
const ConfigFileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Analysis AnalysisConfig `toml:"analysis"`
	Report   ReportConfig   `toml:"report"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port" validate:"min=1,max=65535"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir" validate:"required"`
}

// AnalysisConfig 解析配置
type AnalysisConfig struct {
	Mode      string `toml:"mode" validate:"oneof=auto aggregate student"`
	Workers   int    `toml:"workers" validate:"min=1,max=32"`
	LevelSpan int    `toml:"level_span" validate:"min=3,max=5"`
	// ExtraKeywords 角色名 -> 追加的列名关键词
	ExtraKeywords map[string][]string `toml:"extra_keywords" validate:"dive,keys,oneof=name class mark quality_pct pass_pct completed not_completed,endkeys,dive,required"`
}

// ReportConfig 报告导出配置
type ReportConfig struct {
	Font  string `toml:"font"`
	Title string `toml:"title" validate:"required"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Analysis: AnalysisConfig{
			Mode:      string(model.ModeAuto),
			Workers:   1,
			LevelSpan: parser.DefaultLevelSpan,
		},
		Report: ReportConfig{
			Font:  "Arial",
			Title: "Анализ результатов СОР и СОЧ",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return eris.Wrap(err, "config: invalid configuration")
	}
	return nil
}

// Lexicon 默认关键词表加上 extra_keywords
func (c *AppConfig) Lexicon() *parser.Lexicon {
	lex := parser.DefaultLexicon()
	for name, words := range c.Analysis.ExtraKeywords {
		if role, ok := model.ParseColumnRole(name); ok {
			lex.Extend(role, words...)
		}
	}
	return lex
}

// ImportMode 解析模式
func (c *AppConfig) ImportMode() model.ImportMode {
	return model.ImportMode(c.Analysis.Mode)
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, ConfigFileName)
}

// LoadConfigWithInfo 从 path 加载配置（path 为空时使用默认位置），应用环境变量并校验
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, eris.Wrapf(err, "config: parse %s", path)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, eris.Wrapf(err, "config: read %s", path)
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// applyEnv 环境变量覆盖
func applyEnv(config *AppConfig) {
	if v := os.Getenv("SORLENS_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("SORLENS_LOG_LEVEL"); v != "" {
		config.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SORLENS_MODE"); v != "" {
		config.Analysis.Mode = strings.ToLower(v)
	}
}

// SaveConfig 保存配置到 path
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return eris.Wrap(err, "config: encode")
	}

	return eris.Wrapf(os.WriteFile(path, data, 0644), "config: write %s", path)
}

// EnsureDataDir 确保数据目录存在；相对路径相对于可执行文件目录
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	for _, dir := range []string{dataDir, filepath.Join(dataDir, "reports")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", eris.Wrapf(err, "config: create %s", dir)
		}
	}

	return dataDir, nil
}

// DatabasePath 运行历史数据库路径
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "sorlens.db")
}
