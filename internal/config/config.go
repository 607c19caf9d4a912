package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeSameColumns 表示机器翻译列与参考列配置成了同一列。
	ErrCodeSameColumns = "config_same_columns"
)

const (
	// FileBase 是配置文件名（不含扩展名）；支持 json/yaml/toml。
	FileBase = "terbatch"
	// EnvPrefix 是环境变量前缀，例如 TERBATCH_MT_COLUMN。
	EnvPrefix = "TERBATCH"

	DefaultLogLevel = "warn"
)

// 配置键。
const (
	KeyPath        = "path"
	KeyMTColumn    = "mt_column"
	KeyRefColumn   = "ref_column"
	KeyYes         = "yes"
	KeyStripMarkup = "strip_markup"
	KeyDebugFiles  = "debug_files"
	KeyLogLevel    = "log_level"
)

// CLIArgs 是 CLI 层传入的参数，并保留 bool 项“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --strip-markup=false 必须能覆盖配置里的 true。
type CLIArgs struct {
	Path string

	MTColumn  string
	RefColumn string
	LogLevel  string

	Yes    bool
	YesSet bool

	StripMarkup    bool
	StripMarkupSet bool

	DebugFiles    bool
	DebugFilesSet bool
}

// EffectiveConfig 是合并并做最小规范化后的最终配置。
type EffectiveConfig struct {
	// Path 为空表示未指定目录（交互模式下由 CLI 询问）。
	Path string

	MTColumn  string
	RefColumn string

	Yes         bool
	StripMarkup bool
	DebugFiles  bool

	LogLevel zerolog.Level

	// ConfigFile 是实际读取的配置文件（可能为空）。
	ConfigFile string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeSameColumns:
		return fmt.Sprintf("%s：机器翻译列与参考列不能相同（%v）", e.Code, e.Err)
	case ErrCodeInvalid:
		if e.Path != "" && e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取 .env、配置文件与环境变量，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// - .env：<cwd>/.env（可选，不覆盖已存在的环境变量）
// - 配置文件：CLI 提供 path 时为 <path>/terbatch.*，否则为 <cwd>/terbatch.*（均可选）
//
// 覆盖优先级（固定）：CLI > 环境变量 TERBATCH_* > 配置文件 > 默认值。
// 相对路径一律以 cwd 为基准。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Err: err}
	}

	if err := loadDotEnv(filepath.Join(cwdAbs, ".env")); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: filepath.Join(cwdAbs, ".env"), Err: err}
	}

	searchDir := cwdAbs
	if strings.TrimSpace(cli.Path) != "" {
		searchDir = absCleanFrom(cwdAbs, cli.Path)
	}

	v := viper.New()
	v.SetConfigName(FileBase)
	v.AddConfigPath(searchDir)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(KeyYes, false)
	v.SetDefault(KeyStripMarkup, false)
	v.SetDefault(KeyDebugFiles, true)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: v.ConfigFileUsed(), Err: err}
		}
	}
	return merge(cwdAbs, cli, v)
}

func merge(cwdAbs string, cli CLIArgs, v *viper.Viper) (EffectiveConfig, error) {
	cfgPath := v.ConfigFileUsed()

	// path：CLI > env/config
	path := cli.Path
	if strings.TrimSpace(path) == "" {
		path = v.GetString(KeyPath)
	}

	eff := EffectiveConfig{
		Path:        absCleanFrom(cwdAbs, path),
		MTColumn:    pickString(cli.MTColumn, v.GetString(KeyMTColumn)),
		RefColumn:   pickString(cli.RefColumn, v.GetString(KeyRefColumn)),
		Yes:         pickBool(cli.Yes, cli.YesSet, v.GetBool(KeyYes)),
		StripMarkup: pickBool(cli.StripMarkup, cli.StripMarkupSet, v.GetBool(KeyStripMarkup)),
		DebugFiles:  pickBool(cli.DebugFiles, cli.DebugFilesSet, v.GetBool(KeyDebugFiles)),
		ConfigFile:  cfgPath,
	}

	level, err := zerolog.ParseLevel(strings.ToLower(pickString(cli.LogLevel, v.GetString(KeyLogLevel))))
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("log_level 无效：%w", err)}
	}
	eff.LogLevel = level

	if eff.MTColumn != "" && eff.MTColumn == eff.RefColumn {
		return EffectiveConfig{}, &Error{Code: ErrCodeSameColumns, Path: cfgPath, Err: fmt.Errorf("%q", eff.MTColumn)}
	}
	return eff, nil
}

// Columns 报告两列是否都已由配置给出（此时无需交互选择）。
func (c EffectiveConfig) Columns() bool {
	return c.MTColumn != "" && c.RefColumn != ""
}

func pickString(cli, fallback string) string {
	if s := strings.TrimSpace(cli); s != "" {
		return s
	}
	return strings.TrimSpace(fallback)
}

func pickBool(cli, set, fallback bool) bool {
	if set {
		return cli
	}
	return fallback
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute；p 为空时返回空串。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
