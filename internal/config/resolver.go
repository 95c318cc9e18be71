package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is a setting plus where it came from, so `sellerchat config`
// can explain why a value is in effect.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath string
	CLILLM     string
	CLIDBPath  string
	CLIAddr    string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath   ResolvedValue `json:"db_path"`
	HTTPAddr ResolvedValue `json:"http_addr"`
	APIToken ResolvedValue `json:"api_token"`

	LLMProvider      ResolvedValue `json:"llm_provider"`
	LLMExtractModel  ResolvedValue `json:"llm_extract_model"`
	LLMValidateModel ResolvedValue `json:"llm_validate_model"`
	LLMClassifyModel ResolvedValue `json:"llm_classify_model"`

	LLMKeys map[string]ResolvedValue `json:"llm_keys,omitempty"`
}

type fileConfig struct {
	DBPath   string `yaml:"db_path"`
	HTTPAddr string `yaml:"http_addr"`
	APIToken string `yaml:"api_token"`
	LLM      struct {
		Provider      string `yaml:"provider"`
		APIKey        string `yaml:"api_key"`
		ExtractModel  string `yaml:"extract_model"`
		ValidateModel string `yaml:"validate_model"`
		ClassifyModel string `yaml:"classify_model"`
	} `yaml:"llm"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sellerchat", "config.yaml")
}

// ResolveConfig layers config file, environment and CLI flags, later
// sources winning, and records the provenance of every value.
func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath: path,
		LLMKeys:    map[string]ResolvedValue{},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.HTTPAddr, cfg.HTTPAddr, SourceConfig, path)
		apply(&out.APIToken, cfg.APIToken, SourceConfig, path)
		apply(&out.LLMProvider, cfg.LLM.Provider, SourceConfig, path)
		apply(&out.LLMExtractModel, cfg.LLM.ExtractModel, SourceConfig, path)
		apply(&out.LLMValidateModel, cfg.LLM.ValidateModel, SourceConfig, path)
		apply(&out.LLMClassifyModel, cfg.LLM.ClassifyModel, SourceConfig, path)

		if key := strings.TrimSpace(cfg.LLM.APIKey); key != "" {
			providers := map[string]struct{}{}
			for _, v := range []string{cfg.LLM.Provider, cfg.LLM.ExtractModel, cfg.LLM.ValidateModel, cfg.LLM.ClassifyModel} {
				if p := providerOf(v); p != "" {
					providers[p] = struct{}{}
				}
			}
			if len(providers) == 0 {
				providers["default"] = struct{}{}
			}
			for p := range providers {
				out.LLMKeys[p] = ResolvedValue{Value: key, Source: SourceConfig, From: path}
			}
		}
	}

	applyEnv(&out.DBPath, "SELLERCHAT_DB")
	applyEnv(&out.HTTPAddr, "SELLERCHAT_ADDR")
	applyEnv(&out.APIToken, "SELLERCHAT_API_TOKEN")

	applyEnv(&out.LLMProvider, "SELLERCHAT_LLM")
	applyEnv(&out.LLMExtractModel, "SELLERCHAT_LLM_EXTRACT")
	applyEnv(&out.LLMValidateModel, "SELLERCHAT_LLM_VALIDATE")
	applyEnv(&out.LLMClassifyModel, "SELLERCHAT_LLM_CLASSIFY")

	for env, provider := range map[string]string{
		"OPENROUTER_API_KEY": "openrouter",
		"OPENAI_API_KEY":     "openai",
		"DEEPSEEK_API_KEY":   "deepseek",
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			out.LLMKeys[provider] = ResolvedValue{Value: v, Source: SourceEnv, From: env}
		}
	}

	apply(&out.LLMProvider, opts.CLILLM, SourceCLI, "--llm")
	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.HTTPAddr, opts.CLIAddr, SourceCLI, "--addr")

	if out.HTTPAddr.Value == "" {
		out.HTTPAddr = ResolvedValue{Value: ":8080", Source: SourceDefault, From: "built-in default"}
	}
	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

// EffectiveLLMModel picks the model flag for a purpose: the per-purpose
// setting if present, else the shared provider setting, else the fallback.
func (r ResolvedConfig) EffectiveLLMModel(purpose, fallback string) ResolvedValue {
	purpose = strings.ToLower(strings.TrimSpace(purpose))

	candidates := []ResolvedValue{}
	switch purpose {
	case "extract":
		candidates = append(candidates, r.LLMExtractModel)
	case "validate":
		candidates = append(candidates, r.LLMValidateModel)
	case "classify":
		candidates = append(candidates, r.LLMClassifyModel)
	}
	candidates = append(candidates, r.LLMProvider)

	for _, c := range candidates {
		if strings.TrimSpace(c.Value) == "" {
			continue
		}
		if strings.Contains(c.Value, "/") {
			return c
		}
		if fallback != "" && strings.HasPrefix(strings.ToLower(fallback), strings.ToLower(strings.TrimSpace(c.Value))+"/") {
			return ResolvedValue{Value: fallback, Source: c.Source, From: c.From}
		}
	}

	if strings.TrimSpace(fallback) != "" {
		return ResolvedValue{Value: fallback, Source: SourceDefault, From: "built-in default"}
	}
	return ResolvedValue{}
}

func (r ResolvedConfig) APIKeyForProvider(providerOrModel string) ResolvedValue {
	provider := providerOf(providerOrModel)
	if provider == "" {
		return ResolvedValue{}
	}
	if v, ok := r.LLMKeys[provider]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	if v, ok := r.LLMKeys["default"]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	return ResolvedValue{}
}

func providerOf(providerOrModel string) string {
	v := strings.ToLower(strings.TrimSpace(providerOrModel))
	if v == "" {
		return ""
	}
	if idx := strings.Index(v, "/"); idx > 0 {
		return v[:idx]
	}
	return v
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
