package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ElasticsearchConfig contains connection details for the search cluster.
type ElasticsearchConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Index       string `yaml:"index"`
	UseSSL      bool   `yaml:"use_ssl"`
	VerifyCerts bool   `yaml:"verify_certs"`
}

// PDFConfig points at the source document to ingest.
type PDFConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig tunes query execution and result presentation.
type SearchConfig struct {
	Size             int    `yaml:"size"`
	HighlightPreTag  string `yaml:"highlight_pre_tag"`
	HighlightPostTag string `yaml:"highlight_post_tag"`
	Explain          bool   `yaml:"explain"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	PDF           PDFConfig           `yaml:"pdf"`
	Search        SearchConfig        `yaml:"search"`
	Log           LogConfig           `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults. Environment variables override the file in both cases.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/lawsearch/config.yaml.
// If neither exists, it writes defaults to ~/.config/lawsearch/config.yaml
// and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lawsearch", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Elasticsearch: ElasticsearchConfig{
			Host:     "localhost",
			Port:     9200,
			Username: "elastic",
			Index:    "korean_legal_documents",
		},
		PDF:    PDFConfig{Path: "law.pdf"},
		Search: SearchConfig{Size: 10, HighlightPreTag: "**", HighlightPostTag: "**"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Elasticsearch.Host == "" {
		cfg.Elasticsearch.Host = "localhost"
	}
	if cfg.Elasticsearch.Port == 0 {
		cfg.Elasticsearch.Port = 9200
	}
	if cfg.Elasticsearch.Username == "" {
		cfg.Elasticsearch.Username = "elastic"
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = "korean_legal_documents"
	}
	if cfg.Search.Size == 0 {
		cfg.Search.Size = 10
	}
	if cfg.Search.HighlightPreTag == "" {
		cfg.Search.HighlightPreTag = "**"
	}
	if cfg.Search.HighlightPostTag == "" {
		cfg.Search.HighlightPostTag = "**"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// applyEnvOverrides lets deployment environments win over the config file.
// Unset and malformed variables leave the current value alone.
func applyEnvOverrides(cfg *AppConfig) {
	setString(&cfg.Elasticsearch.Host, "ELASTICSEARCH_HOST")
	setInt(&cfg.Elasticsearch.Port, "ELASTICSEARCH_PORT")
	setString(&cfg.Elasticsearch.Username, "ELASTICSEARCH_USERNAME")
	setString(&cfg.Elasticsearch.Password, "ELASTICSEARCH_PASSWORD")
	setString(&cfg.Elasticsearch.Index, "ELASTICSEARCH_INDEX")
	setBool(&cfg.Elasticsearch.UseSSL, "ELASTICSEARCH_USE_SSL")
	setBool(&cfg.Elasticsearch.VerifyCerts, "ELASTICSEARCH_VERIFY_CERTS")
	setString(&cfg.PDF.Path, "LAWSEARCH_PDF_PATH")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
