package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"github.com/harrison-roh/plant-disease-inference/inferapp/constants"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// ModelConfig 모델 설정
type ModelConfig struct {
	Path        string `yaml:"path"`
	Backend     string `yaml:"backend"`
	InputName   string `yaml:"inputName"`
	OutputName  string `yaml:"outputName"`
	LibraryPath string `yaml:"libraryPath"`
}

// JournalConfig 추론 기록 저장 설정, DSN이 비어 있으면 사용하지 않음
type JournalConfig struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	Table       string `yaml:"table"`
	SamplesPath string `yaml:"samplesPath"`
}

// Config 서비스 설정정보
type Config struct {
	Port           string        `yaml:"port"`
	GinMode        string        `yaml:"ginMode"`
	Model          ModelConfig   `yaml:"model"`
	ClassNamesPath string        `yaml:"classNamesPath"`
	MaxUploadBytes int64         `yaml:"maxUploadBytes"`
	InferTimeout   time.Duration `yaml:"inferenceTimeout"`
	Journal        JournalConfig `yaml:"journal"`
}

// Default 기본 설정
func Default() *Config {
	return &Config{
		Port: constants.DefaultPort,
		Model: ModelConfig{
			Path: constants.DefaultModelPath,
		},
		ClassNamesPath: constants.DefaultClassNamesPath,
		MaxUploadBytes: constants.DefaultMaxUploadBytes,
		InferTimeout:   time.Duration(constants.DefaultInferenceTimeout) * time.Second,
		Journal: JournalConfig{
			Table: constants.DefaultJournalTable,
		},
	}
}

// Load 기본값, 설정 파일, .env, 환경변수 순으로 적용
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Fail to read config: %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("Fail to parse config: %s: %w", path, err)
		}
	}

	// .env 파일이 없으면 무시
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("Fail to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.Model.Path, "MODEL_PATH")
	setString(&c.Model.Backend, "MODEL_BACKEND")
	setString(&c.Model.LibraryPath, "ONNX_LIBRARY_PATH")
	setString(&c.ClassNamesPath, "CLASS_NAMES_PATH")
	setString(&c.Journal.Driver, "JOURNAL_DRIVER")
	setString(&c.Journal.DSN, "JOURNAL_DSN")
	setString(&c.Journal.SamplesPath, "SAMPLES_PATH")

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("Invalid MAX_UPLOAD_BYTES: %s", v)
		}
		c.MaxUploadBytes = n
	}

	if v := os.Getenv("INFERENCE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("Invalid INFERENCE_TIMEOUT: %s", v)
		}
		c.InferTimeout = d
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate 설정값 검증
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("Empty port")
	}

	switch c.Model.Backend {
	case "", constants.BackendTensorflow, constants.BackendONNX:
	default:
		return fmt.Errorf("Unknown model backend: %s", c.Model.Backend)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("Invalid max upload bytes: %d", c.MaxUploadBytes)
	}
	if c.InferTimeout <= 0 {
		return fmt.Errorf("Invalid inference timeout: %s", c.InferTimeout)
	}

	if c.Journal.DSN != "" {
		switch c.Journal.Driver {
		case "mysql", "pgx":
		case "":
			return errors.New("Journal driver is required with journal dsn")
		default:
			return fmt.Errorf("Unknown journal driver: %s", c.Journal.Driver)
		}
		if c.Journal.Table == "" {
			return errors.New("Empty journal table")
		}
	}

	return nil
}

// JournalEnabled 추론 기록 저장 여부
func (c *Config) JournalEnabled() bool {
	return c.Journal.DSN != ""
}
