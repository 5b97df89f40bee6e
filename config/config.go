package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMODE  string `mapstructure:"SSLMODE"`
		} `mapstructure:"postgres"`
	}
	Services struct {
		Nominatim struct {
			BaseURL   string        `mapstructure:"baseURL"`
			UserAgent string        `mapstructure:"userAgent"`
			Timeout   time.Duration `mapstructure:"timeout"`
		} `mapstructure:"nominatim"`
		OSRM struct {
			BaseURL string        `mapstructure:"baseURL"`
			Profile string        `mapstructure:"profile"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"osrm"`
		Overpass struct {
			BaseURL string        `mapstructure:"baseURL"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"overpass"`
		Yandex struct {
			BaseURL string        `mapstructure:"baseURL"`
			Timeout time.Duration `mapstructure:"timeout"`
		} `mapstructure:"yandex"`
	} `mapstructure:"services"`
	LLM struct {
		Model                 string  `mapstructure:"model"`
		Temperature           float32 `mapstructure:"temperature"`
		ValidationTemperature float32 `mapstructure:"validationTemperature"`
		MaxTokens             int32   `mapstructure:"maxTokens"`
	} `mapstructure:"llm"`
	Discovery struct {
		InitialRadiusMeters int     `mapstructure:"initialRadiusMeters"`
		RadiusStepMeters    int     `mapstructure:"radiusStepMeters"`
		MaxRadiusMeters     int     `mapstructure:"maxRadiusMeters"`
		POILimit            int     `mapstructure:"poiLimit"`
		ContextMaxChars     int     `mapstructure:"contextMaxChars"`
		MaxDays             int     `mapstructure:"maxDays"`
		MaxBudget           float64 `mapstructure:"maxBudget"`
	} `mapstructure:"discovery"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
