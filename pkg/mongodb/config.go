package mongodb

import (
	"gopkg.in/yaml.v3"
	"os"
)

type MongoConfig struct {
	Host       string `yaml:"host"`
	DBName     string `yaml:"dbname"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	AuthSource string `yaml:"authSource"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`
}

// SourceConfig points at one of the two upstream HTTP sources.
type SourceConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type PipelineConfig struct {
	StartPage int `yaml:"startPage"`
	EndPage   int `yaml:"endPage"`
}

type Config struct {
	Mongo    MongoConfig    `yaml:"mongo"`
	API      APIConfig      `yaml:"api"`
	Catalog  SourceConfig   `yaml:"catalog"`
	Wiki     SourceConfig   `yaml:"wiki"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
