package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server Server `json:"server" yaml:"server" mapstructure:"server"`
	Sheets Sheets `json:"sheets" yaml:"sheets" mapstructure:"sheets"`
	TMDB   TMDB   `json:"tmdb" yaml:"tmdb" mapstructure:"tmdb"`
	Oracle Oracle `json:"oracle" yaml:"oracle" mapstructure:"oracle"`
}

type Server struct {
	Port int `json:"port" yaml:"port" mapstructure:"port"`
}

// Sheets configures access to the backing spreadsheet. Exactly one of
// CredentialsBase64 or CredentialsFile is used; the base64 variant wins when
// set so packaged deployments can carry credentials in the environment.
type Sheets struct {
	SpreadsheetID     string `json:"spreadsheetId" yaml:"spreadsheetId" mapstructure:"spreadsheetId"`
	CredentialsBase64 string `json:"credentialsBase64" yaml:"credentialsBase64" mapstructure:"credentialsBase64"`
	CredentialsFile   string `json:"credentialsFile" yaml:"credentialsFile" mapstructure:"credentialsFile"`
}

type TMDB struct {
	Scheme string `json:"scheme" yaml:"scheme" mapstructure:"scheme"`
	Host   string `json:"host" yaml:"host" mapstructure:"host"`
	APIKey string `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
}

// Oracle configures the OpenAI-compatible completion service used to
// synthesize status fields.
type Oracle struct {
	BaseURL string `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl"`
	APIKey  string `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
	Model   string `json:"model" yaml:"model" mapstructure:"model"`
}

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	return c, err
}
