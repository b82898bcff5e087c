package types

// DataConfig describes where and how partition files are stored.
type DataConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json yaml toml"`
}

// LockConfig tunes the mutation-lock protocol.
type LockConfig struct {
	TimeoutMs int64 `mapstructure:"timeoutMs" validate:"omitempty,gt=0"`
	StaleMs   int64 `mapstructure:"staleMs" validate:"omitempty,gt=0"`
}

// AppConfig is the unified application configuration, populated by viper
// from flags, environment and config file.
type AppConfig struct {
	Agent   string     `mapstructure:"agent" validate:"required"`
	Data    DataConfig `mapstructure:"data"`
	Lock    LockConfig `mapstructure:"lock"`
	Verbose bool       `mapstructure:"verbose"`
}
