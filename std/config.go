package std

// Config 表示应用基础配置
type Config struct {
	Mode     string      `mapstructure:"mode"`
	Database *DataSource `mapstructure:"database"`
}

// DataSource 表示数据源配置
type DataSource struct {
	Dialect  string `mapstructure:"dialect"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// IsDebug 是否调试模式
func (my *Config) IsDebug() bool {
	return my.Mode == "dev"
}
