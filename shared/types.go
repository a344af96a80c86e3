package shared

type ServerConfig struct {
	Sqlite      SqliteConfig      `mapstructure:"sqlite" validate:"required"`
	ContactsPro ContactsProConfig `mapstructure:"contactspro" validate:"required"`
	Google      GoogleConfig      `mapstructure:"google"`
}

type SqliteConfig struct {
	// PassPhrase switches the store to the encrypted sqlcipher driver when set
	PassPhrase string `mapstructure:"passPhrase"`
}

type ContactsProConfig struct {
	Cron     CronConfig     `mapstructure:"cron" validate:"required"`
	Listener ListenerConfig `mapstructure:"listener" validate:"required"`
	Cors     CorsConfig     `mapstructure:"cors"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type CronConfig struct {
	TimeZone       string `mapstructure:"timeZone" validate:"required"`
	RepairSchedule string `mapstructure:"repairSchedule" validate:"required"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type IngestConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"omitempty,min=1,max=32"`
}

type StorageConfig struct {
	Bucket                    string `mapstructure:"bucket" validate:"required_with=EnableSqliteBackupAndSync"`
	Prefix                    string `mapstructure:"prefix" validate:"required_with=EnableSqliteBackupAndSync"`
	SqliteBackupSchedule      string `mapstructure:"sqliteBackupSchedule" validate:"required_with=EnableSqliteBackupAndSync"`
	EnableSqliteBackupAndSync bool   `mapstructure:"enableSqliteBackupAndSync"`
}
