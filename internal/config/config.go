package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config 服务配置，全部来自环境变量（前缀 STORESUB）
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	DBPath     string `envconfig:"DB_PATH" default:"data/storesub.db"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"store-subscription-secret"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// 续费策略：审批通过后从当前时间起延长的天数
	RenewalDays int `envconfig:"RENEWAL_DAYS" default:"30"`

	MonitorInterval  time.Duration `envconfig:"MONITOR_INTERVAL" default:"1m"`
	HeartbeatTimeout time.Duration `envconfig:"HEARTBEAT_TIMEOUT" default:"10m"`

	// Google Sheets 收入流水同步
	SheetSyncEnabled    bool   `envconfig:"SHEET_SYNC_ENABLED" default:"false"`
	SheetCredentialPath string `envconfig:"SHEET_CREDENTIAL_PATH" default:"credentials.json"`
	SpreadsheetID       string `envconfig:"SPREADSHEET_ID"`
	SheetName           string `envconfig:"SHEET_NAME" default:"revenue"`

	// 初始管理员账号
	BootstrapOperator string `envconfig:"BOOTSTRAP_OPERATOR" default:"admin"`
	BootstrapPassword string `envconfig:"BOOTSTRAP_PASSWORD" default:"admin"`
}

// Load 读取配置，.env 文件存在时先加载
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if err := envconfig.Process("STORESUB", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
