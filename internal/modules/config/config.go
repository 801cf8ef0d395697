package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const configFilePathENV = "CONFIG_FILE"

const (
	BrokerAlpaca = "alpaca"
	BrokerSim    = "sim"

	EnvPaper = "paper"
	EnvLive  = "live"

	DataAlpaca = "alpaca"
	DataYahoo  = "yahoo"

	FeedIEX = "iex"
	FeedSIP = "sip"

	NotifierSMS      = "sms"
	NotifierTelegram = "telegram"
	NotifierStdout   = "stdout"

	LedgerSQLite   = "sqlite"
	LedgerPostgres = "postgres"
	LedgerNone     = "none"
)

const (
	paperBaseURL = "https://paper-api.alpaca.markets"
	liveBaseURL  = "https://api.alpaca.markets"
)

// Config: всё, что нужно процессу. Собирается один раз и передаётся явно.
type Config struct {
	Broker    string
	BrokerEnv string

	AlpacaAPIKey    string
	AlpacaSecretKey string
	AlpacaBaseURL   string
	AlpacaDataURL   string
	AlpacaDataFeed  string

	DataSource string
	Timeframe  string
	BarLimit   int

	// Риск
	AllocationFraction  float64 // доля buying power на одну сделку
	MaxTradesPerDay     int
	ProtectiveBand      float64 // SL/TP = ref ∓/± band
	MinTrainingExamples int

	SweepInterval time.Duration
	UniverseFile  string

	Notifier          string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	MyPhoneNumber     string
	TelegramBotToken  string
	TelegramChatID    int64

	JournalDir   string
	LedgerDriver string
	SQLitePath   string
	DatabaseDSN  string

	HTTPAddr    string
	HTTPTimeout time.Duration
	LogLevel    string

	TracingEnabled   bool
	JaegerHost       string
	JaegerPort       int
	JaegerSampleRate float64

	SimBuyingPower float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("BROKER", BrokerAlpaca)
	v.SetDefault("BROKER_ENV", EnvPaper)
	v.SetDefault("ALPACA_API_KEY", "")
	v.SetDefault("ALPACA_SECRET_KEY", "")
	v.SetDefault("ALPACA_BASE_URL", "")
	v.SetDefault("ALPACA_DATA_URL", "https://data.alpaca.markets")
	v.SetDefault("ALPACA_DATA_FEED", "")
	v.SetDefault("DATA_SOURCE", DataAlpaca)
	v.SetDefault("TIMEFRAME", "1m")
	v.SetDefault("BAR_LIMIT", 100)
	v.SetDefault("ALLOCATION_FRACTION", 0.05)
	v.SetDefault("MAX_TRADES_PER_DAY", 3)
	v.SetDefault("SWEEP_INTERVAL", "5m")
	v.SetDefault("MIN_TRAINING_EXAMPLES", 30)
	v.SetDefault("PROTECTIVE_BAND", 0.02)
	v.SetDefault("UNIVERSE_FILE", "sp500_symbols.csv")
	v.SetDefault("NOTIFIER", "")
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_PHONE_NUMBER", "")
	v.SetDefault("MY_PHONE_NUMBER", "")
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_CHAT_ID", 0)
	v.SetDefault("JOURNAL_DIR", ".")
	v.SetDefault("LEDGER_DRIVER", LedgerSQLite)
	v.SetDefault("SQLITE_PATH", "trades.db")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("JAEGER_HOST", "localhost")
	v.SetDefault("JAEGER_PORT", 6831)
	v.SetDefault("JAEGER_SAMPLE_RATE", 1.0)
	v.SetDefault("SIM_BUYING_POWER", 100000.0)
}

// NewConfig: .env (если есть) -> дефолты -> yaml из CONFIG_FILE -> переменные окружения.
func NewConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load: то же без Validate (botctl читает журнал и без ключей брокера).
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString(configFilePathENV); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", file)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Broker:              strings.ToLower(v.GetString("BROKER")),
		BrokerEnv:           strings.ToLower(v.GetString("BROKER_ENV")),
		AlpacaAPIKey:        v.GetString("ALPACA_API_KEY"),
		AlpacaSecretKey:     v.GetString("ALPACA_SECRET_KEY"),
		AlpacaBaseURL:       v.GetString("ALPACA_BASE_URL"),
		AlpacaDataURL:       v.GetString("ALPACA_DATA_URL"),
		AlpacaDataFeed:      strings.ToLower(v.GetString("ALPACA_DATA_FEED")),
		DataSource:          strings.ToLower(v.GetString("DATA_SOURCE")),
		Timeframe:           v.GetString("TIMEFRAME"),
		BarLimit:            v.GetInt("BAR_LIMIT"),
		AllocationFraction:  v.GetFloat64("ALLOCATION_FRACTION"),
		MaxTradesPerDay:     v.GetInt("MAX_TRADES_PER_DAY"),
		ProtectiveBand:      v.GetFloat64("PROTECTIVE_BAND"),
		MinTrainingExamples: v.GetInt("MIN_TRAINING_EXAMPLES"),
		SweepInterval:       v.GetDuration("SWEEP_INTERVAL"),
		UniverseFile:        v.GetString("UNIVERSE_FILE"),
		Notifier:            strings.ToLower(v.GetString("NOTIFIER")),
		TwilioAccountSID:    v.GetString("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     v.GetString("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:   v.GetString("TWILIO_PHONE_NUMBER"),
		MyPhoneNumber:       v.GetString("MY_PHONE_NUMBER"),
		TelegramBotToken:    v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:      v.GetInt64("TELEGRAM_CHAT_ID"),
		JournalDir:          v.GetString("JOURNAL_DIR"),
		LedgerDriver:        strings.ToLower(v.GetString("LEDGER_DRIVER")),
		SQLitePath:          v.GetString("SQLITE_PATH"),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		HTTPAddr:            v.GetString("HTTP_ADDR"),
		HTTPTimeout:         v.GetDuration("HTTP_TIMEOUT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		TracingEnabled:      v.GetBool("TRACING_ENABLED"),
		JaegerHost:          v.GetString("JAEGER_HOST"),
		JaegerPort:          v.GetInt("JAEGER_PORT"),
		JaegerSampleRate:    v.GetFloat64("JAEGER_SAMPLE_RATE"),
		SimBuyingPower:      v.GetFloat64("SIM_BUYING_POWER"),
	}

	if cfg.AlpacaBaseURL == "" {
		cfg.AlpacaBaseURL = paperBaseURL
		if cfg.BrokerEnv == EnvLive {
			cfg.AlpacaBaseURL = liveBaseURL
		}
	}
	if cfg.Notifier == "" {
		cfg.Notifier = NotifierStdout
		if cfg.hasTwilio() {
			cfg.Notifier = NotifierSMS
		}
	}
	return cfg
}

func (c *Config) hasTwilio() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" &&
		c.TwilioPhoneNumber != "" && c.MyPhoneNumber != ""
}

func (c *Config) Validate() error {
	if c.AllocationFraction <= 0 || c.AllocationFraction > 1 {
		return errors.Errorf("ALLOCATION_FRACTION must be in (0,1], got %v", c.AllocationFraction)
	}
	if c.MaxTradesPerDay < 1 {
		return errors.Errorf("MAX_TRADES_PER_DAY must be >= 1, got %d", c.MaxTradesPerDay)
	}
	if c.SweepInterval <= 0 {
		return errors.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.ProtectiveBand <= 0 || c.ProtectiveBand >= 1 {
		return errors.Errorf("PROTECTIVE_BAND must be in (0,1), got %v", c.ProtectiveBand)
	}
	if c.BarLimit < 1 {
		return errors.Errorf("BAR_LIMIT must be >= 1, got %d", c.BarLimit)
	}

	switch c.Broker {
	case BrokerAlpaca:
		if c.AlpacaAPIKey == "" || c.AlpacaSecretKey == "" {
			return errors.New("ALPACA_API_KEY and ALPACA_SECRET_KEY are required for the alpaca broker")
		}
	case BrokerSim:
	default:
		return errors.Errorf("unknown BROKER %q", c.Broker)
	}

	switch c.BrokerEnv {
	case EnvPaper, EnvLive:
	default:
		return errors.Errorf("unknown BROKER_ENV %q", c.BrokerEnv)
	}

	switch c.DataSource {
	case DataAlpaca:
		if c.AlpacaAPIKey == "" || c.AlpacaSecretKey == "" {
			return errors.New("alpaca market data requires ALPACA_API_KEY and ALPACA_SECRET_KEY")
		}
	case DataYahoo:
	default:
		return errors.Errorf("unknown DATA_SOURCE %q", c.DataSource)
	}

	switch c.AlpacaDataFeed {
	case "", FeedIEX, FeedSIP:
	default:
		return errors.Errorf("unknown ALPACA_DATA_FEED %q", c.AlpacaDataFeed)
	}

	switch c.Notifier {
	case NotifierSMS:
		if !c.hasTwilio() {
			return errors.New("sms notifier requires TWILIO_* and MY_PHONE_NUMBER")
		}
	case NotifierTelegram:
		if c.TelegramBotToken == "" || c.TelegramChatID == 0 {
			return errors.New("telegram notifier requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		}
	case NotifierStdout:
	default:
		return errors.Errorf("unknown NOTIFIER %q", c.Notifier)
	}

	switch c.LedgerDriver {
	case LedgerSQLite, LedgerNone:
	case LedgerPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("postgres ledger requires DATABASE_DSN")
		}
	default:
		return errors.Errorf("unknown LEDGER_DRIVER %q", c.LedgerDriver)
	}
	return nil
}
