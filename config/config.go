package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	API     APIConfig     `yaml:"api"`
	Chains  ChainsConfig  `yaml:"chains"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`

	// Secrets — solo desde el entorno, nunca desde YAML.
	Secrets Secrets `yaml:"-"`
}

// BotConfig controla el comportamiento del bot.
type BotConfig struct {
	PollIntervalSeconds    int     `yaml:"poll_interval_seconds"`
	DepositIntervalSeconds int     `yaml:"deposit_interval_seconds"`
	MinBetUSDC             float64 `yaml:"min_bet_usdc"`
	MaxBetUSDC             float64 `yaml:"max_bet_usdc"`
	SignupURL              string  `yaml:"signup_url"` // incluido en las respuestas a usuarios no registrados
}

// APIConfig contiene los base URLs de las APIs externas.
type APIConfig struct {
	CLOBBase  string `yaml:"clob_base"`
	GammaBase string `yaml:"gamma_base"`
	LiFiBase  string `yaml:"lifi_base"`
	XBase     string `yaml:"x_base"`
}

// ChainConfig describe una chain soportada para balances USDC.
type ChainConfig struct {
	ChainID      int64  `yaml:"chain_id"`
	Name         string `yaml:"name"`
	RPCURL       string `yaml:"rpc_url"`
	USDCAddress  string `yaml:"usdc_address"`
	USDCDecimals int    `yaml:"usdc_decimals"`
}

// ChainsConfig es el conjunto de chains y la chain destino donde se tradea.
type ChainsConfig struct {
	DestinationChainID int64         `yaml:"destination_chain_id"`
	Supported          []ChainConfig `yaml:"supported"`
}

// StorageConfig controla dónde se persiste el ledger.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Secrets son las credenciales que solo viven en el entorno.
type Secrets struct {
	XAPIKey            string
	XAPISecret         string
	XAccessToken       string
	XAccessTokenSecret string
	XBotUserID         string
	WalletPrivateKey   string // vacío → trade executor en modo mock
}

// requiredEnv son las variables sin las cuales el proceso no arranca.
var requiredEnv = []string{
	"X_API_KEY",
	"X_API_SECRET",
	"X_ACCESS_TOKEN",
	"X_ACCESS_TOKEN_SECRET",
	"X_BOT_USER_ID",
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Falla listando todas las variables de entorno requeridas que falten.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := loadSecrets(&cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if cfg.DestinationChain() == nil {
		return nil, fmt.Errorf("config.Load: destination_chain_id %d is not in chains.supported",
			cfg.Chains.DestinationChainID)
	}

	return &cfg, nil
}

// PollInterval devuelve el intervalo de polling de menciones como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Bot.PollIntervalSeconds) * time.Second
}

// DepositInterval devuelve el intervalo del watcher de depósitos.
func (c *Config) DepositInterval() time.Duration {
	return time.Duration(c.Bot.DepositIntervalSeconds) * time.Second
}

// DestinationChain devuelve la config de la chain destino, o nil si no existe.
func (c *Config) DestinationChain() *ChainConfig {
	for i := range c.Chains.Supported {
		if c.Chains.Supported[i].ChainID == c.Chains.DestinationChainID {
			return &c.Chains.Supported[i]
		}
	}
	return nil
}

// loadSecrets lee las credenciales del entorno, validando las requeridas.
func loadSecrets(cfg *Config) error {
	var missing []string
	for _, key := range requiredEnv {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config.Load: missing required environment variables: %s",
			strings.Join(missing, ", "))
	}

	cfg.Secrets = Secrets{
		XAPIKey:            os.Getenv("X_API_KEY"),
		XAPISecret:         os.Getenv("X_API_SECRET"),
		XAccessToken:       os.Getenv("X_ACCESS_TOKEN"),
		XAccessTokenSecret: os.Getenv("X_ACCESS_TOKEN_SECRET"),
		XBotUserID:         os.Getenv("X_BOT_USER_ID"),
		WalletPrivateKey:   strings.TrimPrefix(os.Getenv("PLATFORM_WALLET_PRIVATE_KEY"), "0x"),
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("LEDGER_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Bot.PollIntervalSeconds <= 0 {
		cfg.Bot.PollIntervalSeconds = 30
	}
	if cfg.Bot.DepositIntervalSeconds <= 0 {
		cfg.Bot.DepositIntervalSeconds = 300
	}
	if cfg.Bot.MinBetUSDC <= 0 {
		cfg.Bot.MinBetUSDC = 1
	}
	if cfg.Bot.MaxBetUSDC <= 0 {
		cfg.Bot.MaxBetUSDC = 1000
	}
	if cfg.Bot.SignupURL == "" {
		cfg.Bot.SignupURL = "https://xmarket.xyz"
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.LiFiBase == "" {
		cfg.API.LiFiBase = "https://li.quest/v1"
	}
	if cfg.API.XBase == "" {
		cfg.API.XBase = "https://api.twitter.com"
	}
	if len(cfg.Chains.Supported) == 0 {
		cfg.Chains.Supported = defaultChains()
	}
	if cfg.Chains.DestinationChainID == 0 {
		cfg.Chains.DestinationChainID = 137
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "xmarket.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// defaultChains son las chains mainnet con USDC nativo o bridgeado.
// Polygon usa USDC.e — es el collateral que acepta el exchange de Polymarket.
func defaultChains() []ChainConfig {
	return []ChainConfig{
		{ChainID: 1, Name: "Ethereum", RPCURL: "https://eth.llamarpc.com",
			USDCAddress: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", USDCDecimals: 6},
		{ChainID: 137, Name: "Polygon", RPCURL: "https://polygon-rpc.com",
			USDCAddress: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", USDCDecimals: 6},
		{ChainID: 42161, Name: "Arbitrum One", RPCURL: "https://arb1.arbitrum.io/rpc",
			USDCAddress: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", USDCDecimals: 6},
		{ChainID: 8453, Name: "Base", RPCURL: "https://mainnet.base.org",
			USDCAddress: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", USDCDecimals: 6},
		{ChainID: 10, Name: "Optimism", RPCURL: "https://mainnet.optimism.io",
			USDCAddress: "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85", USDCDecimals: 6},
	}
}
