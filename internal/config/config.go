package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting of the service.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	AI     AIConfig
	Auth   AuthConfig
	Store  StoreConfig
	Files  FilesConfig
	Search SearchConfig
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	files, err := loadFilesConfig()
	if err != nil {
		return nil, err
	}

	search, err := loadSearchConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Log:    LogConfig{Mode: getEnvOrDefault("LOG_MODE", "development")},
		AI:     ai,
		Auth:   auth,
		Store:  store,
		Files:  files,
		Search: search,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// LogConfig selects the zap encoder preset.
type LogConfig struct {
	Mode string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	origins := splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"))

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are accepted as-is.
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// AIConfig holds the generation service credentials and model defaults.
type AIConfig struct {
	APIKey            string
	AccessKey         string
	SecretKey         string
	Model             string
	ChatModel         string
	BaseURL           string
	Region            string
	Temperature       *float64
	TopP              *float64
	MaxTokens         *int
	GenerationTimeout time.Duration
}

// Enabled reports whether a credential and a default model are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// ChatModelID returns the model used for conversational calls.
func (c AIConfig) ChatModelID() string {
	if c.ChatModel != "" {
		return c.ChatModel
	}
	return c.Model
}

// NewChatModel creates a chat model instance for modelID using the configured credentials.
func (c AIConfig) NewChatModel(ctx context.Context, modelID string) (model.BaseChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}
	if modelID == "" {
		modelID = c.Model
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       modelID,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseDurationEnv("AI_GENERATION_TIMEOUT", 60*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:            strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:         strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:         strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:             strings.TrimSpace(os.Getenv("ARK_MODEL")),
		ChatModel:         strings.TrimSpace(os.Getenv("ARK_CHAT_MODEL")),
		BaseURL:           getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:            getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:       temperature,
		TopP:              topP,
		MaxTokens:         maxTokens,
		GenerationTimeout: timeout,
	}, nil
}

// AuthConfig controls bearer-token verification and per-user throttling.
type AuthConfig struct {
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Required reports whether requests must carry a signed token.
func (c AuthConfig) Required() bool {
	return c.JWTSecret != ""
}

func loadAuthConfig() (AuthConfig, error) {
	rps := 0.5
	if override, err := parseOptionalFloatEnv("RATE_LIMIT_RPS"); err != nil {
		return AuthConfig{}, err
	} else if override != nil {
		rps = *override
	}

	burst := 5
	if override, err := parseOptionalIntEnv("RATE_LIMIT_BURST"); err != nil {
		return AuthConfig{}, err
	} else if override != nil {
		if *override < 1 {
			burst = 1
		} else {
			burst = *override
		}
	}

	return AuthConfig{
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}, nil
}

// StoreConfig selects the conversation/recommendation/CV backend: Redis when RedisAddr is set,
// otherwise a bbolt file when BoltPath is set, otherwise memory.
type StoreConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	BoltPath      string
}

// UseRedis reports whether a Redis address was configured.
func (c StoreConfig) UseRedis() bool {
	return c.RedisAddr != ""
}

// UseBolt reports whether documents go to a local bbolt file.
func (c StoreConfig) UseBolt() bool {
	return !c.UseRedis() && c.BoltPath != ""
}

func loadStoreConfig() (StoreConfig, error) {
	db := 0
	if override, err := parseOptionalIntEnv("REDIS_DB"); err != nil {
		return StoreConfig{}, err
	} else if override != nil {
		db = *override
	}

	return StoreConfig{
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       db,
		BoltPath:      strings.TrimSpace(os.Getenv("BOLT_PATH")),
	}, nil
}

// FilesConfig bounds attachment resolution.
type FilesConfig struct {
	FetchTimeout time.Duration
	MaxBytes     int64
}

func loadFilesConfig() (FilesConfig, error) {
	timeout, err := parseDurationEnv("FILE_FETCH_TIMEOUT", 15*time.Second)
	if err != nil {
		return FilesConfig{}, err
	}

	maxBytes := int64(10 << 20)
	if override, err := parseOptionalIntEnv("FILE_MAX_BYTES"); err != nil {
		return FilesConfig{}, err
	} else if override != nil && *override > 0 {
		maxBytes = int64(*override)
	}

	return FilesConfig{FetchTimeout: timeout, MaxBytes: maxBytes}, nil
}

// SearchConfig points chat search augmentation at a SearXNG instance. Search is off when URL
// is empty.
type SearchConfig struct {
	URL        string
	Timeout    time.Duration
	MaxResults int
}

// Enabled reports whether a search backend was configured.
func (c SearchConfig) Enabled() bool {
	return c.URL != ""
}

func loadSearchConfig() (SearchConfig, error) {
	timeout, err := parseDurationEnv("SEARCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return SearchConfig{}, err
	}

	maxResults := 5
	if override, err := parseOptionalIntEnv("SEARCH_MAX_RESULTS"); err != nil {
		return SearchConfig{}, err
	} else if override != nil && *override > 0 {
		maxResults = *override
	}

	return SearchConfig{
		URL:        strings.TrimSpace(os.Getenv("SEARCH_URL")),
		Timeout:    timeout,
		MaxResults: maxResults,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	// Plain integers are read as seconds.
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
		}
		return time.Duration(secs) * time.Second, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
