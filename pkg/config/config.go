package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Row store backends.
const (
	StoreBackendPostgres = "postgres"
	StoreBackendWorkbook = "workbook"
)

// Workbook blob sources.
const (
	WorkbookSourceFile  = "file"
	WorkbookSourceMinIO = "minio"
)

// Directory cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Store     StoreConfig
	MinIO     MinIOConfig
	Sheet     SheetConfig
	Directory DirectoryConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig guards the write endpoints with a signed admin token.
type AuthConfig struct {
	Enabled  bool
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StoreConfig selects the tabular backend holding the timetable.
type StoreConfig struct {
	Backend        string
	WorkbookSource string
	WorkbookDir    string
}

// MinIOConfig locates workbooks kept in object storage.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SheetConfig names the data source, its tables and the fixed column layout.
type SheetConfig struct {
	SpreadsheetID  string
	TimetableSheet string
	DataRange      string
	CalendarSheet  string
	CalendarRange  string
	StaffSheet     string
	StaffRange     string
	RoomSheet      string
	RoomRange      string
	TimeZone       string
	Columns        models.ColumnLayout
}

// DirectoryConfig controls caching of the staff and room lists.
type DirectoryConfig struct {
	CacheEnabled bool
	CacheBackend string
	CacheTTL     time.Duration
}

// Validate reports CONFIG_MISSING when the data source cannot be addressed.
func (c SheetConfig) Validate() error {
	switch {
	case strings.TrimSpace(c.SpreadsheetID) == "":
		return appErrors.Clone(appErrors.ErrConfigMissing, "configuration not loaded: SPREADSHEET_ID is empty")
	case strings.TrimSpace(c.TimetableSheet) == "":
		return appErrors.Clone(appErrors.ErrConfigMissing, "configuration not loaded: TIMETABLE_SHEET is empty")
	case strings.TrimSpace(c.DataRange) == "":
		return appErrors.Clone(appErrors.ErrConfigMissing, "configuration not loaded: TIMETABLE_RANGE is empty")
	}
	return nil
}

// Location returns the zone used for time-of-day cells and date arithmetic.
func (c SheetConfig) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		Enabled:  v.GetBool("AUTH_ENABLED"),
		Secret:   v.GetString("AUTH_SECRET"),
		Issuer:   v.GetString("AUTH_ISSUER"),
		TokenTTL: parseDuration(v.GetString("AUTH_TOKEN_TTL"), 12*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Store = StoreConfig{
		Backend:        strings.ToLower(v.GetString("STORE_BACKEND")),
		WorkbookSource: strings.ToLower(v.GetString("WORKBOOK_SOURCE")),
		WorkbookDir:    v.GetString("WORKBOOK_DIR"),
	}

	cfg.MinIO = MinIOConfig{
		Endpoint:  v.GetString("MINIO_ENDPOINT"),
		AccessKey: v.GetString("MINIO_ACCESS_KEY"),
		SecretKey: v.GetString("MINIO_SECRET_KEY"),
		Bucket:    v.GetString("MINIO_BUCKET"),
		UseSSL:    v.GetBool("MINIO_USE_SSL"),
	}

	cfg.Sheet = SheetConfig{
		SpreadsheetID:  v.GetString("SPREADSHEET_ID"),
		TimetableSheet: v.GetString("TIMETABLE_SHEET"),
		DataRange:      v.GetString("TIMETABLE_RANGE"),
		CalendarSheet:  v.GetString("ACADEMIC_CALENDAR_SHEET"),
		CalendarRange:  v.GetString("ACADEMIC_CALENDAR_RANGE"),
		StaffSheet:     v.GetString("STAFF_SHEET"),
		StaffRange:     v.GetString("STAFF_RANGE"),
		RoomSheet:      v.GetString("ROOM_SHEET"),
		RoomRange:      v.GetString("ROOM_RANGE"),
		TimeZone:       v.GetString("SHEET_TIMEZONE"),
		Columns: models.ColumnLayout{
			Period:   v.GetInt("COLUMN_PERIOD"),
			Week:     v.GetInt("COLUMN_WEEK"),
			Module:   v.GetInt("COLUMN_MODULE"),
			Topic:    v.GetInt("COLUMN_TOPIC"),
			Location: v.GetInt("COLUMN_LOCATION"),
			Group:    v.GetInt("COLUMN_GROUP"),
			Hours:    v.GetInt("COLUMN_HOURS"),
			Staff:    v.GetInt("COLUMN_STAFF"),
			Room:     v.GetInt("COLUMN_ROOM"),
			Day:      v.GetInt("COLUMN_DAY"),
			Time:     v.GetInt("COLUMN_TIME"),
			Date:     v.GetInt("COLUMN_DATE"),
			UID:      v.GetInt("COLUMN_UID"),
		},
	}

	cfg.Directory = DirectoryConfig{
		CacheEnabled: v.GetBool("DIRECTORY_CACHE_ENABLED"),
		CacheBackend: strings.ToLower(v.GetString("DIRECTORY_CACHE_BACKEND")),
		CacheTTL:     parseDuration(v.GetString("DIRECTORY_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("AUTH_SECRET", "dev_secret")
	v.SetDefault("AUTH_ISSUER", "timetable-admin-api")
	v.SetDefault("AUTH_TOKEN_TTL", "12h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STORE_BACKEND", StoreBackendWorkbook)
	v.SetDefault("WORKBOOK_SOURCE", WorkbookSourceFile)
	v.SetDefault("WORKBOOK_DIR", "./data")

	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "timetables")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("SPREADSHEET_ID", "")
	v.SetDefault("TIMETABLE_SHEET", "Timetable")
	v.SetDefault("TIMETABLE_RANGE", "A2:Q")
	v.SetDefault("ACADEMIC_CALENDAR_SHEET", "Academic Calendar")
	v.SetDefault("ACADEMIC_CALENDAR_RANGE", "A2:B")
	v.SetDefault("STAFF_SHEET", "HR")
	v.SetDefault("STAFF_RANGE", "A2:A")
	v.SetDefault("ROOM_SHEET", "Facility")
	v.SetDefault("ROOM_RANGE", "A2:A")
	v.SetDefault("SHEET_TIMEZONE", "UTC")

	layout := models.DefaultColumnLayout()
	v.SetDefault("COLUMN_PERIOD", layout.Period)
	v.SetDefault("COLUMN_WEEK", layout.Week)
	v.SetDefault("COLUMN_MODULE", layout.Module)
	v.SetDefault("COLUMN_TOPIC", layout.Topic)
	v.SetDefault("COLUMN_LOCATION", layout.Location)
	v.SetDefault("COLUMN_GROUP", layout.Group)
	v.SetDefault("COLUMN_HOURS", layout.Hours)
	v.SetDefault("COLUMN_STAFF", layout.Staff)
	v.SetDefault("COLUMN_ROOM", layout.Room)
	v.SetDefault("COLUMN_DAY", layout.Day)
	v.SetDefault("COLUMN_TIME", layout.Time)
	v.SetDefault("COLUMN_DATE", layout.Date)
	v.SetDefault("COLUMN_UID", layout.UID)

	v.SetDefault("DIRECTORY_CACHE_ENABLED", false)
	v.SetDefault("DIRECTORY_CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("DIRECTORY_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
