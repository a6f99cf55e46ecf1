package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hexinli/JakartaBackend/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"fasttrack"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

// SheetsOptions locates the tracked spreadsheet and names the worksheets that
// participate in syncing. SpreadsheetID may be empty: pull-sync treats that as
// a fatal precondition at call time, not at startup.
type SheetsOptions struct {
	SpreadsheetID   string `env:"SHEETS_SPREADSHEET_ID"`
	CredentialsPath string `env:"SHEETS_CREDENTIALS_PATH"`
	// CredentialsJSON takes precedence over CredentialsPath when both are set.
	CredentialsJSON string `env:"SHEETS_CREDENTIALS_JSON"`
	PlanSheetPrefix string `env:"SHEETS_PLAN_PREFIX" envDefault:"Plan MOS"`
	ExcludedSheets  string `env:"SHEETS_EXCLUDED" envDefault:"pm location & contact pic,other"`
	FallbackSheet   string `env:"SHEETS_FALLBACK_SHEET" envDefault:"unknown"`
	HeaderRow       int    `env:"SHEETS_HEADER_ROW" envDefault:"1"`
}

// ExcludedTitles returns the normalized exclusion set as a slice.
func (s *SheetsOptions) ExcludedTitles() []string {
	parts := strings.Split(s.ExcludedSheets, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type CheckinOptions struct {
	Enabled bool          `env:"CHECKIN_API_SWITCH" envDefault:"true"`
	URL     string        `env:"CHECKIN_API_URL"`
	BaseURL string        `env:"CHECKIN_API_BASE_URL"`
	Path    string        `env:"CHECKIN_API_PATH" envDefault:"/api/iro/xls/dn/checkins"`
	HWID    string        `env:"CHECKIN_HW_ID"`
	AppKey  string        `env:"CHECKIN_APP_KEY"`
	Timeout time.Duration `env:"CHECKIN_TIMEOUT" envDefault:"10s"`
}

type Configuration struct {
	Database DatabaseOptions
	Sheets   SheetsOptions
	Checkin  CheckinOptions

	GoAppEnvironment string        `env:"GO_APP_ENV" envDefault:"development"`
	SyncInterval     time.Duration `env:"SYNC_INTERVAL" envDefault:"10m"`
	ArchiveDays      int           `env:"ARCHIVE_THRESHOLD_DAYS" envDefault:"7"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPath          string        `env:"LOG_PATH" envDefault:"./logs/app.log"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.validate(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	return nil
}

func (c *Configuration) validate() error {
	if c.ArchiveDays < 0 {
		return fmt.Errorf("ARCHIVE_THRESHOLD_DAYS must be non-negative, got %d", c.ArchiveDays)
	}
	if c.SyncInterval < time.Minute {
		return fmt.Errorf("SYNC_INTERVAL must be at least 1m, got %s", c.SyncInterval)
	}
	if c.Sheets.HeaderRow < 1 {
		return fmt.Errorf("SHEETS_HEADER_ROW must be >= 1, got %d", c.Sheets.HeaderRow)
	}
	if c.Checkin.URL == "" && c.Checkin.BaseURL != "" {
		path := strings.TrimSpace(c.Checkin.Path)
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		c.Checkin.URL = strings.TrimRight(c.Checkin.BaseURL, "/") + path
	}
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
