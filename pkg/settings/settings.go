package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Settings holds the application-level configuration consumed by the
// configuration registry. All values come from environment variables
// (optionally seeded from a .env file, see LoadEnvFile) and are read
// exactly once during registry load.
type Settings struct {
	// Active connection selection. Must match a Provider node in the
	// template document and a registered provider in pkg/database.
	ActiveConnection string

	// Connection-string building blocks. Empty values are skipped during
	// placeholder substitution.
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabaseName     string
	DatabasePassword string
	DatabaseFilePath string

	// Configuration document locations.
	ConfigFolder string
	TemplateFile string
	MappingFile  string

	// How long a connection acquire may block before the pool is treated
	// as exhausted and the backup connection takes over.
	ConnAcquireTimeout time.Duration

	// LintTemplates enables the optional load-time SQL syntax check.
	LintTemplates bool

	// DetailLogPath is the rotating file that receives the detailed log.
	DetailLogPath string
}

// MissingSettingError reports a required environment key that was unset.
type MissingSettingError struct {
	Key string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("required setting %s is not set", e.Key)
}

func (e *MissingSettingError) Code() string {
	return "SETTINGS_MISSING"
}

// Load reads all settings from the environment. Required keys:
// SQLBRIDGE_ACTIVE_CONNECTION, SQLBRIDGE_TEMPLATE_FILE, SQLBRIDGE_MAPPING_FILE.
// Everything else has a sensible default or may stay empty.
func Load() (*Settings, error) {
	s := &Settings{
		ActiveConnection: os.Getenv("SQLBRIDGE_ACTIVE_CONNECTION"),
		DatabaseHost:     os.Getenv("SQLBRIDGE_DB_HOST"),
		DatabasePort:     os.Getenv("SQLBRIDGE_DB_PORT"),
		DatabaseUser:     os.Getenv("SQLBRIDGE_DB_USER"),
		DatabaseName:     os.Getenv("SQLBRIDGE_DB_NAME"),
		DatabasePassword: os.Getenv("SQLBRIDGE_DB_PASSWORD"),
		DatabaseFilePath: os.Getenv("SQLBRIDGE_DB_FILE"),
		ConfigFolder:     os.Getenv("SQLBRIDGE_CONFIG_FOLDER"),
		TemplateFile:     os.Getenv("SQLBRIDGE_TEMPLATE_FILE"),
		MappingFile:      os.Getenv("SQLBRIDGE_MAPPING_FILE"),
		DetailLogPath:    os.Getenv("SQLBRIDGE_DETAIL_LOG"),
	}

	for key, val := range map[string]string{
		"SQLBRIDGE_ACTIVE_CONNECTION": s.ActiveConnection,
		"SQLBRIDGE_TEMPLATE_FILE":     s.TemplateFile,
		"SQLBRIDGE_MAPPING_FILE":      s.MappingFile,
	} {
		if val == "" {
			return nil, &MissingSettingError{Key: key}
		}
	}

	if s.ConfigFolder == "" {
		s.ConfigFolder = "."
	}

	s.ConnAcquireTimeout = 2 * time.Second
	if raw := os.Getenv("SQLBRIDGE_CONN_ACQUIRE_TIMEOUT_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid SQLBRIDGE_CONN_ACQUIRE_TIMEOUT_MS %q", raw)
		}
		s.ConnAcquireTimeout = time.Duration(ms) * time.Millisecond
	}

	if raw := os.Getenv("SQLBRIDGE_LINT_TEMPLATES"); raw != "" {
		lint, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SQLBRIDGE_LINT_TEMPLATES %q", raw)
		}
		s.LintTemplates = lint
	}

	return s, nil
}

// TemplatePath returns the full path of the template document.
func (s *Settings) TemplatePath() string {
	return filepath.Join(s.ConfigFolder, s.TemplateFile)
}

// MappingPath returns the full path of the mapping document.
func (s *Settings) MappingPath() string {
	return filepath.Join(s.ConfigFolder, s.MappingFile)
}
