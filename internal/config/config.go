package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Backend settings
	APIURL         string
	RequestTimeout time.Duration

	// Display settings
	WeekStartDay  time.Weekday
	DateFormat    string
	MaxCellEvents int

	// UI settings
	Colors      map[string]string
	KeyBindings map[string]string

	// Behavior settings
	AutoRefresh   bool
	RefreshRate   time.Duration
	ConfirmDelete bool

	// CLI defaults
	DefaultAuthor string
	LogFile       string

	// Path is the rc file the settings were read from, if any.
	Path string
}

// Actions that keys can be bound to.
var Actions = []string{
	"quit",
	"help",
	"today",
	"refresh",
	"open_day",
	"next_day",
	"prev_day",
	"next_week",
	"prev_week",
	"next_month",
	"prev_month",
	"next_year",
	"prev_year",
	"goto_date",
}

var (
	setRe   = regexp.MustCompile(`^set\s+(\w+)\s+(.+)$`)
	bindRe  = regexp.MustCompile(`^bind\s+(\S+)\s+(\S+)$`)
	colorRe = regexp.MustCompile(`^color\s+(\w+)\s+(.+)$`)
)

func DefaultConfig() *Config {
	return &Config{
		APIURL:         "http://localhost:5000",
		RequestTimeout: 10 * time.Second,

		WeekStartDay:  time.Sunday,
		DateFormat:    "Jan 2, 2006",
		MaxCellEvents: 6,

		Colors: map[string]string{
			"normal":   "252",
			"today":    "220",
			"selected": "220",
			"sunday":   "203",
			"saturday": "39",
			"event":    "40",
			"header":   "220",
			"help":     "241",
			"message":  "220",
			"error":    "196",
			"border":   "238",
		},

		KeyBindings: DefaultKeyBindings(),

		AutoRefresh:   false,
		RefreshRate:   60 * time.Second,
		ConfirmDelete: true,
	}
}

// DefaultKeyBindings maps keys to actions.
func DefaultKeyBindings() map[string]string {
	return map[string]string{
		"q":      "quit",
		"ctrl+c": "quit",
		"?":      "help",
		"t":      "today",
		"r":      "refresh",
		"enter":  "open_day",
		"l":      "next_day",
		"right":  "next_day",
		"h":      "prev_day",
		"left":   "prev_day",
		"j":      "next_week",
		"down":   "next_week",
		"k":      "prev_week",
		"up":     "prev_week",
		">":      "next_month",
		"<":      "prev_month",
		"]":      "next_year",
		"[":      "prev_year",
		"g":      "goto_date",
	}
}

// LoadConfig builds the configuration from defaults, the environment
// (including a .env file in the working directory) and the first rc file
// found on the search path.
func LoadConfig() (*Config, error) {
	return load("")
}

// LoadConfigFile is LoadConfig with an explicit rc file, which must exist.
func LoadConfigFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return load(path)
}

func load(explicit string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: ignoring .env: %v", err)
	}

	config := DefaultConfig()
	config.applyEnv()

	configPaths := []string{explicit}
	if explicit == "" {
		configPaths = SearchPaths()
	}

	for _, path := range configPaths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); err == nil {
			if err := config.loadFromFile(path); err != nil {
				return nil, fmt.Errorf("error loading config from %s: %w", path, err)
			}
			config.Path = path
			break
		}
	}

	return config, nil
}

// SearchPaths lists rc file locations in priority order.
func SearchPaths() []string {
	home, _ := os.UserHomeDir()

	paths := []string{os.Getenv("DAYBOOK_CONFIG")}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "daybook", "daybookrc"))
	}
	if home != "" {
		paths = append(paths,
			filepath.Join(home, ".config", "daybook", "daybookrc"),
			filepath.Join(home, ".daybookrc"),
		)
	}
	return paths
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("DAYBOOK_API_URL")); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DAYBOOK_AUTHOR")); v != "" {
		c.DefaultAuthor = v
	}
	if v := strings.TrimSpace(os.Getenv("DAYBOOK_LOG_FILE")); v != "" {
		c.LogFile = v
	}
}

// Reload re-reads the rc file the config came from. The receiver is left
// untouched when the file no longer parses.
func (c *Config) Reload() (*Config, error) {
	if c.Path == "" {
		return c, nil
	}
	fresh, err := LoadConfigFile(c.Path)
	if err != nil {
		return c, err
	}
	return fresh, nil
}

func (c *Config) loadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if err := c.parseLine(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}

func (c *Config) parseLine(line string) error {
	line = strings.TrimSpace(line)

	// Skip comments and empty lines
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	if matches := setRe.FindStringSubmatch(line); matches != nil {
		return c.setVariable(matches[1], matches[2])
	}

	if matches := bindRe.FindStringSubmatch(line); matches != nil {
		if !isAction(matches[2]) {
			return fmt.Errorf("unknown action: %s", matches[2])
		}
		c.KeyBindings[matches[1]] = matches[2]
		return nil
	}

	if matches := colorRe.FindStringSubmatch(line); matches != nil {
		c.Colors[matches[1]] = strings.Trim(strings.TrimSpace(matches[2]), `"'`)
		return nil
	}

	return fmt.Errorf("unknown config line: %s", line)
}

func (c *Config) setVariable(name, value string) error {
	// Remove quotes if present
	value = strings.Trim(strings.TrimSpace(value), `"'`)

	switch name {
	case "api_url":
		c.APIURL = value

	case "request_timeout":
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid request_timeout: %s", value)
		}
		c.RequestTimeout = d

	case "week_start_day":
		switch strings.ToLower(value) {
		case "sunday", "sun", "0":
			c.WeekStartDay = time.Sunday
		case "monday", "mon", "1":
			c.WeekStartDay = time.Monday
		default:
			return fmt.Errorf("invalid week_start_day: %s", value)
		}

	case "date_format":
		c.DateFormat = value

	case "max_cell_events":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid max_cell_events: %s", value)
		}
		c.MaxCellEvents = n

	case "auto_refresh":
		c.AutoRefresh = parseBool(value)

	case "refresh_rate":
		d, err := parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid refresh_rate: %s", value)
		}
		c.RefreshRate = d

	case "confirm_delete":
		c.ConfirmDelete = parseBool(value)

	case "default_author":
		c.DefaultAuthor = value

	case "log_file":
		c.LogFile = expandHome(value)

	default:
		return fmt.Errorf("unknown config variable: %s", name)
	}

	return nil
}

// parseDuration accepts Go durations or a bare number of seconds.
func parseDuration(value string) (time.Duration, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func parseBool(value string) bool {
	v := strings.ToLower(value)
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func isAction(name string) bool {
	for _, a := range Actions {
		if a == name {
			return true
		}
	}
	return false
}
