package main

import (
	"errors"
	"net/url"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/viper"
)

type config struct {
	Server        *configServer        `mapstructure:"server"`
	Db            *configDb            `mapstructure:"database"`
	Sheet         *configSheet         `mapstructure:"sheet"`
	LinkedIn      *configLinkedIn      `mapstructure:"linkedin"`
	Scheduler     *configScheduler     `mapstructure:"scheduler"`
	Media         *configMedia         `mapstructure:"media"`
	Notifications *configNotifications `mapstructure:"notifications"`
	Hooks         *configHooks         `mapstructure:"hooks"`
	User          *configUser          `mapstructure:"user"`
	Pprof         *configPprof         `mapstructure:"pprof"`
	Debug         bool                 `mapstructure:"debug"`
	initialized   bool
}

type configServer struct {
	Logging       bool   `mapstructure:"logging"`
	LogFile       string `mapstructure:"logFile"`
	Port          int    `mapstructure:"port"`
	PublicAddress string `mapstructure:"publicAddress"`
}

type configDb struct {
	File     string `mapstructure:"file"`
	DumpFile string `mapstructure:"dumpFile"`
	Debug    bool   `mapstructure:"debug"`
}

type configSheet struct {
	SpreadsheetId      string `mapstructure:"spreadsheetId"`
	SheetName          string `mapstructure:"sheetName"`
	ServiceAccountFile string `mapstructure:"serviceAccountFile"`
	Endpoint           string `mapstructure:"endpoint"`
}

type configLinkedIn struct {
	AccessToken   string `mapstructure:"accessToken"`
	PersonURN     string `mapstructure:"personUrn"`
	ApiBase       string `mapstructure:"apiBase"`
	MaxMediaSize  string `mapstructure:"maxMediaSize"`
	maxMediaBytes uint64
}

type configScheduler struct {
	Enabled  bool   `mapstructure:"enabled"`
	Interval int    `mapstructure:"interval"`
	TimeZone string `mapstructure:"timeZone"`
}

type configMedia struct {
	Path string `mapstructure:"path"`
}

type configNotifications struct {
	Ntfy     *configNtfy     `mapstructure:"ntfy"`
	Telegram *configTelegram `mapstructure:"telegram"`
	Email    *configEmail    `mapstructure:"email"`
}

type configNtfy struct {
	Enabled bool   `mapstructure:"enabled"`
	Topic   string `mapstructure:"topic"`
	Server  string `mapstructure:"server"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
}

type configTelegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	ChatID   string `mapstructure:"chatId"`
	BotToken string `mapstructure:"botToken"`
}

type configEmail struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtpHost"`
	SMTPPort     int    `mapstructure:"smtpPort"`
	SMTPUser     string `mapstructure:"smtpUser"`
	SMTPPassword string `mapstructure:"smtpPassword"`
	From         string `mapstructure:"from"`
	To           string `mapstructure:"to"`
}

type configHooks struct {
	Shell    string   `mapstructure:"shell"`
	Hourly   []string `mapstructure:"hourly"`
	PreStart []string `mapstructure:"prestart"`
	// Can use template
	PostPublish []string `mapstructure:"postpublish"`
}

type configUser struct {
	Nick     string `mapstructure:"nick"`
	Password string `mapstructure:"password"`
}

type configPprof struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

func (a *autoPost) loadConfigFile(file string) error {
	// Use viper to load the config file
	v := viper.New()
	if file != "" {
		// Use config file from the flag
		v.SetConfigFile(file)
	} else {
		// Search in default locations
		v.SetConfigName("config")
		v.AddConfigPath("./config/")
	}
	// Read config
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	// Unmarshal config
	a.cfg = createDefaultConfig()
	return v.Unmarshal(a.cfg)
}

func (a *autoPost) initConfig() error {
	if a.cfg == nil {
		a.cfg = createDefaultConfig()
	}
	if a.cfg.initialized {
		return nil
	}
	// Check server address
	if a.cfg.Server.PublicAddress == "" {
		return errors.New("no public address configured")
	}
	if _, err := url.Parse(a.cfg.Server.PublicAddress); err != nil {
		return errors.New("invalid public address: " + err.Error())
	}
	// Check database
	if a.cfg.Db.File == "" {
		return errors.New("no database file configured")
	}
	// Check sheet config
	if sheet := a.cfg.Sheet; sheet != nil && sheet.SpreadsheetId != "" {
		if sheet.ServiceAccountFile == "" {
			return errors.New("sheet configured without service account file")
		}
		if sheet.SheetName == "" {
			sheet.SheetName = "Sheet1"
		}
	}
	// Check LinkedIn config
	if li := a.cfg.LinkedIn; li != nil {
		if li.AccessToken != "" && li.PersonURN == "" {
			return errors.New("linkedin access token configured without person URN")
		}
		if li.MaxMediaSize != "" {
			var size datasize.ByteSize
			if err := size.UnmarshalText([]byte(li.MaxMediaSize)); err != nil {
				return errors.New("invalid linkedin max media size: " + err.Error())
			}
			li.maxMediaBytes = size.Bytes()
		}
	}
	// Check scheduler interval, the default applies when it is left out
	if a.cfg.Scheduler.Interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}
	// Resolve the schedule time zone
	if tz := a.cfg.Scheduler.TimeZone; tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return errors.New("invalid scheduler time zone: " + err.Error())
		}
		a.loc = loc
	} else {
		a.loc = defaultScheduleLocation
	}
	// Log success
	a.cfg.initialized = true
	a.info("Initialized configuration")
	return nil
}

func createDefaultConfig() *config {
	return &config{
		Server: &configServer{
			Port:          8080,
			PublicAddress: "http://localhost:8080",
			LogFile:       "data/access.log",
		},
		Db: &configDb{
			File: "data/db.sqlite",
		},
		Sheet:    &configSheet{},
		LinkedIn: &configLinkedIn{},
		Scheduler: &configScheduler{
			Enabled:  true,
			Interval: 300,
		},
		Media: &configMedia{
			Path: "data/media",
		},
		Notifications: &configNotifications{},
		Hooks: &configHooks{
			Shell: "/bin/bash",
		},
		User: &configUser{
			Nick:     "admin",
			Password: "secret",
		},
	}
}
