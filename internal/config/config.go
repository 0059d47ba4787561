package config

import (
	"flag"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-required:"true"`
	UploadsPath string `yaml:"uploads_path" env:"UPLOADS_PATH" env-required:"true"`
	AppID       uint32 `yaml:"app_id" env:"APP_ID" env-required:"true"`
	Database    `yaml:"database"`
	HTTPServer  `yaml:"http_server"`
	Clients     ClientsConfig `yaml:"clients"`
	Play        Play          `yaml:"play"`
	Importer    Importer      `yaml:"importer"`
}

type Database struct {
	Host       string `yaml:"host" env:"HOST" env-default:"localhost"`
	Port       int    `yaml:"port" env:"PORT" env-required:"true"`
	UsernameDB string `yaml:"username-db" env:"USERNAMEDB" env-required:"true"`
	Password   string `yaml:"password" env:"PASSWORD"`
	DBName     string `yaml:"dbname" env:"DBNAME" env-default:"games"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	Cors        []string      `yaml:"cors" env-default:"http://localhost:3000"`
}

type Client struct {
	Address      string        `yaml:"address" env-required:"true"`
	Timeout      time.Duration `yaml:"timeout" env-required:"true"`
	RetriesCount int           `yaml:"retries_count" env-required:"true"`
}

type ClientsConfig struct {
	SSO Client `yaml:"sso"`
}

// Play настройки страницы запуска игры.
type Play struct {
	SiteName   string `yaml:"site_name" env:"PLAY_SITE_NAME" env-default:"Games"`
	BundleURL  string `yaml:"bundle_url" env:"PLAY_BUNDLE_URL" env-default:"/static/play.js"`
	StaticPath string `yaml:"static_path" env:"PLAY_STATIC_PATH" env-default:"./static"`
}

type Importer struct {
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
	Workers int           `yaml:"workers" env-default:"10"`
}

func MustLoad() *Config {
	configPath := flag.String("config", "", "path to config yaml file")
	flag.Parse()
	if *configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", *configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(*configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s - %s", *configPath, err)
	}

	return &cfg
}

func (cfg *Database) GetDSN() string {
	dsn := mysql.NewConfig()
	dsn.User = cfg.UsernameDB
	dsn.Passwd = cfg.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dsn.DBName = cfg.DBName
	dsn.ParseTime = true

	return dsn.FormatDSN()
}
