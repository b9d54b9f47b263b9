package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"production"`
	PGSQL      PGSQL      `yaml:"pgsql" env-required:"true"`
	Redis      Redis      `yaml:"redis"`
	HTTPServer HTTPServer `yaml:"http_server" env-required:"true"`
	JWTSecret  string     `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"super_secret_key"`
	Storage    Storage    `yaml:"storage"`
	Media      Media      `yaml:"media"`
	Chunk      Chunk      `yaml:"chunk"`
	Watermark  Watermark  `yaml:"watermark"`
	CDN        CDN        `yaml:"cdn"`
}

type HTTPServer struct {
	Address string `yaml:"address" env-default:"localhost:8080"`
}

type PGSQL struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-default:"postgres"`
	Password string `yaml:"password" env-default:"password"`
	DBName   string `yaml:"dbname" env-default:"media_db"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

type Redis struct {
	Address  string `yaml:"address" env-default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" env-default:"0"`
}

// Storage selects and configures the storage backend. Driver is either
// "local" or "minio"; only the matching sub-section is used.
type Storage struct {
	Driver string `yaml:"driver" env-default:"local"`
	Local  Local  `yaml:"local"`
	MinIO  MinIO  `yaml:"minio"`
}

type Local struct {
	Root    string `yaml:"root" env-default:"./storage"`
	BaseURL string `yaml:"base_url" env-default:"/storage"`
}

type MinIO struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	UseSSL          bool   `yaml:"use_ssl"`
}

type Media struct {
	// AllowedMimeTypes is the comma-separated extension allow-list,
	// matched case-insensitively against the upload's extension.
	AllowedMimeTypes string `yaml:"allowed_mime_types" env-default:"jpg,jpeg,png,gif,webp,mp4,mov,pdf,txt,docx,zip,mp3,bmp,csv,xls,xlsx,ppt,pptx,avi"`
	// Sizes maps a size name to a "WxH" spec, e.g. thumb: 150x150.
	Sizes map[string]string `yaml:"sizes"`
	// PostMaxSize and UploadMaxSize are byte-limit expressions with a
	// unit suffix among b/k/m/g/t/p/e/z/y. The effective upload limit
	// is the smaller of the two; a zero upload limit means unlimited.
	PostMaxSize   string `yaml:"post_max_size" env-default:"8M"`
	UploadMaxSize string `yaml:"upload_max_size" env-default:"2M"`
	DefaultImage  string `yaml:"default_image"`
}

type Chunk struct {
	Directory string `yaml:"directory" env-default:"chunks"`
	// OlderThan is the retention threshold for orphaned chunk files;
	// fragments last modified before now-OlderThan are swept.
	OlderThan     string `yaml:"older_than" env-default:"3h"`
	SweepInterval string `yaml:"sweep_interval" env-default:"1m"`
}

type Watermark struct {
	Enabled bool   `yaml:"enabled"`
	Source  string `yaml:"source"`
	// Size is the watermark width as a percentage of the source width.
	Size     float64 `yaml:"size" env-default:"10"`
	Opacity  float64 `yaml:"opacity" env-default:"70"`
	Position string  `yaml:"position" env-default:"bottom-right"`
	X        int     `yaml:"x" env-default:"10"`
	Y        int     `yaml:"y" env-default:"10"`
}

type CDN struct {
	Enabled      bool   `yaml:"enabled"`
	CustomDomain string `yaml:"custom_domain"`
}

// WithSize returns a copy of the sizes map with one size added or
// replaced. The receiver's map is never mutated, so a Config can be
// shared across requests safely.
func (m Media) WithSize(name string, width, height int) map[string]string {
	sizes := make(map[string]string, len(m.Sizes)+1)
	for k, v := range m.Sizes {
		sizes[k] = v
	}
	sizes[name] = fmt.Sprintf("%dx%d", width, height)
	return sizes
}

// WithoutSize returns a copy of the sizes map with one size removed.
func (m Media) WithoutSize(name string) map[string]string {
	sizes := make(map[string]string, len(m.Sizes))
	for k, v := range m.Sizes {
		if k != name {
			sizes[k] = v
		}
	}
	return sizes
}

func MustLoad() *Config {
	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to config file")
		flag.Parse()
		configPath = *flags

		if configPath == "" {
			log.Fatal("config path must be provided")
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist at path: %s", configPath)
	}

	var cfg Config

	err := cleanenv.ReadConfig(configPath, &cfg)

	if err != nil {
		log.Fatalf("failed to read config: %s", err)
	}

	return &cfg
}
