package configuration

import (
	"time"

	"github.com/adampresley/configinator"
	"github.com/joho/godotenv"
)

type Config struct {
	BcryptCost    int           `flag:"bcryptcost" env:"BCRYPT_COST" default:"10" description:"bcrypt cost factor"`
	CloverDir     string        `flag:"cloverdir" env:"CLOVER_DIR" default:"./data/clover" description:"Directory for the clover document store"`
	DSN           string        `flag:"dsn" env:"DSN" default:"file:./data/mediacatalog.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" description:"Data source name"`
	LogLevel      string        `flag:"loglevel" env:"LOG_LEVEL" default:"warn" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	PasswordMode  string        `flag:"passwordmode" env:"PASSWORD_MODE" default:"bcrypt" description:"Password digest. Valid values are 'bcrypt' and 'legacy-sha256'"`
	RedisAddr     string        `flag:"redisaddr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address, used when SESSION_DRIVER is 'redis'"`
	RedisPassword string        `flag:"redispassword" env:"REDIS_PASSWORD" default:"" description:"Redis password"`
	SessionDriver string        `flag:"sessiondriver" env:"SESSION_DRIVER" default:"" description:"Where sessions live. Blank uses STORE_DRIVER, or 'redis'"`
	SessionTTL    time.Duration `flag:"sessionttl" env:"SESSION_TTL" default:"4m" description:"How long a session lives after login"`
	StoreDriver   string        `flag:"storedriver" env:"STORE_DRIVER" default:"sqlite" description:"Storage backend. Valid values are 'sqlite' and 'clover'"`
}

func LoadConfig() Config {
	_ = godotenv.Load(".env.local")

	config := Config{}
	configinator.Behold(&config)
	return config
}
