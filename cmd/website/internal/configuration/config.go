package configuration

import (
	"time"

	"github.com/adampresley/configinator"
	"github.com/joho/godotenv"
)

type Config struct {
	AwsEndpointUrl       string        `flag:"awsep" env:"AWS_ENDPOINT_URL" default:"" description:"AWS endpoint URL"`
	AwsRegion            string        `flag:"awsregion" env:"AWS_REGION" default:"us-central-1" description:"AWS region"`
	AwsAccessKeyId       string        `flag:"awsaccesskeyid" env:"AWS_ACCESS_KEY_ID" default:"" description:"AWS access key ID"`
	AwsSecretAccessKey   string        `flag:"awssecretaccesskey" env:"AWS_SECRET_ACCESS_KEY" default:"" description:"AWS secret access key"`
	AwsBucket            string        `flag:"awsbucket" env:"AWS_BUCKET" default:"" description:"S3 bucket holding photo files. Leave blank to disable photo links"`
	BaseURL              string        `flag:"baseurl" env:"BASE_URL" default:"http://localhost:8081" description:"Public URL of this site, used in emails"`
	BcryptCost           int           `flag:"bcryptcost" env:"BCRYPT_COST" default:"10" description:"bcrypt cost factor"`
	CloverDir            string        `flag:"cloverdir" env:"CLOVER_DIR" default:"./data/clover" description:"Directory for the clover document store"`
	CookieSecret         string        `flag:"cookiesecret" env:"COOKIE_SECRET" default:"password" description:"Secret for encoding cookies"`
	DSN                  string        `flag:"dsn" env:"DSN" default:"file:./data/mediacatalog.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" description:"Data source name"`
	EmailApiKey          string        `flag:"emailapikey" env:"EMAIL_API_KEY" default:"" description:"API key for sending emails. Leave blank to disable comment notifications"`
	EmailFromAddress     string        `flag:"emailfromaddress" env:"EMAIL_FROM_ADDRESS" default:"noreply@mediacatalog.local" description:"Sender address for notification emails"`
	EmailFromName        string        `flag:"emailfromname" env:"EMAIL_FROM_NAME" default:"Media Catalog" description:"Sender name for notification emails"`
	Host                 string        `flag:"host" env:"HOST" default:"localhost:8081" description:"The address and port to bind the HTTP server to"`
	LogLevel             string        `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	PasswordMode         string        `flag:"passwordmode" env:"PASSWORD_MODE" default:"bcrypt" description:"Password digest. Valid values are 'bcrypt' and 'legacy-sha256'"`
	PhotoFolder          string        `flag:"photofolder" env:"PHOTO_FOLDER" default:"photos" description:"S3 folder for photo files"`
	RedisAddr            string        `flag:"redisaddr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address, used when SESSION_DRIVER is 'redis'"`
	RedisPassword        string        `flag:"redispassword" env:"REDIS_PASSWORD" default:"" description:"Redis password"`
	SeedDir              string        `flag:"seeddir" env:"SEED_DIR" default:"" description:"Directory with users.json, albums.json, and photos.json to import at startup"`
	SeedInterval         time.Duration `flag:"seedinterval" env:"SEED_INTERVAL" default:"0s" description:"How often SEED_DIR is imported again. 0 imports once at startup"`
	SeedWorkers          int           `flag:"seedworkers" env:"SEED_WORKERS" default:"4" description:"Maximum number of concurrent seed import workers"`
	SessionDriver        string        `flag:"sessiondriver" env:"SESSION_DRIVER" default:"" description:"Where sessions live. Blank uses STORE_DRIVER, or 'redis'"`
	SessionSweepInterval time.Duration `flag:"sessionsweepinterval" env:"SESSION_SWEEP_INTERVAL" default:"1m" description:"How often expired sessions are removed"`
	SessionTTL           time.Duration `flag:"sessionttl" env:"SESSION_TTL" default:"4m" description:"How long a session lives after login"`
	StoreDriver          string        `flag:"storedriver" env:"STORE_DRIVER" default:"sqlite" description:"Storage backend. Valid values are 'sqlite' and 'clover'"`
}

/*
LoadConfig reads flags, environment, and .env. A .env.local file, when
present, is exported into the environment first so local secrets can stay
out of the shared .env.
*/
func LoadConfig() Config {
	_ = godotenv.Load(".env.local")

	config := Config{}
	configinator.Behold(&config)
	return config
}
