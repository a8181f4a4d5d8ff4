package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	SeedCatalog bool   `env:"SEED_CATALOG" envDefault:"false"`

	Database Database `envPrefix:"DB_"`
	Auth     Auth     `envPrefix:"AUTH_"`
	Payment  Payment  `envPrefix:"PAYMENT_"`
	Redis    Redis    `envPrefix:"REDIS_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

type Log struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"` // debug adds file:line to log lines
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // mysql, sqlite
	URL    string `env:"URL" envDefault:"mediastore.db"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET,required"`
}

type Payment struct {
	Currency    string        `env:"CURRENCY" envDefault:"USD"`
	Provider    string        `env:"PROVIDER" envDefault:"qr-otp"`
	OTPMode     string        `env:"OTP_MODE" envDefault:"random"` // random, shared
	SharedCode  string        `env:"OTP_SHARED_CODE" envDefault:"123456"`
	OTPTTL      time.Duration `env:"OTP_TTL" envDefault:"10m"`
	MaxAttempts int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`
}

type Redis struct {
	Addr          string        `env:"ADDR"` // empty disables the confirmation limiter
	Password      string        `env:"PASSWORD"`
	DB            int           `env:"DB" envDefault:"0"`
	ConfirmLimit  int64         `env:"CONFIRM_LIMIT" envDefault:"10"`
	ConfirmWindow time.Duration `env:"CONFIRM_WINDOW" envDefault:"1m"`
}
