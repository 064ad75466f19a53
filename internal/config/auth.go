package config

import "time"

type Auth struct {
	JWTSecret     string        `env:"AUTH_JWT_SECRET,required"`
	TokenLifetime time.Duration `env:"AUTH_TOKEN_LIFETIME" envDefault:"1h"`
	Issuer        string        `env:"AUTH_ISSUER" envDefault:"polybooks"`
	BcryptCost    int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}
