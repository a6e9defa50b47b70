package main

import "time"

type Config struct {
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath             string        `env:"BLUGE_FILEPATH,required=true"`
	JWTSecret                 string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration         time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	ConnectionBufferSize      int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	LimitMessages             *int          `env:"LIMIT_MESSAGES"`
	CensoredWords             string        `env:"CENSORED_WORDS"`
	ModerationCharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	AllowedOrigin             string        `env:"ALLOWED_ORIGIN,default=*"`
	LogLevel                  string        `env:"LOG_LEVEL,default=info"`
	ShutdownTimeout           time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}
