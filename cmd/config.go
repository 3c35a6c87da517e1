package main

import "time"

type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	PersistDebounce      time.Duration `env:"PERSIST_DEBOUNCE,required=true"`
	PersistMaxInFlight   int           `env:"PERSIST_MAX_IN_FLIGHT,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	HealthInterval       time.Duration `env:"HEALTH_INTERVAL,required=true"`
	MaxMessageLength     int           `env:"MAX_MESSAGE_LENGTH,default=40"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=3000"`
}
