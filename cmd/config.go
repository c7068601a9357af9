package main

import "time"

type Config struct {
	Host     string `env:"HOST,default=localhost"`
	Port     int    `env:"PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	// Empty keeps the search index in memory only.
	BlugeFilepath string `env:"BLUGE_FILEPATH"`

	JWTSecret string `env:"JWT_SECRET,required=true"`

	GenerationBaseURL string        `env:"GENERATION_BASE_URL,required=true"`
	GenerationAPIKey  string        `env:"GENERATION_API_KEY,required=true"`
	GenerationModel   string        `env:"GENERATION_MODEL,default=gpt-4o-mini"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT,default=20s"`

	// Comma-separated trigger vocabulary for the escalation engine.
	EscalationTriggers  string `env:"ESCALATION_TRIGGERS,default=need"`
	EscalationQueueSize int    `env:"ESCALATION_QUEUE_SIZE,default=32"`

	BufferSize      int           `env:"BUFFER_SIZE,default=64"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=5s"`
	HealthInterval  time.Duration `env:"HEALTH_INTERVAL,default=30s"`

	WriteMaxRequests int           `env:"WRITE_MAX_REQUESTS,default=60"`
	WriteWindow      time.Duration `env:"WRITE_WINDOW,default=1m"`
	ReadMaxRequests  int           `env:"READ_MAX_REQUESTS,default=60"`
	ReadWindow       time.Duration `env:"READ_WINDOW,default=1m"`
}
