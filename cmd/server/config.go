package main

import "time"

type Config struct {
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=8080"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	SessionKey      string        `env:"SESSION_KEY,required=true"`
	LimitMessages   *int          `env:"LIMIT_MESSAGES"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=5s"`
	StatsInterval   time.Duration `env:"STATS_INTERVAL,default=5s"`
	GCInterval      time.Duration `env:"GC_INTERVAL,default=5m"`
}
