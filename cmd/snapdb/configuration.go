package main

type Configuration struct {
	File      string `usage:"snapshot file to open (created if missing)"`
	Command   string `usage:"run a single command instead of reading commands from stdin"`
	LogLevel  string `usage:"log level: debug, info, warn or error"`
	LogFormat string `usage:"log format: text or json"`
}

func Default() Configuration {
	return Configuration{
		File:      "snapdb.db",
		LogLevel:  "warn",
		LogFormat: "text",
	}
}
