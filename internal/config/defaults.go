package config

const (
	defaultDataDir            = "~/.local/share/turnstile/data"
	defaultLogDir             = "~/.local/share/turnstile/logs"
	defaultAPIBind            = "127.0.0.1:7717"
	defaultAverageServiceTime = 5
	defaultMaxQueueLength     = 100
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// defaultStations mirror the station layout the engine was first deployed
// with; real installs override them in config.
var defaultStations = []string{"Charging", "Releasing", "Extraction"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Stations: Stations{
			Names: append([]string(nil), defaultStations...),
		},
		Queue: Queue{
			AverageServiceTime: defaultAverageServiceTime,
			MaxQueueLength:     defaultMaxQueueLength,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
