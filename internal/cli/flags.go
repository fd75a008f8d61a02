package cli

import "codeberg.org/snonux/wurdle/internal/quota"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	EnvFile    string
	OutputDir  string
	BatchFile  string
	ListModels bool
	NoCard     bool
	Archive    bool
	Anki       bool

	// Generation flags
	Provider   string
	WordModel  string
	ImageModel string
	DailyLimit int

	// Persistence flags
	StoreBackend string
	StorePath    string
	RedisURL     string

	// Sharing flags
	ShareCommand string
	HostURL      string

	// Logging flags
	LogLevel string
	LogEnv   string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		EnvFile:      ".env",
		DailyLimit:   quota.DefaultDailyLimit,
		StoreBackend: "sqlite",
		LogLevel:     "info",
		LogEnv:       "development",
	}
}
