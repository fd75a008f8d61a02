package cli

import (
	"testing"

	"codeberg.org/snonux/wurdle/internal/quota"
)

func TestNewFlags(t *testing.T) {
	want := Flags{
		EnvFile:      ".env",
		DailyLimit:   quota.DefaultDailyLimit,
		StoreBackend: "sqlite",
		LogLevel:     "info",
		LogEnv:       "development",
	}
	if got := *NewFlags(); got != want {
		t.Errorf("NewFlags() = %+v\nwant %+v", got, want)
	}
}

func TestNewFlagsAreIndependent(t *testing.T) {
	a, b := NewFlags(), NewFlags()
	a.DailyLimit = 99
	a.OutputDir = "/tmp/cards"
	if b.DailyLimit == 99 || b.OutputDir != "" {
		t.Error("flag sets share state")
	}
}
