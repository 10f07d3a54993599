package providers

import "github.com/i474232898/prayer-times-aggregation/internal/prayer"

// Config holds the upstream endpoints. Empty values select the public defaults.
type Config struct {
	DiyanetBaseURL    string
	EmushafBaseURL    string
	NamazVaktiMirrors []string
	Aladhan           AladhanConfig
}

// All builds every adapter.
func All(opts Options, cfg Config) []prayer.Provider {
	return []prayer.Provider{
		NewDiyanetProvider(opts, cfg.DiyanetBaseURL),
		NewAladhanProvider(opts, cfg.Aladhan),
		NewEmushafProvider(opts, cfg.EmushafBaseURL),
		NewNamazVaktiProvider(opts, cfg.NamazVaktiMirrors),
	}
}
