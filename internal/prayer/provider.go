package prayer

import (
	"context"
)

// Provider abstracts an upstream prayer-time source (Diyanet, eMushaf, Aladhan, ...).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, cityCode string) (ProviderResult, error)
}

// Cache is the contract every cache backend (memory, redis, sqlite) satisfies.
// A miss is reported as ok=false with a nil error.
type Cache interface {
	Get(ctx context.Context, cityCode, providerID string) (ProviderResult, bool, error)
	Set(ctx context.Context, cityCode, providerID string, data ProviderResult) error
}

// Provider ids accepted as selectors.
const (
	AutoProvider       = "auto"
	DiyanetProvider    = "diyanet"
	EmushafProvider    = "emushaf"
	AladhanProvider    = "aladhan"
	NamazVaktiProvider = "namazvakti"
)

// AutoOrder is the priority order tried in auto mode.
var AutoOrder = []string{DiyanetProvider, AladhanProvider, EmushafProvider, NamazVaktiProvider}

// ProviderInfo describes a selectable provider.
type ProviderInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog lists the selectable providers, auto first.
var Catalog = []ProviderInfo{
	{ID: AutoProvider, Name: "Otomatik (Önerilen)", Description: "En iyi çalışan API'yi otomatik olarak seçer"},
	{ID: DiyanetProvider, Name: "Diyanet İşleri", Description: "Türkiye Diyanet İşleri Başkanlığı resmi verileri"},
	{ID: EmushafProvider, Name: "E-Mushaf", Description: "E-Mushaf namaz vakitleri API'si"},
	{ID: AladhanProvider, Name: "Al-Adhan", Description: "Uluslararası İslami vakitler API'si"},
	{ID: NamazVaktiProvider, Name: "Namaz Vakti API", Description: "Alternatif namaz vakitleri API'si (Bakımda olabilir)"},
}

// KnownProvider reports whether id is a valid selector.
func KnownProvider(id string) bool {
	for _, p := range Catalog {
		if p.ID == id {
			return true
		}
	}
	return false
}

// CacheKey is the storage key for a (city, provider) pair.
func CacheKey(cityCode, providerID string) string {
	return "prayerTimesCache_" + cityCode + "_" + providerID
}
