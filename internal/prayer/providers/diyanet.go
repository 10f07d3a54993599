package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

// DiyanetProvider scrapes the official Diyanet city page.
type DiyanetProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
	log     zerolog.Logger
}

func NewDiyanetProvider(opts Options, baseURL string) *DiyanetProvider {
	if baseURL == "" {
		baseURL = "https://namazvakitleri.diyanet.gov.tr"
	}
	return &DiyanetProvider{
		name:    prayer.DiyanetProvider,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: opts.httpConfig(),
		circuit: newBreaker("diyanet"),
		now:     opts.clock(),
		log:     opts.Logger.With().Str("provider", prayer.DiyanetProvider).Logger(),
	}
}

func (p *DiyanetProvider) Name() string {
	return p.name
}

func (p *DiyanetProvider) Fetch(ctx context.Context, cityCode string) (prayer.ProviderResult, error) {
	u := p.baseURL + "/tr-TR/" + url.PathEscape(cityCode)
	p.log.Debug().Str("url", u).Msg("fetching page")

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, func() (*http.Request, error) {
		return newGetRequest(u, "application/json, text/html")
	})
	if err != nil {
		return nil, prayer.NewNetworkError(p.name, "diyanet request failed", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, prayer.NewNetworkError(p.name, "diyanet read failed", err)
	}

	day, ok := ExtractDiyanetTimes(string(body))
	if !ok {
		return nil, prayer.NewMalformedError(p.name, "prayer times not found in diyanet page", nil)
	}
	if day.GregorianDate == "" {
		day.GregorianDate = prayer.TurkishDate(p.now())
	}
	return prayer.ProviderResult{day}, nil
}

// diyanetLabels maps folded cell labels to the prayer they introduce.
var diyanetLabels = map[string]prayer.Name{
	"imsak":  prayer.Imsak,
	"gunes":  prayer.Sunrise,
	"ogle":   prayer.Noon,
	"ikindi": prayer.Afternoon,
	"aksam":  prayer.Sunset,
	"yatsi":  prayer.Night,
}

var turkishFold = strings.NewReplacer(
	"İ", "i", "I", "i", "ı", "i",
	"Ş", "s", "ş", "s",
	"Ğ", "g", "ğ", "g",
	"Ü", "u", "ü", "u",
	"Ö", "o", "ö", "o",
	"Ç", "c", "ç", "c",
)

func foldLabel(s string) string {
	return strings.ToLower(turkishFold.Replace(s))
}

// ExtractDiyanetTimes pulls the six labelled times and the optional date
// heading out of a Diyanet page. A time is the text of the cell following
// its label cell. Every time must be present and valid.
func ExtractDiyanetTimes(page string) (prayer.PrayerTime, bool) {
	doc, err := html.Parse(strings.NewReader(norm.NFC.String(page)))
	if err != nil {
		return prayer.PrayerTime{}, false
	}

	values := make(map[prayer.Name]string, len(diyanetLabels))
	var heading string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H3:
				if heading == "" {
					heading = nodeText(n)
				}
			case atom.Td, atom.Th:
				if name, ok := diyanetLabels[foldLabel(nodeText(n))]; ok {
					if _, seen := values[name]; !seen {
						if cell := nextCell(n); cell != nil {
							values[name] = nodeText(cell)
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(values) != len(diyanetLabels) {
		return prayer.PrayerTime{}, false
	}

	day := prayer.PrayerTime{
		GregorianDate: heading,
		Imsak:         values[prayer.Imsak],
		Sunrise:       values[prayer.Sunrise],
		Noon:          values[prayer.Noon],
		Afternoon:     values[prayer.Afternoon],
		Sunset:        values[prayer.Sunset],
		Night:         values[prayer.Night],
	}.Normalize()

	if err := day.Validate(); err != nil {
		return prayer.PrayerTime{}, false
	}
	return day, true
}

// nextCell returns the next td/th sibling of n.
func nextCell(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && (s.DataAtom == atom.Td || s.DataAtom == atom.Th) {
			return s
		}
	}
	return nil
}

// nodeText concatenates the text below n with whitespace collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
