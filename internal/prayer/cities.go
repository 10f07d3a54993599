package prayer

import (
	"sort"
	"strings"
)

// DefaultCityName is used for name-based upstream queries when a code is unknown.
const DefaultCityName = "Istanbul"

// City pairs a Diyanet district code with its province name.
type City struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var cityNames = map[string]string{
	"10550": "Adana",
	"10552": "Adiyaman",
	"10553": "Afyonkarahisar",
	"10555": "Agri",
	"10556": "Aksaray",
	"10558": "Amasya",
	"10604": "Ankara",
	"10642": "Antalya",
	"10647": "Ardahan",
	"10648": "Artvin",
	"10649": "Aydin",
	"10650": "Balikesir",
	"10651": "Bartin",
	"10652": "Batman",
	"10653": "Bayburt",
	"10654": "Bilecik",
	"10655": "Bingol",
	"10656": "Bitlis",
	"10657": "Bolu",
	"10659": "Burdur",
	"10923": "Bursa",
	"10924": "Canakkale",
	"10925": "Cankiri",
	"10926": "Corum",
	"10927": "Denizli",
	"10928": "Diyarbakir",
	"10929": "Duzce",
	"10930": "Edirne",
	"10931": "Elazig",
	"10932": "Erzincan",
	"10933": "Erzurum",
	"10934": "Eskisehir",
	"10935": "Gaziantep",
	"10936": "Giresun",
	"10937": "Gumushane",
	"10938": "Hakkari",
	"10939": "Hatay",
	"10940": "Igdir",
	"10941": "Isparta",
	"11001": "Istanbul",
	"11231": "Izmir",
	"11232": "Kahramanmaras",
	"11233": "Karabuk",
	"11234": "Karaman",
	"11235": "Kars",
	"11236": "Kastamonu",
	"11237": "Kayseri",
	"11238": "Kilis",
	"11239": "Kirikkale",
	"11240": "Kirklareli",
	"11241": "Kirsehir",
	"11242": "Kocaeli",
	"11243": "Konya",
	"11244": "Kutahya",
	"11245": "Malatya",
	"11246": "Manisa",
	"11247": "Mardin",
	"11248": "Mersin",
	"11249": "Mugla",
	"11250": "Mus",
	"11251": "Nevsehir",
	"11252": "Nigde",
	"11253": "Ordu",
	"11254": "Osmaniye",
	"11255": "Rize",
	"11256": "Sakarya",
	"11257": "Samsun",
	"11258": "Sanliurfa",
	"11259": "Siirt",
	"11260": "Sinop",
	"11261": "Sivas",
	"11262": "Sirnak",
	"11263": "Tekirdag",
	"11264": "Tokat",
	"11265": "Trabzon",
	"11266": "Tunceli",
	"11267": "Usak",
	"11268": "Van",
	"11269": "Yalova",
	"11270": "Yozgat",
	"11271": "Zonguldak",
}

var cityCodes = func() map[string]string {
	m := make(map[string]string, len(cityNames))
	for code, name := range cityNames {
		m[strings.ToLower(name)] = code
	}
	return m
}()

// CityName returns the province name for a code, or DefaultCityName.
func CityName(code string) string {
	if name, ok := cityNames[code]; ok {
		return name
	}
	return DefaultCityName
}

// CityCode looks up the code for a province name, ignoring case.
func CityCode(name string) (string, bool) {
	code, ok := cityCodes[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// Cities returns the registry sorted by name.
func Cities() []City {
	out := make([]City, 0, len(cityNames))
	for code, name := range cityNames {
		out = append(out, City{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
