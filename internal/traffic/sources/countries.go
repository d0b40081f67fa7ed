package sources

import "strconv"

// countryNames maps ISO 3166-1 numeric codes to display names. Providers that
// report shares per country code (e.g. 840) are resolved through it.
var countryNames = map[int]string{
	4:   "Afghanistan",
	8:   "Albania",
	12:  "Algeria",
	32:  "Argentina",
	36:  "Australia",
	40:  "Austria",
	50:  "Bangladesh",
	56:  "Belgium",
	76:  "Brazil",
	100: "Bulgaria",
	124: "Canada",
	152: "Chile",
	156: "China",
	170: "Colombia",
	191: "Croatia",
	203: "Czech Republic",
	208: "Denmark",
	218: "Ecuador",
	818: "Egypt",
	246: "Finland",
	250: "France",
	276: "Germany",
	300: "Greece",
	344: "Hong Kong",
	348: "Hungary",
	356: "India",
	360: "Indonesia",
	364: "Iran",
	368: "Iraq",
	372: "Ireland",
	376: "Israel",
	380: "Italy",
	392: "Japan",
	398: "Kazakhstan",
	404: "Kenya",
	410: "South Korea",
	458: "Malaysia",
	484: "Mexico",
	504: "Morocco",
	528: "Netherlands",
	554: "New Zealand",
	566: "Nigeria",
	578: "Norway",
	586: "Pakistan",
	604: "Peru",
	608: "Philippines",
	616: "Poland",
	620: "Portugal",
	642: "Romania",
	643: "Russia",
	682: "Saudi Arabia",
	688: "Serbia",
	702: "Singapore",
	703: "Slovakia",
	710: "South Africa",
	724: "Spain",
	752: "Sweden",
	756: "Switzerland",
	158: "Taiwan",
	764: "Thailand",
	792: "Turkey",
	804: "Ukraine",
	784: "United Arab Emirates",
	826: "United Kingdom",
	840: "United States",
	862: "Venezuela",
	704: "Vietnam",
}

// CountryName resolves a numeric country code; unknown codes render as
// "Country <code>".
func CountryName(code int) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return "Country " + strconv.Itoa(code)
}
