// Package taxonomy holds the closed enumerations used to filter stories:
// world regions, canonical topics, time periods and history intervals.
package taxonomy

import "sort"

// Region is a world region filter value.
type Region string

const (
	NorthAmerica Region = "north_america"
	SouthAmerica Region = "south_america"
	Europe       Region = "europe"
	Africa       Region = "africa"
	MiddleEast   Region = "middle_east"
	Asia         Region = "asia"
	Oceania      Region = "oceania"
)

// Regions lists every region in display order.
var Regions = []Region{NorthAmerica, SouthAmerica, Europe, Africa, MiddleEast, Asia, Oceania}

// regionCountryCodes maps each region to ISO 3166-1 alpha-3 codes.
// A code must never appear under two regions.
var regionCountryCodes = map[Region][]string{
	NorthAmerica: {
		"USA", "CAN", "MEX", "GTM", "BLZ", "SLV", "HND", "NIC", "CRI", "PAN",
		"CUB", "JAM", "HTI", "DOM", "BHS", "BRB", "TTO", "DMA", "GRD", "KNA",
		"LCA", "VCT", "ATG", "PRI", "GRL", "BMU",
	},
	SouthAmerica: {
		"BRA", "ARG", "CHL", "COL", "PER", "VEN", "ECU", "BOL", "PRY", "URY",
		"GUY", "SUR", "GUF", "FLK",
	},
	Europe: {
		"GBR", "IRL", "FRA", "DEU", "ITA", "ESP", "PRT", "NLD", "BEL", "LUX",
		"CHE", "AUT", "DNK", "NOR", "SWE", "FIN", "ISL", "POL", "CZE", "SVK",
		"HUN", "ROU", "BGR", "GRC", "HRV", "SVN", "SRB", "BIH", "MNE", "MKD",
		"ALB", "EST", "LVA", "LTU", "UKR", "BLR", "MDA", "RUS", "MLT", "CYP",
		"AND", "MCO", "SMR", "VAT", "LIE",
	},
	Africa: {
		"NGA", "ZAF", "KEN", "ETH", "GHA", "MAR", "DZA", "TUN", "LBY", "SDN",
		"SSD", "UGA", "TZA", "RWA", "BDI", "COD", "COG", "CMR", "CIV", "SEN",
		"MLI", "NER", "TCD", "BFA", "GIN", "SLE", "LBR", "TGO", "BEN", "MRT",
		"GMB", "GNB", "CPV", "GAB", "GNQ", "CAF", "AGO", "ZMB", "ZWE", "MWI",
		"MOZ", "NAM", "BWA", "LSO", "SWZ", "MDG", "MUS", "SYC", "COM", "DJI",
		"ERI", "SOM", "STP",
	},
	MiddleEast: {
		"SAU", "ARE", "QAT", "KWT", "BHR", "OMN", "YEM", "IRQ", "IRN", "ISR",
		"PSE", "JOR", "LBN", "SYR", "TUR", "EGY",
	},
	Asia: {
		"CHN", "JPN", "KOR", "PRK", "TWN", "HKG", "MAC", "MNG", "IND", "PAK",
		"BGD", "LKA", "NPL", "BTN", "MDV", "AFG", "KAZ", "UZB", "TKM", "KGZ",
		"TJK", "VNM", "THA", "MYS", "SGP", "IDN", "PHL", "MMR", "KHM", "LAO",
		"BRN", "TLS", "ARM", "AZE", "GEO",
	},
	Oceania: {
		"AUS", "NZL", "PNG", "FJI", "SLB", "VUT", "WSM", "TON", "KIR", "TUV",
		"NRU", "FSM", "MHL", "PLW",
	},
}

// ParseRegion validates a region tag.
func ParseRegion(s string) (Region, bool) {
	r := Region(s)
	_, ok := regionCountryCodes[r]
	return r, ok
}

// CountryCodes returns the sorted country codes for a region.
// Unknown regions yield an empty slice.
func CountryCodes(r Region) []string {
	codes := regionCountryCodes[r]
	out := make([]string, len(codes))
	copy(out, codes)
	sort.Strings(out)
	return out
}

// RegionOf returns the region a country code belongs to.
func RegionOf(code string) (Region, bool) {
	for _, r := range Regions {
		for _, c := range regionCountryCodes[r] {
			if c == code {
				return r, true
			}
		}
	}
	return "", false
}
