package templates

import "sort"

// catalog lists the ACORD forms the service knows by type key.
var catalog = map[string]string{
	"acord25":  "ACORD 25 - Certificate of Liability Insurance",
	"acord27":  "ACORD 27 - Evidence of Property Insurance",
	"acord28":  "ACORD 28 - Evidence of Commercial Property Insurance",
	"acord30":  "ACORD 30 - Garage Certificate of Insurance",
	"acord35":  "ACORD 35 - Cancellation Request/Policy Release",
	"acord36":  "ACORD 36 - Agent/Broker of Record Change",
	"acord37":  "ACORD 37 - Statement of No Loss",
	"acord125": "ACORD 125 - Commercial Insurance Application",
	"acord126": "ACORD 126 - Commercial General Liability Section",
	"acord130": "ACORD 130 - Workers Compensation Application",
	"acord140": "ACORD 140 - Property Section",
}

// DisplayName returns the catalog name for a normalized type key.
func DisplayName(typeKey string) (string, bool) {
	n, ok := catalog[typeKey]
	return n, ok
}

// CatalogKeys returns every catalog type key in sorted order.
func CatalogKeys() []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
