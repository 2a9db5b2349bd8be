package mapping

// Built-in role tables. Agency has one table for every template; holder and
// named insured have one per known template plus a generic default.

var agencyDefaults = map[string]string{
	"name":           "Producer_FullName_A",
	"street":         "Producer_MailingAddress_LineOne_A",
	"suite":          "Producer_MailingAddress_LineTwo_A",
	"city":           "Producer_MailingAddress_CityName_A",
	"state":          "Producer_MailingAddress_StateOrProvinceCode_A",
	"zip":            "Producer_MailingAddress_PostalCode_A",
	"phone":          "Producer_PhoneNumber_A",
	"fax":            "Producer_FaxNumber_A",
	"email":          "Producer_EmailAddress_A",
	"producer_name":  "Producer_ContactPerson_FullName_A",
	"producer_phone": "Producer_ContactPerson_PhoneNumber_A",
	"producer_email": "Producer_ContactPerson_EmailAddress_A",
	"signature_text": "Producer_AuthorizedRepresentative_Signature_A",
}

func holderTable(prefix string, withRemarks bool) map[string]string {
	t := map[string]string{
		"name":          prefix + "_FullName_A",
		"address_line1": prefix + "_MailingAddress_LineOne_A",
		"address_line2": prefix + "_MailingAddress_LineTwo_A",
		"city":          prefix + "_MailingAddress_CityName_A",
		"state":         prefix + "_MailingAddress_StateOrProvinceCode_A",
		"postal_code":   prefix + "_MailingAddress_PostalCode_A",
	}
	if withRemarks {
		t["remarks"] = "CertificateOfInsurance_RemarkText_A"
	}
	return t
}

var holderDefaults = map[string]map[string]string{
	"acord25":  holderTable("CertificateHolder", true),
	"acord27":  holderTable("AdditionalInterest", false),
	"acord28":  holderTable("AdditionalInterest", false),
	DefaultKey: holderTable("CertificateHolder", true),
}

func namedInsuredTable(withContact bool) map[string]string {
	t := map[string]string{
		"name":          "NamedInsured_FullName_A",
		"address_line1": "NamedInsured_MailingAddress_LineOne_A",
		"address_line2": "NamedInsured_MailingAddress_LineTwo_A",
		"city":          "NamedInsured_MailingAddress_CityName_A",
		"state":         "NamedInsured_MailingAddress_StateOrProvinceCode_A",
		"postal_code":   "NamedInsured_MailingAddress_PostalCode_A",
	}
	if withContact {
		t["email"] = "NamedInsured_Primary_EmailAddress_A"
		t["phone"] = "NamedInsured_Primary_PhoneNumber_A"
	}
	return t
}

var namedInsuredDefaults = map[string]map[string]string{
	"acord25":  namedInsuredTable(true),
	"acord27":  namedInsuredTable(false),
	"acord28":  namedInsuredTable(false),
	DefaultKey: namedInsuredTable(true),
}

// Defaults returns a copy of the built-in table for a normalized key and
// scope. It is never nil; an unknown scope yields an empty map.
func Defaults(key string, scope Scope) map[string]string {
	var src map[string]string
	switch scope {
	case ScopeAgency:
		src = agencyDefaults
	case ScopeHolder:
		src = pick(holderDefaults, key)
	case ScopeNamedInsured:
		src = pick(namedInsuredDefaults, key)
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func pick(tables map[string]map[string]string, key string) map[string]string {
	if t, ok := tables[key]; ok {
		return t
	}
	return tables[DefaultKey]
}
