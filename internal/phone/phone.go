// Package phone holds the number handling shared by the pool importer and
// the rotation selector: digit normalization, per-country validation and
// area-code derivation.
package phone

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// countryRules validates national numbers per pool country.
// CO: 10 digits starting with 3 (mobiles). MX/US: 10 digits, no leading 0/1.
var countryRules = map[string]*regexp.Regexp{
	"CO": regexp.MustCompile(`^3[0-9]{9}$`),
	"MX": regexp.MustCompile(`^[2-9][0-9]{9}$`),
	"US": regexp.MustCompile(`^[2-9][0-9]{9}$`),
}

const DefaultCountry = "CO"

// latamPrefixes are the country codes the dialer routes through; used as
// a fallback when a lead number cannot be parsed as E.164.
var latamPrefixes = []string{"52", "54", "55", "56", "57", "58", "51", "53", "59"}

// Digits strips everything but 0-9.
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// AreaCode derives the area code of a stored caller-ID: its first 3
// digits. Returns "" when the number is shorter than that.
func AreaCode(callerid string) string {
	d := Digits(callerid)
	if len(d) < 3 {
		return ""
	}
	return d[:3]
}

// ValidateForCountry normalizes raw to digits and checks it against the
// country rule. Unknown countries fall back to the CO rule. Returns the
// cleaned number and whether it is acceptable for the pool.
func ValidateForCountry(raw, country string) (string, bool) {
	clean := Digits(raw)
	rule, ok := countryRules[strings.ToUpper(country)]
	if !ok {
		rule = countryRules[DefaultCountry]
	}
	return clean, rule.MatchString(clean)
}

// NationalNumber reduces a dialed number to its national significant
// digits. Numbers longer than 10 digits are first tried as E.164; if that
// fails, known Latin American country prefixes are stripped manually.
func NationalNumber(digits string) string {
	if len(digits) <= 10 {
		return digits
	}
	if num, err := phonenumbers.Parse("+"+digits, ""); err == nil {
		if nat := phonenumbers.GetNationalSignificantNumber(num); len(nat) >= 10 {
			return nat
		}
	}
	for _, cc := range latamPrefixes {
		if strings.HasPrefix(digits, cc) && len(digits)-len(cc) == 10 {
			return digits[len(cc):]
		}
	}
	return digits
}

// LeadAreaCode resolves the area code a lead number should be matched
// against: strip to digits, reduce to the national number, take the first
// 3 digits. Returns "" for unusable input.
func LeadAreaCode(leadPhone string) string {
	d := NationalNumber(Digits(leadPhone))
	if len(d) < 3 {
		return ""
	}
	return d[:3]
}
