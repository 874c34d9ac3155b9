package normalize

import (
	"strings"

	"invoicegate/pkg/models"
)

// legalEntitySuffixes are corporate-form tokens recognized in legal
// names. Matching is a case-insensitive substring check, so tokens
// carry their punctuation or surrounding space to avoid firing inside
// ordinary words.
var legalEntitySuffixes = []string{
	"b.v.", " bv", "n.v.", " nv", "v.o.f.", " vof",
	"gmbh", " ag", "s.a.", "sarl", " sas",
	" ltd", "ltd.", " llc", "inc.", " inc", " plc",
	" aps", "a/s", " oyj", " oy", " kft",
}

// IsBusinessParty classifies a party as a business (B2B) rather than a
// consumer. A party is a business when it carries a tax or company
// identifier, or when its legal name contains a recognized
// legal-entity-suffix token.
//
// The predicate is advisory: it gates no fallback rule, but downstream
// consumers use it, for instance to decide whether a missing VAT number
// deserves a warning.
func IsBusinessParty(p *models.Party) bool {
	if p == nil {
		return false
	}
	if p.VATNumber != "" || p.CompanyID != "" {
		return true
	}
	name := strings.ToLower(p.Name)
	for _, suffix := range legalEntitySuffixes {
		if strings.Contains(name, suffix) {
			return true
		}
	}
	return false
}
