package score

import "invoicegate/pkg/models"

// fieldProbe names one scoreable field and knows how to test its
// presence on a record. Probes are statically-defined Go values, so a
// misspelled field fails at build time instead of silently scoring as
// absent.
type fieldProbe struct {
	name    string
	present func(r *models.InvoiceRecord) bool
}

// sectionSpec fixes the tier configuration for one logical section.
type sectionSpec struct {
	name      string
	critical  []fieldProbe
	important []fieldProbe
	optional  []fieldProbe
}

var headerSection = sectionSpec{
	name: "header",
	critical: []fieldProbe{
		{"number", func(r *models.InvoiceRecord) bool { return r.Header.Number != "" }},
		{"issueDate", func(r *models.InvoiceRecord) bool { return r.Header.IssueDate != "" }},
		{"currency", func(r *models.InvoiceRecord) bool { return r.Header.Currency != "" }},
	},
	important: []fieldProbe{
		{"dueDate", func(r *models.InvoiceRecord) bool { return r.Header.DueDate != "" }},
		{"notes", func(r *models.InvoiceRecord) bool { return r.Header.Notes != "" }},
	},
}

var sellerSection = partySection("seller", func(r *models.InvoiceRecord) *models.Party { return &r.Seller })
var buyerSection = partySection("buyer", func(r *models.InvoiceRecord) *models.Party { return &r.Buyer })

// partySection builds the shared seller/buyer tier configuration bound
// to one of the two party slots.
func partySection(name string, party func(r *models.InvoiceRecord) *models.Party) sectionSpec {
	probe := func(field string, present func(p *models.Party) bool) fieldProbe {
		return fieldProbe{field, func(r *models.InvoiceRecord) bool { return present(party(r)) }}
	}
	return sectionSpec{
		name: name,
		critical: []fieldProbe{
			probe("name", func(p *models.Party) bool { return p.Name != "" }),
			probe("address", func(p *models.Party) bool { return p.Address.Street != "" }),
			probe("city", func(p *models.Party) bool { return p.Address.City != "" }),
			probe("country", func(p *models.Party) bool { return p.Address.Country != "" }),
			probe("electronicAddress", func(p *models.Party) bool { return p.ElectronicAddress != "" }),
		},
		important: []fieldProbe{
			probe("postalCode", func(p *models.Party) bool { return p.Address.PostalCode != "" }),
			probe("vatNumber", func(p *models.Party) bool { return p.VATNumber != "" }),
			probe("companyId", func(p *models.Party) bool { return p.CompanyID != "" }),
		},
		optional: []fieldProbe{
			probe("contactName", func(p *models.Party) bool { return p.ContactName != "" }),
			probe("contactEmail", func(p *models.Party) bool { return p.ContactEmail != "" }),
			probe("contactPhone", func(p *models.Party) bool { return p.ContactPhone != "" }),
		},
	}
}

var paymentSection = sectionSpec{
	name: "payment",
	important: []fieldProbe{
		{"iban", func(r *models.InvoiceRecord) bool { return r.Payment != nil && r.Payment.IBAN != "" }},
		{"bic", func(r *models.InvoiceRecord) bool { return r.Payment != nil && r.Payment.BIC != "" }},
		{"accountName", func(r *models.InvoiceRecord) bool { return r.Payment != nil && r.Payment.AccountName != "" }},
	},
	optional: []fieldProbe{
		{"paymentReference", func(r *models.InvoiceRecord) bool { return r.Payment != nil && r.Payment.Reference != "" }},
		{"paymentTerms", func(r *models.InvoiceRecord) bool { return r.Payment != nil && r.Payment.Terms != "" }},
	},
}
