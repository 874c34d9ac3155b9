package normalize

import (
	"regexp"

	"github.com/shopspring/decimal"

	"invoicegate/pkg/models"
)

// Placeholder and code-list constants used by the fallback rules. These
// are deliberately non-routable values that pass the downstream
// compliance validator's syntax checks while being recognizable as
// synthetic.
const (
	PlaceholderStreet     = "Teststraat 1"
	PlaceholderCity       = "Amsterdam"
	PlaceholderPostalCode = "1000AA"

	// PlaceholderEmail lives in a reserved domain and never routes.
	PlaceholderEmail = "unknown@example.com"

	// Electronic address scheme codes (EAS code list).
	SchemeEmail = "EM"
	SchemeGLN   = "0088"

	// SchemeKVK is the registered-business-identifier scheme (ICD code
	// for the Dutch chamber of commerce).
	SchemeKVK = "0106"

	// PlaceholderIBAN has a valid country prefix and length but
	// deliberately invalid check digits, so it can never clear.
	PlaceholderIBAN = "NL00INGB0000000000"
	PlaceholderBIC  = "XXXXNL2A"

	// MeansCreditTransfer is the payment-means code for a domestic
	// credit transfer (UNCL4461).
	MeansCreditTransfer = "30"
)

// TotalsTolerance is the accepted absolute difference between a stated
// net total and the sum derived from the lines.
var TotalsTolerance = decimal.New(2, -2)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// completeBuyerAddress injects the placeholder address when the buyer's
// postal address is absent or incomplete. The street line doubles as the
// presence marker for the address as a whole.
func (n *Normalizer) completeBuyerAddress(rec *models.InvoiceRecord, ledger *models.Ledger) {
	addr := &rec.Buyer.Address
	injected := false

	if addr.Street == "" {
		addr.Street = PlaceholderStreet
		injected = true
	}
	if addr.City == "" {
		addr.City = PlaceholderCity
		injected = true
	}
	if addr.PostalCode == "" {
		addr.PostalCode = PlaceholderPostalCode
		injected = true
	}

	if injected {
		ledger.MarkSynthetic("buyer.address")
		ledger.Warnf("buyer address incomplete, injected placeholder %q, %s %s",
			addr.Street, addr.PostalCode, addr.City)
		n.log.Info().
			Str("invoice_number", rec.Header.Number).
			Msg("Injected placeholder buyer address")
	}
}

// completeElectronicAddress injects a placeholder routing address for
// the buyer when absent, and re-derives the scheme code for both
// parties' electronic addresses. The seller side is repair-only, since
// the seller's identity is mandatory input.
func (n *Normalizer) completeElectronicAddress(rec *models.InvoiceRecord, ledger *models.Ledger) {
	if rec.Buyer.ElectronicAddress == "" {
		rec.Buyer.ElectronicAddress = PlaceholderEmail
		rec.Buyer.ElectronicAddressScheme = SchemeEmail
		ledger.MarkSynthetic("buyer.electronicAddress")
		n.log.Info().
			Str("invoice_number", rec.Header.Number).
			Msg("Injected placeholder buyer electronic address")
	} else {
		repairElectronicScheme(&rec.Buyer)
	}

	if rec.Seller.ElectronicAddress != "" {
		repairElectronicScheme(&rec.Seller)
	}
}

// repairElectronicScheme forces the email scheme for email-shaped
// addresses and defaults everything else to the GLN-style generic
// identifier scheme when no scheme was supplied.
func repairElectronicScheme(p *models.Party) {
	switch {
	case emailPattern.MatchString(p.ElectronicAddress):
		p.ElectronicAddressScheme = SchemeEmail
	case p.ElectronicAddressScheme == "":
		p.ElectronicAddressScheme = SchemeGLN
	}
}

// completeCompanyIDScheme defaults the identifying-scheme code for
// company identifiers that arrived without one. The identifier itself
// was supplied, so this is a repair with a warning, not a synthetic
// field.
func (n *Normalizer) completeCompanyIDScheme(rec *models.InvoiceRecord, ledger *models.Ledger) {
	for _, pp := range []struct {
		prefix string
		party  *models.Party
	}{
		{"seller", &rec.Seller},
		{"buyer", &rec.Buyer},
	} {
		if pp.party.CompanyID != "" && pp.party.CompanyIDScheme == "" {
			pp.party.CompanyIDScheme = SchemeKVK
			ledger.Warnf("%s.companyId has no scheme, defaulted to %s", pp.prefix, SchemeKVK)
		}
	}
}

// completeBuyerReference falls back to the invoice number, which the
// compliance ruleset accepts as a buyer reference of last resort.
func (n *Normalizer) completeBuyerReference(rec *models.InvoiceRecord, ledger *models.Ledger) {
	if rec.Header.BuyerReference == "" {
		rec.Header.BuyerReference = rec.Header.Number
		ledger.MarkSynthetic("header.buyerReference")
	}
}

// completePayment injects placeholder payment instructions for terminal
// records (no due date: paid, or credit-note-like), where the validator
// still demands an account but no money will ever move. Independently of
// terminality, a supplied IBAN without a means code gets the domestic
// credit transfer default.
func (n *Normalizer) completePayment(rec *models.InvoiceRecord, ledger *models.Ledger) {
	terminal := rec.Header.DueDate == ""

	if terminal && (rec.Payment == nil || rec.Payment.IBAN == "") {
		if rec.Payment == nil {
			rec.Payment = &models.Payment{}
		}
		rec.Payment.IBAN = PlaceholderIBAN
		if rec.Payment.BIC == "" {
			rec.Payment.BIC = PlaceholderBIC
		}
		if rec.Payment.MeansCode == "" {
			rec.Payment.MeansCode = MeansCreditTransfer
		}
		ledger.MarkSynthetic("payment")
		n.log.Info().
			Str("invoice_number", rec.Header.Number).
			Msg("Injected placeholder payment details for terminal invoice")
	}

	if rec.Payment != nil && rec.Payment.IBAN != "" && rec.Payment.MeansCode == "" {
		rec.Payment.MeansCode = MeansCreditTransfer
	}
}

// reconcileTotals derives the four totals from the lines wherever they
// are absent and cross-checks a stated net total against the derived
// sum. A mismatch beyond tolerance is a warning, never an error: a
// human-entered total may legitimately round differently.
func (n *Normalizer) reconcileTotals(rec *models.InvoiceRecord, ledger *models.Ledger) {
	derivedNet := decimal.Zero
	derivedTax := decimal.Zero

	for i := range rec.Lines {
		li := &rec.Lines[i]
		// Sum the same rounded values that are persisted per line, so
		// re-running on the output reproduces the exact totals.
		net := lineNet(li).Round(2)
		if li.NetAmount == nil {
			v := net
			li.NetAmount = &v
		}
		derivedNet = derivedNet.Add(net)
		derivedTax = derivedTax.Add(net.Mul(li.VATRate).Div(decimal.New(100, 0)))
	}
	derivedTax = derivedTax.Round(2)

	if rec.Totals.TaxExclusive == nil {
		v := derivedNet
		rec.Totals.TaxExclusive = &v
	} else if diff := rec.Totals.TaxExclusive.Sub(derivedNet).Abs(); diff.GreaterThan(TotalsTolerance) {
		ledger.Warnf("stated net total %s differs from line sum %s by %s",
			rec.Totals.TaxExclusive.StringFixed(2), derivedNet.StringFixed(2), diff.StringFixed(2))
		n.log.Warn().
			Str("invoice_number", rec.Header.Number).
			Str("stated", rec.Totals.TaxExclusive.String()).
			Str("derived", derivedNet.String()).
			Msg("Net total mismatch beyond tolerance")
	}

	if rec.Totals.TaxAmount == nil {
		v := derivedTax
		rec.Totals.TaxAmount = &v
	}

	gross := rec.Totals.TaxExclusive.Add(*rec.Totals.TaxAmount)
	if rec.Totals.TaxInclusive == nil {
		v := gross
		rec.Totals.TaxInclusive = &v
	}
	if rec.Totals.Payable == nil {
		v := gross
		rec.Totals.Payable = &v
	}

	if len(rec.TaxBreakdown) == 0 {
		rec.TaxBreakdown = deriveTaxBreakdown(rec.Lines)
	}
}

// lineNet is the line's net amount: the pre-computed value when
// supplied, otherwise quantity times price, scaled by the price-basis
// quantity when set.
func lineNet(li *models.LineItem) decimal.Decimal {
	if li.NetAmount != nil {
		return *li.NetAmount
	}
	net := li.Quantity.Mul(li.Price)
	if li.BaseQuantity != nil {
		net = net.Div(*li.BaseQuantity)
	}
	return net
}

// deriveTaxBreakdown groups lines by VAT rate and category, one
// subtotal per distinct pair in first-seen order.
func deriveTaxBreakdown(lines []models.LineItem) []models.TaxSubtotal {
	type key struct {
		rate     string
		category string
	}
	index := make(map[key]int)
	var out []models.TaxSubtotal

	for i := range lines {
		li := &lines[i]
		k := key{rate: li.VATRate.String(), category: li.VATCategory}
		pos, ok := index[k]
		if !ok {
			pos = len(out)
			index[k] = pos
			out = append(out, models.TaxSubtotal{Rate: li.VATRate, Category: li.VATCategory})
		}
		out[pos].TaxableAmount = out[pos].TaxableAmount.Add(lineNet(li))
	}

	for i := range out {
		out[i].TaxableAmount = out[i].TaxableAmount.Round(2)
		out[i].TaxAmount = out[i].TaxableAmount.Mul(out[i].Rate).Div(decimal.New(100, 0)).Round(2)
	}
	return out
}
