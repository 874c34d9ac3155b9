package models

import "github.com/shopspring/decimal"

// InvoiceRecord is one invoice's structured data as produced by the
// upstream extraction step. Any subset of optional fields may be absent;
// numeric fields arrive already parsed. Monetary amounts are carried as
// decimals in major currency units.
type InvoiceRecord struct {
	Header       Header        `json:"header"`
	Seller       Party         `json:"seller"`
	Buyer        Party         `json:"buyer"`
	Lines        []LineItem    `json:"lines"`
	Totals       Totals        `json:"totals"`
	TaxBreakdown []TaxSubtotal `json:"taxBreakdown,omitempty"`
	Payment      *Payment      `json:"payment,omitempty"`
}

// Header carries the invoice-level identifiers and dates.
// Dates are YYYY-MM-DD strings as delivered by extraction; the core only
// ever tests their presence.
type Header struct {
	Number         string `json:"number"`
	IssueDate      string `json:"issueDate"`
	DueDate        string `json:"dueDate,omitempty"`
	Currency       string `json:"currency"`
	Notes          string `json:"notes,omitempty"`
	BuyerReference string `json:"buyerReference,omitempty"`
}

// Party is a seller or buyer entity with identity, address and
// routing/tax identifiers.
type Party struct {
	Name                    string  `json:"name"`
	TradingName             string  `json:"tradingName,omitempty"`
	Address                 Address `json:"address"`
	VATNumber               string  `json:"vatNumber,omitempty"`
	CompanyID               string  `json:"companyId,omitempty"`
	CompanyIDScheme         string  `json:"companyIdScheme,omitempty"`
	ElectronicAddress       string  `json:"electronicAddress,omitempty"`
	ElectronicAddressScheme string  `json:"electronicAddressScheme,omitempty"`
	ContactName             string  `json:"contactName,omitempty"`
	ContactPhone            string  `json:"contactPhone,omitempty"`
	ContactEmail            string  `json:"contactEmail,omitempty"`
}

// Address is a postal address. An address with an empty street is
// treated as absent.
type Address struct {
	Street     string `json:"street,omitempty"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// LineItem is one invoice line. ID is unique within the record; when
// absent on input it is assigned sequentially starting at 1.
type LineItem struct {
	ID           string           `json:"id,omitempty"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Quantity     decimal.Decimal  `json:"quantity"`
	Unit         string           `json:"unit,omitempty"`
	Price        decimal.Decimal  `json:"price"`
	BaseQuantity *decimal.Decimal `json:"baseQuantity,omitempty"`
	VATRate      decimal.Decimal  `json:"vatRate"`
	VATCategory  string           `json:"vatCategory,omitempty"`
	NetAmount    *decimal.Decimal `json:"netAmount,omitempty"`
}

// Totals holds the derived invoice totals. Nil means the extraction
// step did not supply the value and it is to be derived from the lines.
type Totals struct {
	TaxExclusive *decimal.Decimal `json:"taxExclusive,omitempty"`
	TaxAmount    *decimal.Decimal `json:"taxAmount,omitempty"`
	TaxInclusive *decimal.Decimal `json:"taxInclusive,omitempty"`
	Payable      *decimal.Decimal `json:"payable,omitempty"`
}

// TaxSubtotal is one entry of the per-rate tax breakdown.
type TaxSubtotal struct {
	Rate          decimal.Decimal `json:"rate"`
	Category      string          `json:"category,omitempty"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
}

// Payment carries payment instructions.
type Payment struct {
	MeansCode   string `json:"meansCode,omitempty"`
	IBAN        string `json:"iban,omitempty"`
	BIC         string `json:"bic,omitempty"`
	AccountName string `json:"accountName,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Terms       string `json:"terms,omitempty"`
}

// Clone returns a deep copy of the record. The normalizer works on a
// copy so the caller's raw record is never mutated.
func (r *InvoiceRecord) Clone() *InvoiceRecord {
	out := *r

	out.Lines = make([]LineItem, len(r.Lines))
	for i, li := range r.Lines {
		out.Lines[i] = li
		out.Lines[i].BaseQuantity = cloneDecimal(li.BaseQuantity)
		out.Lines[i].NetAmount = cloneDecimal(li.NetAmount)
	}

	if len(r.TaxBreakdown) > 0 {
		out.TaxBreakdown = make([]TaxSubtotal, len(r.TaxBreakdown))
		copy(out.TaxBreakdown, r.TaxBreakdown)
	}

	out.Totals.TaxExclusive = cloneDecimal(r.Totals.TaxExclusive)
	out.Totals.TaxAmount = cloneDecimal(r.Totals.TaxAmount)
	out.Totals.TaxInclusive = cloneDecimal(r.Totals.TaxInclusive)
	out.Totals.Payable = cloneDecimal(r.Totals.Payable)

	if r.Payment != nil {
		p := *r.Payment
		out.Payment = &p
	}

	return &out
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
