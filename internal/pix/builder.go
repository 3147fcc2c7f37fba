// Package pix builds static Pix "copy and paste" payloads in the EMV-QR
// tag-length-value format and renders them as QR images.
package pix

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	idPayloadFormat        = "00"
	idMerchantAccount      = "26"
	idMerchantCategoryCode = "52"
	idCurrency             = "53"
	idAmount               = "54"
	idCountry              = "58"
	idMerchantName         = "59"
	idMerchantCity         = "60"
	idAdditionalData       = "62"
	idCRC                  = "63"

	idGUI         = "00"
	idKey         = "01"
	idDescription = "02"
	idReference   = "05"

	gui          = "br.gov.bcb.pix"
	currencyBRL  = "986"
	countryBR    = "BR"
	categoryNone = "0000"

	maxMerchantName = 25
	maxMerchantCity = 15
	maxDescription  = 50
	maxReference    = 25
	maxFieldValue   = 99

	// used when the transaction id sanitizes to nothing
	noReference = "***"
)

type Merchant struct {
	Key         string
	Name        string
	City        string
	Description string
}

type Builder struct {
	merchant Merchant
}

// NewBuilder fails with a ConfigurationError when no Pix key is set.
func NewBuilder(merchant Merchant) (*Builder, error) {
	merchant.Key = strings.TrimSpace(merchant.Key)
	if merchant.Key == "" {
		return nil, &domain.ConfigurationError{Setting: "PIX_KEY"}
	}
	if len(merchant.Key) > maxFieldValue-len(gui)-8 {
		return nil, fmt.Errorf("pix key is too long")
	}

	return &Builder{merchant: merchant}, nil
}

// BuildCode returns the payload for amount, labelled with txid, terminated by its CRC.
func (b *Builder) BuildCode(amount decimal.Decimal, txid string) string {
	reference := sanitize(txid, maxReference)
	if reference == "" {
		reference = noReference
	}

	var sb strings.Builder
	sb.WriteString(field(idPayloadFormat, "01"))
	sb.WriteString(field(idMerchantAccount, b.merchantAccount()))
	sb.WriteString(field(idMerchantCategoryCode, categoryNone))
	sb.WriteString(field(idCurrency, currencyBRL))
	sb.WriteString(field(idAmount, amount.StringFixed(2)))
	sb.WriteString(field(idCountry, countryBR))
	sb.WriteString(field(idMerchantName, sanitize(b.merchant.Name, maxMerchantName)))
	sb.WriteString(field(idMerchantCity, sanitize(b.merchant.City, maxMerchantCity)))
	sb.WriteString(field(idAdditionalData, field(idReference, reference)))
	sb.WriteString(idCRC + "04")

	payload := sb.String()
	return payload + fmt.Sprintf("%04X", CRC16CCITT([]byte(payload)))
}

func (b *Builder) merchantAccount() string {
	account := field(idGUI, gui) + field(idKey, b.merchant.Key)

	// the nested value must itself fit a two digit length
	room := maxFieldValue - len(account) - 4
	description := sanitize(b.merchant.Description, min(maxDescription, room))
	if description != "" {
		account += field(idDescription, description)
	}

	return account
}

func field(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// sanitize decomposes accents, keeps printable ASCII, upper-cases and caps the result at limit bytes.
func sanitize(s string, limit int) string {
	// transformers carry state, so each call gets its own chain
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

	decomposed, _, err := transform.String(stripMarks, s)
	if err != nil {
		decomposed = s
	}

	var sb strings.Builder
	for _, r := range decomposed {
		if r >= 0x20 && r <= 0x7E {
			sb.WriteRune(unicode.ToUpper(r))
		}
	}

	out := strings.TrimSpace(sb.String())
	if limit <= 0 {
		return ""
	}
	if len(out) > limit {
		out = strings.TrimSpace(out[:limit])
	}
	return out
}
