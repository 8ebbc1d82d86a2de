package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = `FACTURA N: 2024-001
Cliente: Construcciones López S.L.
Email: facturacion@lopez.es
Teléfono: +34 612345678
Fecha: 15/03/2024
Dirección: Calle Mayor 5, 28013 Madrid
NIF: 12345678Z
IBAN: ES9121000418450200051332
Web: https://lopez.es/facturas
Total: 1.234,56 €`

func TestExtractInvoiceElements(t *testing.T) {
	e := NewExtractor("")

	elements := e.Extract(sampleInvoice)

	assert.Equal(t, []string{"facturacion@lopez.es"}, elements.Emails)
	require.Len(t, elements.Phones, 1)
	assert.Contains(t, elements.Phones[0], "612345678")
	assert.Equal(t, []string{"15/03/2024"}, elements.Dates)
	assert.Equal(t, []string{"1.234,56 €"}, elements.Amounts)
	assert.Contains(t, elements.PostalCodes, "28013")
	assert.Equal(t, []string{"12345678Z"}, elements.IDNumbers)
	assert.Equal(t, []string{"https://lopez.es/facturas"}, elements.URLs)
	assert.Equal(t, []string{"ES9121000418450200051332"}, elements.IBANs)
}

func TestExtractEmptyText(t *testing.T) {
	e := NewExtractor("")

	elements := e.Extract("")

	assert.Zero(t, elements.Count())
}

func TestExtractDeduplicates(t *testing.T) {
	e := NewExtractor("")

	elements := e.Extract("info@acme.es otra línea info@acme.es y más info@acme.es")

	assert.Equal(t, []string{"info@acme.es"}, elements.Emails)
}

func TestExtractDateSeparatorVariants(t *testing.T) {
	e := NewExtractor("")

	elements := e.Extract("del 1/2/24 al 15-03-2024 y el 31.12.2023")

	assert.Equal(t, []string{"1/2/24", "15-03-2024", "31.12.2023"}, elements.Dates)
}

func TestExtractAmountVariants(t *testing.T) {
	e := NewExtractor("")

	elements := e.Extract("subtotal 99,50 € iva $ 12.00 total 112,34€")

	assert.Contains(t, elements.Amounts, "99,50 €")
	assert.Contains(t, elements.Amounts, "112,34€")
}

func TestCustomPhonePattern(t *testing.T) {
	e := NewExtractor(`\+1\d{10}`)

	elements := e.Extract("call +12125551234 or 612345678")

	assert.Equal(t, []string{"+12125551234"}, elements.Phones)
}

func TestInvalidPhonePatternFallsBack(t *testing.T) {
	e := NewExtractor(`[invalid(`)

	elements := e.Extract("llámanos al 612345678")

	require.Len(t, elements.Phones, 1)
	assert.Contains(t, elements.Phones[0], "612345678")
}

func TestKeyValuePairs(t *testing.T) {
	e := NewExtractor("")

	pairs := e.KeyValuePairs("Cliente: Acme S.L.\nFecha: 15/03/2024\nsin separador\nCliente: duplicado")

	assert.Equal(t, "Acme S.L.", pairs["Cliente"])
	assert.Equal(t, "15/03/2024", pairs["Fecha"])
	assert.Len(t, pairs, 2)
}

func TestElementsCount(t *testing.T) {
	e := NewExtractor("")

	elements := e.Extract("info@acme.es 15/03/2024")

	assert.Equal(t, 2, elements.Count())
}
