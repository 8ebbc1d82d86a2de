package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessCorrectsLetterContextZero(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("OCR 0xygen", "es", "general")

	assert.Equal(t, "OCR Oxygen", result.Text)
	assert.Equal(t, 1, result.Corrections)
}

func TestProcessLeavesNumbersAlone(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("2024", "es", "general")

	assert.Equal(t, "2024", result.Text)
	assert.Zero(t, result.Corrections)
}

func TestProcessLeavesAlphanumericCodesAlone(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("R2D2", "es", "general")

	assert.Equal(t, "R2D2", result.Text)
	assert.Zero(t, result.Corrections)
}

func TestProcessCorrectsDigitContextLetters(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("Total: 1O2 euros, ref 4l7", "es", "general")

	assert.Contains(t, result.Text, "102")
	assert.Contains(t, result.Text, "417")
}

func TestProcessCorrectsSixAndGBothWays(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("pa6o de 1G2 euros", "es", "general")

	assert.Contains(t, result.Text, "paGo")
	assert.Contains(t, result.Text, "162")
}

func TestProcessNormalizesWhitespace(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("hola   mundo  \t x\n\n\n\n\nlinea", "es", "general")

	assert.Equal(t, "hola mundo x\n\nlinea", result.Text)
}

func TestProcessStripsArtifacts(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("ﬁrma “comillas”", "es", "general")

	assert.Equal(t, `firma "comillas"`, result.Text)
}

func TestProcessSubstitutionTable(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("hola | mundo , adios ( dentro ) fin .", "es", "general")

	assert.Equal(t, "hola I mundo, adios (dentro) fin.", result.Text)
}

func TestProcessNormalizesUnicodeComposition(t *testing.T) {
	p := NewPostprocessor("")

	// "cio" followed by a combining acute accent plus "n", as cloud
	// engines sometimes emit it, must compose into a single rune.
	result := p.Process("información", "es", "general")

	assert.Equal(t, "información", result.Text)
}

func TestProcessLanguageCorrections(t *testing.T) {
	p := NewPostprocessor("")

	es := p.Process("pago DEl recibo CoN tarjeta", "es", "general")
	assert.Equal(t, "pago del recibo con tarjeta", es.Text)
	assert.Equal(t, 2, es.Corrections)

	en := p.Process("paid WiTH card FRoM account", "en", "general")
	assert.Equal(t, "paid with card from account", en.Text)
}

func TestProcessUnknownLanguageIsNoOp(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("pago DEl recibo", "ru", "general")

	assert.Equal(t, "pago DEl recibo", result.Text)
	assert.Zero(t, result.Corrections)
}

func TestProcessInvoiceCorrections(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("fACTURA 2024: total 123.45€ y 99,95 $", "es", "invoice")

	assert.Contains(t, result.Text, "FACTURA")
	assert.Contains(t, result.Text, "123,45 €")
	assert.Contains(t, result.Text, "99.95 $")
}

func TestProcessInvoiceKeepsCleanKeywordCasing(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("Factura con total de 10,00 €", "es", "invoice")

	assert.Contains(t, result.Text, "Factura")
}

func TestProcessContactCorrections(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("TELEFONO: 612345678\nEmail: Juan.Perez@Acme.ES", "es", "contact")

	assert.Contains(t, result.Text, "TELÉFONO")
	assert.Contains(t, result.Text, "612 345 678")
	assert.Contains(t, result.Text, "juan.perez@acme.es")
}

func TestProcessQualityMetrics(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("Total factura: 123,45 euros\nGracias", "es", "general")

	q := result.Quality
	assert.Equal(t, 2, q.Lines)
	assert.True(t, q.HasNumbers)
	assert.True(t, q.HasPunctuation)
	assert.True(t, q.HasUppercase)
	assert.True(t, q.HasLowercase)
	assert.Greater(t, q.Words, 3)
	assert.Greater(t, q.AvgWordLength, 0.0)
	assert.Greater(t, q.DigitRatio, 0.0)
	assert.Less(t, q.SpecialCharRatio, 0.5)
}

func TestProcessIsIdempotent(t *testing.T) {
	p := NewPostprocessor("")
	inputs := []string{
		"OCR 0xygen y 1O2 cosas",
		"  Factura\n\n\n\nN.: 0O1l5  ",
		"texto normal sin errores",
		"fACTURA ToTAL 123.45€ TELEFONO 612 345 678",
		"",
	}

	for _, input := range inputs {
		for _, docType := range []string{"general", "invoice", "contact"} {
			first := p.Process(input, "es", docType)
			second := p.Process(first.Text, "es", docType)
			assert.Equal(t, first.Text, second.Text, "input %q not stable as %s", input, docType)
			assert.Zero(t, second.Corrections, "second pass corrected %q again as %s", input, docType)
		}
	}
}

func TestProcessEmptyInput(t *testing.T) {
	p := NewPostprocessor("")

	result := p.Process("   \n\t  ", "es", "general")

	assert.Empty(t, result.Text)
	assert.Zero(t, result.Confidence)
	assert.Zero(t, result.Quality.Words)
}

func TestProcessConfidenceRange(t *testing.T) {
	p := NewPostprocessor("")
	inputs := []string{
		"",
		"x",
		"El total de la factura es 123,45 € y el contacto es info@acme.es",
		"0l 1O 5S l1 O0 B8 8B 0l 1O 5S",
	}

	for _, input := range inputs {
		result := p.Process(input, "es", "general")
		require.GreaterOrEqual(t, result.Confidence, 0.0)
		require.LessOrEqual(t, result.Confidence, 1.0)
	}
}

func TestProcessRichDocumentScoresHigherThanNoise(t *testing.T) {
	p := NewPostprocessor("")

	rich := p.Process("Factura para cliente@acme.es con total 199,99 € pagadero el 15/03/2024", "es", "general")
	noisy := p.Process("x0y1 l1m5 q0w8 e1r0 t5y6 u8i1 o0p5 a1s8 d5f0", "es", "general")

	assert.Greater(t, rich.Confidence, noisy.Confidence)
}
