package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDigitsDecimalReading(t *testing.T) {
	assert.Equal(t, "12345.67", ExtractDigits("Reading: 12345.67 kWh"))
}

func TestExtractDigitsNormalizesComma(t *testing.T) {
	assert.Equal(t, "12345.67", ExtractDigits("Lectura: 12345,67 kWh"))
}

func TestExtractDigitsPrefersLongestDecimal(t *testing.T) {
	assert.Equal(t, "98765.43", ExtractDigits("page 1.2 meter 98765.43"))
}

func TestExtractDigitsPlainRun(t *testing.T) {
	assert.Equal(t, "0012345", ExtractDigits("contador 0012345 kWh"))
}

func TestExtractDigitsTrimsStraySeparators(t *testing.T) {
	assert.Equal(t, "12345", ExtractDigits("valor ,12345. fin"))
}

func TestExtractDigitsConcatenatesScatteredRuns(t *testing.T) {
	assert.Equal(t, "123456", ExtractDigits("1 2 3 4 5 6"))
}

func TestExtractDigitsNoDigits(t *testing.T) {
	assert.Empty(t, ExtractDigits("sin lectura visible"))
}
