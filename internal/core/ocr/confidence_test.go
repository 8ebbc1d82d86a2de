package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateConfidenceEmpty(t *testing.T) {
	assert.Zero(t, estimateConfidence(""))
	assert.Zero(t, estimateConfidence("   \n  "))
}

func TestEstimateConfidenceNaturalLanguageScoresHigh(t *testing.T) {
	text := "El importe de la factura que se adjunta es para el cliente"

	assert.GreaterOrEqual(t, estimateConfidence(text), 70.0)
}

func TestEstimateConfidenceNoiseScoresLow(t *testing.T) {
	good := "El importe de la factura que se adjunta es para el cliente"
	noise := strings.Repeat("■◆", 20)

	assert.Less(t, estimateConfidence(noise), estimateConfidence(good))
}

func TestEstimateConfidenceBounds(t *testing.T) {
	inputs := []string{"", "a", strings.Repeat("el de la que en ", 100), "12345"}
	for _, in := range inputs {
		score := estimateConfidence(in)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestEstimateEngineConfidencePenalizesFragments(t *testing.T) {
	fragments := "a\nb\n.\nc\nd\ne\nf\ng"
	prose := "una línea de texto normal con palabras completas"

	assert.Less(t, estimateEngineConfidence(fragments), estimateEngineConfidence(prose))
}
