package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/harlequix/infopipe/internal/encoding"
)

// Preview limits used when no others are configured.
const (
	DefaultPreviewBits = 200
	DefaultPreviewText = 300
	topProbabilities   = 10
)

type Summary struct {
	OriginalLength   int     `json:"original_length"`
	EncodedLength    int     `json:"encoded_length"`
	HammingLength    int     `json:"hamming_length"`
	PadBits          int     `json:"pad_bits"`
	CompressionRatio string  `json:"compression_ratio"`
	Entropy          float64 `json:"entropy"`
	AverageLength    float64 `json:"average_code_length"`
	FlippedBits      int     `json:"flipped_bits"`
	CorrectedBlocks  int     `json:"corrected_blocks"`
}

type Quality struct {
	HuffmanOK         bool `json:"huffman_ok"`
	HammingOK         bool `json:"hamming_ok"`
	CorruptedDecodeOK bool `json:"corrupted_decode_ok"`
	RecoveredTextOK   bool `json:"recovered_text_ok"`
}

// SymbolProbability is one entry of Report.TopProbabilities. It encodes as
// the pair [symbol, probability].
type SymbolProbability struct {
	Symbol      string
	Probability float64
}

func (sp SymbolProbability) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{sp.Symbol, sp.Probability})
}

// Report is the condensed view of a Result served to clients.
type Report struct {
	Summary          Summary             `json:"summary"`
	Quality          Quality             `json:"quality_metrics"`
	TopProbabilities []SymbolProbability `json:"top_probabilities"`

	EncodedBitsPreview      string `json:"encoded_bits_preview"`
	HammingBitsPreview      string `json:"hamming_bits_preview"`
	CorruptedBitsPreview    string `json:"corrupted_bits_preview"`
	RecoveredBitsPreview    string `json:"recovered_bits_preview"`
	OriginalTextPreview     string `json:"original_text_preview"`
	DecodedTextPreview      string `json:"decoded_text_preview"`
	CorruptedDecodedPreview string `json:"corrupted_decoded_preview"`
	RecoveredDecodedPreview string `json:"recovered_decoded_preview"`
}

// CompressionRatio formats symbols per encoded bit as "x.xx:1", or "N/A"
// when nothing was encoded.
func CompressionRatio(symbols, bits int) string {
	if bits == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f:1", float64(symbols)/float64(bits))
}

// TopProbabilities returns the n most likely symbols, most likely first;
// equal probabilities are ordered by symbol.
func TopProbabilities(probs map[string]float64, n int) []SymbolProbability {
	out := make([]SymbolProbability, 0, len(probs))
	for sym, p := range probs {
		out = append(out, SymbolProbability{Symbol: sym, Probability: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Probability != out[j].Probability {
			return out[i].Probability > out[j].Probability
		}
		return out[i].Symbol < out[j].Symbol
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// NewReport builds the report of res for text. Non-positive limits fall back
// to the defaults.
func NewReport(text string, res *Result, bitLimit, textLimit int) *Report {
	if bitLimit <= 0 {
		bitLimit = DefaultPreviewBits
	}
	if textLimit <= 0 {
		textLimit = DefaultPreviewText
	}
	return &Report{
		Summary: Summary{
			OriginalLength:   res.TextLength,
			EncodedLength:    len(res.EncodedBits),
			HammingLength:    len(res.HammingBits),
			PadBits:          res.PadBits,
			CompressionRatio: CompressionRatio(res.TextLength, len(res.EncodedBits)),
			Entropy:          res.Entropy,
			AverageLength:    res.AverageLength,
			FlippedBits:      res.FlippedBits,
			CorrectedBlocks:  res.CorrectedBlocks,
		},
		Quality: Quality{
			HuffmanOK:         res.HuffmanOK,
			HammingOK:         res.HammingOK,
			CorruptedDecodeOK: res.CorruptedDecodeOK,
			RecoveredTextOK:   res.RecoveredTextOK,
		},
		TopProbabilities:        TopProbabilities(res.Probabilities, topProbabilities),
		EncodedBitsPreview:      encoding.Preview(res.EncodedBits, bitLimit),
		HammingBitsPreview:      encoding.Preview(res.HammingBits, bitLimit),
		CorruptedBitsPreview:    encoding.Preview(res.CorruptedBits, bitLimit),
		RecoveredBitsPreview:    encoding.Preview(res.RecoveredBits, bitLimit),
		OriginalTextPreview:     encoding.Preview(text, textLimit),
		DecodedTextPreview:      encoding.Preview(res.DecodedText, textLimit),
		CorruptedDecodedPreview: encoding.Preview(res.CorruptedDecodedText, textLimit),
		RecoveredDecodedPreview: encoding.Preview(res.RecoveredDecodedText, textLimit),
	}
}
