// Package pipeline runs text through Huffman coding, Hamming(7,4) protection,
// simulated channel noise and both decode paths.
package pipeline

import (
	"github.com/harlequix/infopipe/internal/encoding"
	"github.com/harlequix/infopipe/internal/huffman"
	"github.com/harlequix/infopipe/internal/model"
	"github.com/harlequix/infopipe/internal/noise"
	log "github.com/harlequix/infopipe/log"
	"github.com/pkg/errors"
)

// ErrInvalidInterval is returned by Run for an error interval below one.
var ErrInvalidInterval = errors.New("error interval must be >= 1")

var logger = log.NewLogger("Pipeline")

// Result holds every artifact of one run. It is not modified after Run
// returns.
type Result struct {
	TextLength    int                `json:"text_length"`
	ErrorInterval int                `json:"error_interval"`
	Probabilities map[string]float64 `json:"probabilities"`
	Codes         map[string]string  `json:"codes"`

	EncodedBits string `json:"encoded_bits"`
	DecodedText string `json:"decoded_text"`

	HammingBits   string `json:"hamming_bits"`
	PadBits       int    `json:"pad_bits"`
	CorruptedBits string `json:"corrupted_bits"`
	FlippedBits   int    `json:"flipped_bits"`

	CorruptedDataBits    string `json:"corrupted_data_bits"`
	CorruptedDecodedText string `json:"corrupted_decoded_text"`
	CorruptedDecodeOK    bool   `json:"corrupted_decode_ok"`

	RecoveredBits        string `json:"recovered_bits"`
	CorrectedBlocks      int    `json:"corrected_blocks"`
	RecoveredDecodedText string `json:"recovered_decoded_text"`
	RecoveredTextOK      bool   `json:"recovered_text_ok"`
	RecoveredBitsOK      bool   `json:"recovered_bits_ok"`

	HuffmanOK bool `json:"huffman_ok"`
	HammingOK bool `json:"hamming_ok"`

	Entropy       float64 `json:"entropy"`
	AverageLength float64 `json:"average_code_length"`
}

// Run encodes text, corrupts the Hamming stream with one flipped bit every
// errorInterval bits and decodes it with and without correction. The
// corruption seed is fixed, so equal inputs give equal results.
func Run(text string, errorInterval int) (*Result, error) {
	if errorInterval < 1 {
		return nil, errors.Wrapf(ErrInvalidInterval, "got %d", errorInterval)
	}

	dist := model.Probabilities(text)
	tree := huffman.Build(dist)
	codes := tree.Codes()

	encoded, err := huffman.Encode(text, codes)
	if err != nil {
		return nil, errors.Wrap(err, "huffman encode")
	}
	decoded := huffman.Decode(encoded, tree)

	hamming, pad, err := encoding.EncodeHamming74(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "hamming encode")
	}
	clean, err := encoding.DecodeHamming74(hamming, pad)
	if err != nil {
		return nil, errors.Wrap(err, "hamming decode")
	}

	corrupted := noise.AddErrors(hamming, errorInterval, noise.DefaultSeed)
	flipped := len(noise.FlipPositions(len(hamming), errorInterval, noise.DefaultSeed))

	corruptedData, err := encoding.DecodeHamming74NoCorrection(corrupted, pad)
	if err != nil {
		return nil, errors.Wrap(err, "hamming decode without correction")
	}
	corruptedText, corruptedOK := huffman.DecodeSafe(corruptedData, tree)

	recovered, err := encoding.DecodeHamming74(corrupted, pad)
	if err != nil {
		return nil, errors.Wrap(err, "hamming decode with correction")
	}
	corrections, err := encoding.Corrections(corrupted)
	if err != nil {
		return nil, errors.Wrap(err, "counting corrections")
	}
	recoveredText := huffman.Decode(recovered, tree)

	res := &Result{
		TextLength:           len([]rune(text)),
		ErrorInterval:        errorInterval,
		Probabilities:        make(map[string]float64, len(dist)),
		Codes:                make(map[string]string, len(codes)),
		EncodedBits:          encoded,
		DecodedText:          decoded,
		HammingBits:          hamming,
		PadBits:              pad,
		CorruptedBits:        corrupted,
		FlippedBits:          flipped,
		CorruptedDataBits:    corruptedData,
		CorruptedDecodedText: corruptedText,
		CorruptedDecodeOK:    corruptedOK,
		RecoveredBits:        recovered,
		CorrectedBlocks:      corrections,
		RecoveredDecodedText: recoveredText,
		RecoveredTextOK:      recoveredText == text,
		RecoveredBitsOK:      recovered == encoded,
		HuffmanOK:            decoded == text,
		HammingOK:            clean == encoded,
		Entropy:              model.Entropy(dist),
		AverageLength:        codes.AverageLength(dist),
	}
	for sym, p := range dist {
		res.Probabilities[string(sym)] = p
	}
	for sym, code := range codes {
		res.Codes[string(sym)] = code
	}

	logger.WithField("symbols", len(dist)).
		WithField("encoded", len(encoded)).
		WithField("hamming", len(hamming)).
		WithField("flipped", flipped).
		WithField("corrected", corrections).
		Debug("pipeline run")
	return res, nil
}
