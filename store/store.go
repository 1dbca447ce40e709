// Package store persists pipeline runs as directories of plain text
// artifacts plus a summary.json.
package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harlequix/infopipe/internal/encoding"
	log "github.com/harlequix/infopipe/log"
	"github.com/harlequix/infopipe/pipeline"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

var ErrRunNotFound = errors.New("run not found")

const (
	summaryFile  = "summary.json"
	stampLayout  = "2006-01-02_15-04-05"
	// PreviewLimit bounds artifact contents returned to clients.
	PreviewLimit = 1000
)

// Artifacts loaded into RunDetail.Files, keyed by the name clients see.
var detailFiles = map[string]string{
	"text":           "Text.txt",
	"huffman_codes":  "huffman_codes.txt",
	"encoded_bits":   "part2_bits.txt",
	"decoded_text":   "part3_decoded.txt",
	"hamming_bits":   "part4_hamming_bits.txt",
	"corrupted_bits": "part5_corrupted_bits.txt",
	"recovered_bits": "part6_recovered_bits.txt",
}

// Summary is the content of summary.json.
type Summary struct {
	ErrorInterval     int       `json:"error_interval"`
	TextLength        int       `json:"text_length_symbols"`
	EncodedLength     int       `json:"encoded_length_bits"`
	HammingLength     int       `json:"hamming_length_bits"`
	PadBits           int       `json:"pad_bits"`
	FlippedBits       int       `json:"flipped_bits"`
	CorrectedBlocks   int       `json:"corrected_blocks"`
	HuffmanOK         bool      `json:"huffman_ok"`
	HammingOK         bool      `json:"hamming_ok"`
	CorruptedDecodeOK bool      `json:"corrupted_decode_ok"`
	RecoveredTextOK   bool      `json:"recovered_text_ok"`
	TextSHA3          string    `json:"text_sha3"`
	CreatedAt         time.Time `json:"created_at"`
}

// Run is one entry of List. Timestamp repeats the directory name, which
// starts with the creation time.
type Run struct {
	ID        string   `json:"directory"`
	Timestamp string   `json:"timestamp"`
	Directory string   `json:"-"`
	Summary   *Summary `json:"summary"`
}

// RunDetail is a run with the leading part of its artifacts. It encodes as
// one flat object: "summary" next to one key per artifact.
type RunDetail struct {
	Summary *Summary
	Files   map[string]string
}

func (d *RunDetail) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(d.Files)+1)
	for key, content := range d.Files {
		flat[key] = content
	}
	flat["summary"] = d.Summary
	return json.Marshal(flat)
}

type Store struct {
	dir    string
	cache  *lru.Cache[string, *RunDetail]
	logger *log.Logger
	now    func() time.Time
}

// New opens the run directory dir, creating it if needed. cacheSize bounds
// the number of loaded run details kept in memory.
func New(dir string, cacheSize int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating runs directory %s", dir)
	}
	cache, err := lru.New[string, *RunDetail](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating run cache")
	}
	return &Store{
		dir:    dir,
		cache:  cache,
		logger: log.NewLogger("Store"),
		now:    time.Now,
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// NewSummary condenses res into the fields written to summary.json.
func NewSummary(text string, res *pipeline.Result) (*Summary, error) {
	summary := &Summary{}
	if err := copier.Copy(summary, res); err != nil {
		return nil, errors.Wrap(err, "copying summary")
	}
	summary.EncodedLength = len(res.EncodedBits)
	summary.HammingLength = len(res.HammingBits)
	digest := sha3.Sum256([]byte(text))
	summary.TextSHA3 = hex.EncodeToString(digest[:])
	return summary, nil
}

// Save writes every artifact of res into a fresh run directory.
func (s *Store) Save(text string, res *pipeline.Result) (*Run, error) {
	summary, err := NewSummary(text, res)
	if err != nil {
		return nil, err
	}
	now := s.now()
	summary.CreatedAt = now.UTC()

	id := now.Format(stampLayout) + "-" + uuid.New().String()[:8]
	dir := filepath.Join(s.dir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating run directory %s", dir)
	}

	packed, err := encoding.Pack(res.HammingBits)
	if err != nil {
		return nil, errors.Wrap(err, "packing hamming bits")
	}
	meta, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding summary")
	}

	files := map[string][]byte{
		"Text.txt":                          []byte(text),
		"part1_symbols.txt":                 []byte(symbolLines(res.Probabilities)),
		"huffman_codes.txt":                 []byte(codeLines(res.Codes)),
		"part2_bits.txt":                    []byte(res.EncodedBits),
		"part3_decoded.txt":                 []byte(res.DecodedText),
		"part4_hamming_bits.txt":            []byte(res.HammingBits),
		"part4_hamming_bits.bin":            packed,
		"part4_pad.txt":                     []byte(strconv.Itoa(res.PadBits)),
		"part5_corrupted_bits.txt":          []byte(res.CorruptedBits),
		"part5b_corrupted_data_bits.txt":    []byte(res.CorruptedDataBits),
		"part5c_corrupted_decoded_text.txt": []byte(res.CorruptedDecodedText),
		"part5c_corrupted_decode_ok.txt":    []byte(strconv.FormatBool(res.CorruptedDecodeOK)),
		"part6_recovered_bits.txt":          []byte(res.RecoveredBits),
		"part6_recovered_decoded_text.txt":  []byte(res.RecoveredDecodedText),
		"part6_recovered_text_ok.txt":       []byte(strconv.FormatBool(res.RecoveredTextOK)),
		summaryFile:                         meta,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
			return nil, errors.Wrapf(err, "writing %s", name)
		}
	}

	s.logger.WithField("run", id).WithField("interval", res.ErrorInterval).Info("saved run")
	return &Run{ID: id, Timestamp: id, Directory: dir, Summary: summary}, nil
}

// List returns every run that has a summary, newest first.
func (s *Store) List() ([]*Run, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading runs directory %s", s.dir)
	}
	runs := []*Run{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.dir, entry.Name())
		summary, err := readSummary(dir)
		if err != nil {
			if !os.IsNotExist(errors.Cause(err)) {
				s.logger.WithField("run", entry.Name()).WithError(err).Warn("skipping unreadable run")
			}
			continue
		}
		runs = append(runs, &Run{ID: entry.Name(), Timestamp: entry.Name(), Directory: dir, Summary: summary})
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].Summary.CreatedAt.Equal(runs[j].Summary.CreatedAt) {
			return runs[i].Summary.CreatedAt.After(runs[j].Summary.CreatedAt)
		}
		return runs[i].ID > runs[j].ID
	})
	return runs, nil
}

// Get loads a run's summary and the first 1000 characters of its main
// artifacts.
func (s *Store) Get(id string) (*RunDetail, error) {
	if id == "" || id == "." || id == ".." || filepath.Base(id) != id || strings.ContainsAny(id, `/\`) {
		return nil, errors.Wrapf(ErrRunNotFound, "invalid run id %q", id)
	}
	if detail, ok := s.cache.Get(id); ok {
		return detail, nil
	}
	dir := filepath.Join(s.dir, id)
	summary, err := readSummary(dir)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrapf(ErrRunNotFound, "run %s", id)
		}
		return nil, err
	}
	detail := &RunDetail{Summary: summary, Files: make(map[string]string)}
	for key, name := range detailFiles {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		detail.Files[key] = Truncate(string(content), PreviewLimit)
	}
	s.cache.Add(id, detail)
	return detail, nil
}

func readSummary(dir string) (*Summary, error) {
	raw, err := os.ReadFile(filepath.Join(dir, summaryFile))
	if err != nil {
		return nil, errors.Wrap(err, "reading summary")
	}
	summary := &Summary{}
	if err := json.Unmarshal(raw, summary); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", filepath.Join(dir, summaryFile))
	}
	return summary, nil
}

// Truncate cuts s to limit characters and marks the cut with "...".
func Truncate(s string, limit int) string {
	short := encoding.Preview(s, limit)
	if short == s {
		return s
	}
	return short + "..."
}

func symbolLines(probs map[string]float64) string {
	lines := []string{"# symbol\tprobability"}
	for _, sym := range sortedKeys(probs) {
		lines = append(lines, fmt.Sprintf("%q\t%.10f", sym, probs[sym]))
	}
	return strings.Join(lines, "\n")
}

func codeLines(codes map[string]string) string {
	lines := []string{"# symbol\tcode"}
	for _, sym := range sortedKeys(codes) {
		lines = append(lines, fmt.Sprintf("%q\t%s", sym, codes[sym]))
	}
	return strings.Join(lines, "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
