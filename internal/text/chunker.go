package text

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1500
	DefaultMinChunkSize = 200
	DefaultOverlapSize  = 200
)

// Chunk is a bounded segment of a larger document, prepared for embedding.
// Text carries the injected overlap markers; Metadata always carries
// chunk_index and total_chunks for traceability back to the source document.
type Chunk struct {
	Text     string
	Index    int
	Metadata map[string]interface{}
}

// Chunker splits extracted document text into overlapping, size-bounded
// segments. It is stateless; a fresh call re-chunks from scratch.
type Chunker struct {
	ChunkSize    int
	MinChunkSize int
	OverlapSize  int
}

func NewChunker() *Chunker {
	return &Chunker{
		ChunkSize:    DefaultChunkSize,
		MinChunkSize: DefaultMinChunkSize,
		OverlapSize:  DefaultOverlapSize,
	}
}

var paragraphRe = regexp.MustCompile(`\n[ \t]*\n+`)

// Chunk splits text into chunks: paragraphs first, oversized paragraphs by
// sentence, small pieces merged forward (capped at 1.5x chunk size), anything
// still oversized re-split by sentence and finally by word. Interior chunks
// get the tail of the previous chunk and the head of the next one injected as
// textual continuation markers, so the embedded text intentionally differs
// from the source text. Empty or whitespace-only input yields no chunks.
func (c *Chunker) Chunk(text string, metadata map[string]interface{}) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var pieces []string
	for _, para := range paragraphRe.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) > c.ChunkSize {
			pieces = append(pieces, splitSentences(para)...)
		} else {
			pieces = append(pieces, para)
		}
	}

	pieces = c.mergeSmall(pieces)

	var cores []string
	for _, piece := range pieces {
		if len(piece) > c.ChunkSize {
			cores = append(cores, c.splitOversized(piece)...)
		} else {
			cores = append(cores, piece)
		}
	}

	var survivors []string
	for _, core := range cores {
		if trimmed := strings.TrimSpace(core); trimmed != "" {
			survivors = append(survivors, trimmed)
		}
	}

	total := len(survivors)
	chunks := make([]Chunk, 0, total)
	for i, core := range survivors {
		var b strings.Builder
		if i > 0 {
			b.WriteString("[...Continued from: ")
			b.WriteString(tailRunes(survivors[i-1], c.OverlapSize))
			b.WriteString("]\n\n")
		}
		b.WriteString(core)
		if i < total-1 {
			b.WriteString("\n\n[Continued: ")
			b.WriteString(headRunes(survivors[i+1], c.OverlapSize))
			b.WriteString("]")
		}

		md := make(map[string]interface{}, len(metadata)+2)
		for k, v := range metadata {
			md[k] = v
		}
		md["chunk_index"] = i
		md["total_chunks"] = total

		chunks = append(chunks, Chunk{Text: b.String(), Index: i, Metadata: md})
	}

	return chunks
}

// mergeSmall merges consecutive pieces shorter than MinChunkSize into their
// successor, as long as the merged size stays within 1.5x ChunkSize.
func (c *Chunker) mergeSmall(pieces []string) []string {
	limit := c.ChunkSize + c.ChunkSize/2

	var out []string
	pending := ""
	for _, piece := range pieces {
		if pending == "" {
			pending = piece
			continue
		}
		if len(pending) < c.MinChunkSize && len(pending)+len(piece)+2 <= limit {
			pending = pending + "\n\n" + piece
			continue
		}
		out = append(out, pending)
		pending = piece
	}
	if pending != "" {
		out = append(out, pending)
	}
	return out
}

// splitOversized packs the sentences of an oversized piece into chunks of at
// most ChunkSize. A single sentence over ChunkSize is split on word
// boundaries; a single word over ChunkSize passes through unsplit.
func (c *Chunker) splitOversized(piece string) []string {
	var out []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	for _, sentence := range splitSentences(piece) {
		if len(sentence) > c.ChunkSize {
			flush()
			out = append(out, packWords(sentence, c.ChunkSize)...)
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(sentence)+1 > c.ChunkSize {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(sentence)
	}
	flush()
	return out
}

// splitSentences cuts on '.', '!' or '?' followed by whitespace, keeping the
// punctuation attached to the sentence that precedes it. The punctuation
// characters are ASCII, so byte indexing is UTF-8 safe here.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		ch := text[i]
		if (ch == '.' || ch == '!' || ch == '?') && isSpaceByte(text[i+1]) {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// packWords greedily packs words until the running size would exceed maxLen.
// A single word longer than maxLen becomes its own chunk.
func packWords(sentence string, maxLen int) []string {
	var out []string
	var cur strings.Builder
	for _, word := range strings.Fields(sentence) {
		if cur.Len() > 0 && cur.Len()+len(word)+1 > maxLen {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// tailRunes returns the last n runes of s. Overlap is measured in characters,
// so slicing must land on rune boundaries or multi-byte text would be cut
// mid-sequence.
func tailRunes(s string, n int) string {
	i := len(s)
	for n > 0 && i > 0 {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		n--
	}
	return s[i:]
}

// headRunes returns the first n runes of s.
func headRunes(s string, n int) string {
	i := 0
	for n > 0 && i < len(s) {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n--
	}
	return s[:i]
}
