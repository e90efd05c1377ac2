package corpus

import (
	"encoding/hex"
	"io"
	"strconv"

	"golang.org/x/crypto/sha3"

	"github.com/kalkar/skewscan/internal/model"
)

// Digest fingerprints the corpus contents with SHA3-256. Pages are hashed in
// id order with length prefixes, so two corpora have the same digest exactly
// when they hold the same ids with the same lines.
func Digest(c model.Corpus) string {
	h := sha3.New256()
	for _, page := range c.Pages() {
		writeField(h, page.ID)
		_, _ = h.Write([]byte(strconv.Itoa(len(page.Lines))))
		for _, line := range page.Lines {
			writeField(h, line)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h io.Writer, s string) {
	_, _ = h.Write([]byte(strconv.Itoa(len(s))))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(s))
}
