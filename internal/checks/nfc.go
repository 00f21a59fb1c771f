package checks

import (
	"golang.org/x/text/unicode/norm"
)

const NFCName = "unicode-nfc"

// nfc reports lines that are not in Unicode normalization form C and
// proposes the normalized line as a replacement.
type nfc struct{}

func (*nfc) Name() string { return NFCName }

func (*nfc) Check(c *Context) error {
	content := c.File().Content
	lines(c, func(start, end uint32) {
		line := content[start:end]
		if norm.NFC.IsNormal(line) {
			return
		}
		first := uint32(norm.NFC.QuickSpan(line)) // #nosec G115 -- bounded by line length
		c.Report(start, "line is not in Unicode normalization form C").
			Replace(start, end-start, string(norm.NFC.Bytes(line))).
			Note(start+first, "first character needing normalization").
			Emit()
	})
	return nil
}
