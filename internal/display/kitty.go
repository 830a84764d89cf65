package display

import (
	"encoding/base64"
	"fmt"
	"io"
)

// Kitty graphics protocol: base64 data in escape-delimited chunks,
// m=1 marking continuation.
const (
	kittyStart = "\x1b_G"
	kittyEnd   = "\x1b\\"
	chunkSize  = 4096
)

func writeKitty(out io.Writer, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	encoded := base64.StdEncoding.EncodeToString(data)

	for first := true; len(encoded) > 0; first = false {
		n := min(len(encoded), chunkSize)
		chunk, rest := encoded[:n], encoded[n:]

		var params string
		switch {
		case first && rest == "":
			params = "a=T,f=100,q=2"
		case first:
			params = "a=T,f=100,q=2,m=1"
		case rest == "":
			params = "m=0"
		default:
			params = "m=1"
		}

		if _, err := fmt.Fprintf(out, "%s%s;%s%s", kittyStart, params, chunk, kittyEnd); err != nil {
			return err
		}
		encoded = rest
	}
	return nil
}
