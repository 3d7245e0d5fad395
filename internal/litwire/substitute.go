// internal/litwire/substitute.go
package litwire

import (
	"bytes"

	"github.com/loop/accessctl/internal/types"
)

// SubstituteTokenID replaces the pre-mint placeholder in a serialized
// condition array with the video's real on-chain token id. The substitution
// is textual: the serialized form is what gets encrypted into metadata, and
// the placeholder must survive every conversion before this point verbatim.
func SubstituteTokenID(serialized []byte, tokenID string) []byte {
	return bytes.ReplaceAll(serialized, []byte(types.TokenPlaceholder), []byte(tokenID))
}
