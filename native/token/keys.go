package token

import (
	"encoding/hex"
	"strings"
)

var balancePrefix = []byte("token/balance/")

// balanceKey renders the storage key for one (mint, account) balance.
func balanceKey(mint string, addr []byte) []byte {
	var b strings.Builder
	b.Write(balancePrefix)
	b.WriteString(strings.ToUpper(strings.TrimSpace(mint)))
	b.WriteString("/")
	b.WriteString(hex.EncodeToString(addr))
	return []byte(b.String())
}
