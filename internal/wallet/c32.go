package wallet

import (
	"crypto/sha256"
	"math/big"
)

const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Address versions for single-signature pay-to-public-key-hash.
const (
	VersionMainnet byte = 22
	VersionTestnet byte = 26
)

// c32Address encodes hash160 as a c32check address with the given version.
func c32Address(version byte, hash160 []byte) string {
	return "S" + c32CheckEncode(version, hash160)
}

func c32CheckEncode(version byte, data []byte) string {
	first := sha256.Sum256(append([]byte{version}, data...))
	second := sha256.Sum256(first[:])

	payload := make([]byte, 0, len(data)+4)
	payload = append(payload, data...)
	payload = append(payload, second[:4]...)

	return string(c32Alphabet[version]) + c32Encode(payload)
}

// c32Encode is base32 over the big-endian integer value of b, with one
// leading '0' per leading zero byte.
func c32Encode(b []byte) string {
	var zeros int
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}

	n := new(big.Int).SetBytes(b)
	base := big.NewInt(32)
	mod := new(big.Int)

	var digits []byte
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		digits = append(digits, c32Alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		digits = append(digits, '0')
	}

	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
