package game

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
)

// Separator joins clientSeed, serverSeed and nonce before hashing.
const Separator = "-"

// Derive turns a (clientSeed, serverSeed, nonce) triple into a value in
// [0, 1]. It reaches 1 only when the first four digest bytes are all 0xFF;
// resolvers clamp that case into their last bucket.
func Derive(clientSeed, serverSeed string, nonce uint64) float64 {
	combined := clientSeed + Separator + serverSeed + Separator + strconv.FormatUint(nonce, 10)
	hash := sha256.Sum256([]byte(combined))
	return float64(binary.BigEndian.Uint32(hash[:4])) / float64(0xFFFFFFFF)
}
