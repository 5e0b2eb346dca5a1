package replica

import "fmt"

// EncryptAlgo names a symmetric cipher that EncryptorFor can build from a key.
type EncryptAlgo string

const (
	// EncryptAES uses AES-GCM with the key directly.
	EncryptAES EncryptAlgo = "aes"

	// EncryptEnvelope seals each value under a fresh data key, itself sealed
	// with the master key.
	EncryptEnvelope EncryptAlgo = "envelope"
)

// HashAlgo names a built-in hasher.
type HashAlgo string

const (
	// HashArgon2 uses Argon2id (salted, slow).
	HashArgon2 HashAlgo = "argon2"

	// HashBcrypt uses bcrypt (salted, slow).
	HashBcrypt HashAlgo = "bcrypt"

	// HashSHA256 uses SHA-256. Deterministic, so equal inputs stay joinable.
	HashSHA256 HashAlgo = "sha256"

	// HashSHA512 uses SHA-512.
	HashSHA512 HashAlgo = "sha512"

	// HashBLAKE2b uses BLAKE2b-256, the digest behind Fingerprint.
	HashBLAKE2b HashAlgo = "blake2b"
)

var validEncryptAlgos = map[EncryptAlgo]bool{
	EncryptAES:      true,
	EncryptEnvelope: true,
}

var validHashAlgos = map[HashAlgo]bool{
	HashArgon2:  true,
	HashBcrypt:  true,
	HashSHA256:  true,
	HashSHA512:  true,
	HashBLAKE2b: true,
}

var validMaskTypes = map[MaskType]bool{
	MaskSSN:   true,
	MaskEmail: true,
	MaskPhone: true,
	MaskCard:  true,
	MaskIP:    true,
	MaskUUID:  true,
	MaskIBAN:  true,
	MaskName:  true,
}

// IsValidEncryptAlgo returns true if the algorithm is a known encryption algorithm.
func IsValidEncryptAlgo(algo EncryptAlgo) bool {
	return validEncryptAlgos[algo]
}

// IsValidHashAlgo returns true if the algorithm is a known hash algorithm.
func IsValidHashAlgo(algo HashAlgo) bool {
	return validHashAlgos[algo]
}

// IsValidMaskType returns true if the type is a known mask type.
func IsValidMaskType(mt MaskType) bool {
	return validMaskTypes[mt]
}

// HasherFor returns the built-in hasher for algo.
func HasherFor(algo HashAlgo) (Hasher, error) {
	switch algo {
	case HashArgon2:
		return Argon2(), nil
	case HashBcrypt:
		return Bcrypt(), nil
	case HashSHA256:
		return SHA256Hasher(), nil
	case HashSHA512:
		return SHA512Hasher(), nil
	case HashBLAKE2b:
		return BLAKE2bHasher(), nil
	}
	return nil, fmt.Errorf("%w: hash %q", ErrUnknownAlgorithm, algo)
}

// MaskerFor returns the built-in masker for mt.
func MaskerFor(mt MaskType) (Masker, error) {
	if m, ok := builtinMaskers[mt]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: mask %q", ErrUnknownAlgorithm, mt)
}

// EncryptorFor builds a cipher for algo keyed with key.
func EncryptorFor(algo EncryptAlgo, key []byte) (Encryptor, error) {
	switch algo {
	case EncryptAES:
		return AES(key)
	case EncryptEnvelope:
		return Envelope(key)
	}
	return nil, fmt.Errorf("%w: cipher %q", ErrUnknownAlgorithm, algo)
}
