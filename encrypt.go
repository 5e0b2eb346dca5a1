package replica

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
)

// Encryption errors.
var (
	ErrInvalidKeySize   = errors.New("invalid key size")
	ErrCiphertextShort  = errors.New("ciphertext too short")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Encryptor handles encryption/decryption operations.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: must be 16, 24, or 32 bytes, got %d", ErrInvalidKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal returns nonce || ciphertext.
func seal(gcm cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, gcm.NonceSize(), gcm.NonceSize()+len(plaintext)+gcm.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func open(gcm cipher.AEAD, sealed []byte) ([]byte, error) {
	n := gcm.NonceSize()
	if len(sealed) < n {
		return nil, ErrCiphertextShort
	}
	plaintext, err := gcm.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

type aesEncryptor struct {
	gcm cipher.AEAD
}

// AES returns an AES-GCM encryptor.
// Key must be 16, 24, or 32 bytes for AES-128, AES-192, or AES-256.
func AES(key []byte) (Encryptor, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return &aesEncryptor{gcm: gcm}, nil
}

func (e *aesEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	return seal(e.gcm, plaintext)
}

func (e *aesEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	return open(e.gcm, ciphertext)
}

type rsaEncryptor struct {
	pub  *rsa.PublicKey
	priv *rsa.PrivateKey
}

// RSA returns an RSA-OAEP encryptor. pub is needed to encrypt and priv to
// decrypt; either may be nil.
func RSA(pub *rsa.PublicKey, priv *rsa.PrivateKey) Encryptor {
	return &rsaEncryptor{pub: pub, priv: priv}
}

func (e *rsaEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	if e.pub == nil {
		return nil, errors.New("public key required for encryption")
	}
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, e.pub, plaintext, nil)
}

func (e *rsaEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if e.priv == nil {
		return nil, errors.New("private key required for decryption")
	}
	return rsa.DecryptOAEP(sha256.New(), rand.Reader, e.priv, ciphertext, nil)
}

// envelopeEncryptor seals every value under a fresh AES-256 data key and
// seals that key with the master key.
//
// Layout: [2-byte big-endian sealed key length][sealed key][sealed data].
type envelopeEncryptor struct {
	master cipher.AEAD
}

// Envelope returns an envelope encryptor using a master key of 16, 24, or
// 32 bytes.
func Envelope(masterKey []byte) (Encryptor, error) {
	gcm, err := newGCM(masterKey)
	if err != nil {
		return nil, err
	}
	return &envelopeEncryptor{master: gcm}, nil
}

func (e *envelopeEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	dataKey := make([]byte, 32)
	if _, err := rand.Read(dataKey); err != nil {
		return nil, err
	}
	dataGCM, err := newGCM(dataKey)
	if err != nil {
		return nil, err
	}
	data, err := seal(dataGCM, plaintext)
	if err != nil {
		return nil, err
	}
	key, err := seal(e.master, dataKey)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 2, 2+len(key)+len(data))
	binary.BigEndian.PutUint16(out, uint16(len(key))) // #nosec G115 -- a sealed 32-byte key is 60 bytes
	out = append(out, key...)
	return append(out, data...), nil
}

func (e *envelopeEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < 2 {
		return nil, ErrCiphertextShort
	}
	n := int(binary.BigEndian.Uint16(ciphertext))
	if len(ciphertext) < 2+n {
		return nil, ErrCiphertextShort
	}

	dataKey, err := open(e.master, ciphertext[2:2+n])
	if err != nil {
		return nil, fmt.Errorf("data key: %w", err)
	}
	dataGCM, err := newGCM(dataKey)
	if err != nil {
		return nil, err
	}
	return open(dataGCM, ciphertext[2+n:])
}
