package chronoval

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	encNonceSize   = 12
	encSaltSize    = 32
	encKeySize     = 32
	encIterations  = 100000
	encBlobVersion = 1
)

// encMagic prefixes every encrypted blob, followed by a version byte and the
// key-derivation salt.
var encMagic = [4]byte{'C', 'V', 'E', '1'}

// EncryptionConfig configures encryption of stored history blobs.
type EncryptionConfig struct {
	// Enabled turns on blob encryption.
	Enabled bool `yaml:"enabled"`
	// Key is the raw AES-256 key (32 bytes). If empty, Password is used.
	Key []byte `yaml:"-"`
	// Password derives the key via PBKDF2 when Key is empty.
	Password string `yaml:"password"`
}

// Encryptor seals and opens history blobs with AES-GCM. A random nonce is
// generated per blob and prepended to the ciphertext; the key-derivation
// salt travels in the blob header so any store opened with the same password
// can decrypt.
type Encryptor struct {
	gcm  cipher.AEAD
	salt []byte
}

// NewEncryptor creates an encryptor from the config. Returns (nil, nil) when
// encryption is disabled.
func NewEncryptor(cfg EncryptionConfig) (*Encryptor, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	salt := make([]byte, encSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	var key []byte
	switch {
	case len(cfg.Key) > 0:
		if len(cfg.Key) != encKeySize {
			return nil, errors.New("encryption key must be 32 bytes for AES-256")
		}
		key = cfg.Key
	case cfg.Password != "":
		key = pbkdf2.Key([]byte(cfg.Password), salt, encIterations, encKeySize, sha256.New)
	default:
		return nil, errors.New("encryption enabled but no key or password provided")
	}

	return newEncryptor(key, salt)
}

// newEncryptorWithSalt rebuilds the encryptor for an existing blob's salt.
func newEncryptorWithSalt(cfg EncryptionConfig, salt []byte) (*Encryptor, error) {
	if len(cfg.Key) > 0 {
		return newEncryptor(cfg.Key, salt)
	}
	key := pbkdf2.Key([]byte(cfg.Password), salt, encIterations, encKeySize, sha256.New)
	return newEncryptor(key, salt)
}

func newEncryptor(key, salt []byte) (*Encryptor, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Encryptor{gcm: gcm, salt: salt}, nil
}

// Seal encrypts a plaintext blob into a self-describing encrypted blob:
// magic, version, salt, nonce, ciphertext.
func (e *Encryptor) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, encNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, 4+1+encSaltSize+encNonceSize+len(plaintext)+e.gcm.Overhead())
	out = append(out, encMagic[:]...)
	out = append(out, encBlobVersion)
	out = append(out, e.salt...)
	out = append(out, nonce...)
	return e.gcm.Seal(out, nonce, plaintext, nil), nil
}

// IsSealed reports whether a blob carries the encryption header.
func IsSealed(blob []byte) bool {
	return len(blob) >= 4 &&
		blob[0] == encMagic[0] && blob[1] == encMagic[1] &&
		blob[2] == encMagic[2] && blob[3] == encMagic[3]
}

// Unseal decrypts a blob produced by Seal, deriving the key from the blob's
// own salt when the config uses a password.
func Unseal(cfg EncryptionConfig, blob []byte) ([]byte, error) {
	headerLen := 4 + 1 + encSaltSize + encNonceSize
	if len(blob) < headerLen {
		return nil, errors.New("encrypted blob too short")
	}
	if !IsSealed(blob) {
		return nil, errors.New("not an encrypted blob")
	}
	if blob[4] != encBlobVersion {
		return nil, errors.New("unsupported encrypted blob version")
	}

	salt := blob[5 : 5+encSaltSize]
	nonce := blob[5+encSaltSize : headerLen]

	enc, err := newEncryptorWithSalt(cfg, salt)
	if err != nil {
		return nil, err
	}
	return enc.gcm.Open(nil, nonce, blob[headerLen:], nil)
}
