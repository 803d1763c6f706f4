// Package boltstore implements securestore.Store on a single bbolt file with
// values sealed by AES-GCM. The key is derived from a passphrase with scrypt;
// the salt and a passphrase verifier live in a meta bucket inside the same
// file, so the store is a single self-contained artifact on disk.
package boltstore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/scrypt"

	"github.com/nommy-app/employee-session/securestore"
)

var (
	bucketCredentials = []byte("credentials")
	bucketMeta        = []byte("meta")
	metaSalt          = []byte("salt")
	metaVerifier      = []byte("verifier")
)

const (
	saltLength = 16
	scryptN    = 1 << 15
	scryptR    = 8
	scryptP    = 1
	keyLength  = 32
)

// verifierPlaintext is sealed and stored on first open so a later open with
// the wrong passphrase fails up front instead of on the first Get.
var verifierPlaintext = []byte("employee-session")

// ErrWrongPassphrase is returned by Open when the passphrase cannot unseal
// an existing store file.
var ErrWrongPassphrase = errors.New("wrong passphrase")

var _ securestore.Store = (*Store)(nil)

type Store struct {
	db   *bolt.DB
	aead cipher.AEAD
}

// Open opens or creates the store file at path, deriving the sealing key
// from passphrase.
func Open(path, passphrase string) (*Store, error) {
	if passphrase == "" {
		return nil, errors.New("[boltstore.Open] passphrase is required")
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[boltstore.Open] bolt.Open")
	}

	store := &Store{db: db}
	if err := store.initialise(passphrase); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initialise(passphrase string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return errors.Wrap(err, "[boltstore.initialise] create meta bucket")
		}
		if _, err := tx.CreateBucketIfNotExists(bucketCredentials); err != nil {
			return errors.Wrap(err, "[boltstore.initialise] create credentials bucket")
		}

		salt := meta.Get(metaSalt)
		if salt == nil {
			salt = make([]byte, saltLength)
			if _, err := io.ReadFull(rand.Reader, salt); err != nil {
				return errors.Wrap(err, "[boltstore.initialise] rand.Read salt")
			}
			if err := meta.Put(metaSalt, salt); err != nil {
				return errors.Wrap(err, "[boltstore.initialise] put salt")
			}
		}

		key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keyLength)
		if err != nil {
			return errors.Wrap(err, "[boltstore.initialise] scrypt.Key")
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return errors.Wrap(err, "[boltstore.initialise] aes.NewCipher")
		}
		s.aead, err = cipher.NewGCM(block)
		if err != nil {
			return errors.Wrap(err, "[boltstore.initialise] cipher.NewGCM")
		}

		verifier := meta.Get(metaVerifier)
		if verifier == nil {
			sealed, err := s.seal(verifierPlaintext)
			if err != nil {
				return errors.Wrap(err, "[boltstore.initialise] seal verifier")
			}
			return errors.Wrap(meta.Put(metaVerifier, sealed), "[boltstore.initialise] put verifier")
		}
		if _, err := s.unseal(verifier); err != nil {
			return ErrWrongPassphrase
		}
		return nil
	})
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		sealed := tx.Bucket(bucketCredentials).Get([]byte(key))
		if sealed == nil {
			return nil
		}
		plain, err := s.unseal(sealed)
		if err != nil {
			return errors.Wrapf(err, "[boltstore.Get] unseal %q", key)
		}
		value = string(plain)
		return nil
	})
	return value, err
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sealed, err := s.seal([]byte(value))
	if err != nil {
		return errors.Wrapf(err, "[boltstore.Set] seal %q", key)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCredentials).Put([]byte(key), sealed)
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCredentials).Delete([]byte(key))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plain, nil), nil
}

func (s *Store) unseal(sealed []byte) ([]byte, error) {
	if len(sealed) < s.aead.NonceSize() {
		return nil, errors.New("sealed value too short")
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	return s.aead.Open(nil, nonce, ciphertext, nil)
}
