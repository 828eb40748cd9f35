// Package extcrypto provides hashing functions for expressions.
// All functions use only the Go standard library.
//
// Security note: MD5 and SHA-1 are provided for compatibility/fingerprinting only
// and should NOT be used for cryptographic security purposes.
package extcrypto

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // intentional: provided for non-security fingerprinting
	"crypto/sha1" //nolint:gosec // intentional
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/sandrolain/goexpr/pkg/functions"
	"github.com/sandrolain/goexpr/pkg/types"
)

// All returns all cryptographic function definitions.
func All() functions.Set {
	return functions.Set{
		Hash(),
		HMAC(),
	}
}

// Hash returns the definition for hash(str, algorithm).
// Supported algorithms: "md5", "sha1", "sha256", "sha384", "sha512".
// Returns a lowercase hex-encoded digest.
func Hash() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:       "hash",
		ReturnType: types.ReturnString,
		MinArgs:    2,
		MaxArgs:    2,
		Fn: func(args ...any) (any, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("hash: first argument must be a string")
			}
			algorithm, ok := args[1].(string)
			if !ok {
				return nil, fmt.Errorf("hash: second argument (algorithm) must be a string")
			}
			newHash, err := hasher(algorithm)
			if err != nil {
				return nil, fmt.Errorf("hash: %w", err)
			}
			h := newHash()
			h.Write([]byte(str))
			return hex.EncodeToString(h.Sum(nil)), nil
		},
	}
}

// HMAC returns the definition for hmac(str, key, algorithm).
// Returns a lowercase hex-encoded HMAC.
// Supported algorithms: "md5", "sha1", "sha256", "sha384", "sha512".
func HMAC() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:       "hmac",
		ReturnType: types.ReturnString,
		MinArgs:    3,
		MaxArgs:    3,
		Fn: func(args ...any) (any, error) {
			str, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("hmac: first argument must be a string")
			}
			key, ok := args[1].(string)
			if !ok {
				return nil, fmt.Errorf("hmac: second argument (key) must be a string")
			}
			algorithm, ok := args[2].(string)
			if !ok {
				return nil, fmt.Errorf("hmac: third argument (algorithm) must be a string")
			}
			newHash, err := hasher(algorithm)
			if err != nil {
				return nil, fmt.Errorf("hmac: %w", err)
			}
			mac := hmac.New(newHash, []byte(key))
			mac.Write([]byte(str))
			return hex.EncodeToString(mac.Sum(nil)), nil
		},
	}
}

func hasher(algorithm string) (func() hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "md5":
		return md5.New, nil //nolint:gosec
	case "sha1":
		return sha1.New, nil //nolint:gosec
	case "sha256":
		return sha256.New, nil
	case "sha384":
		return sha512.New384, nil
	case "sha512":
		return sha512.New, nil
	}
	return nil, fmt.Errorf("unsupported algorithm %q; use md5, sha1, sha256, sha384, or sha512", algorithm)
}
