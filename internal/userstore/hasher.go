package userstore

import (
	"crypto/sha256"
	"encoding/hex"
)

// authKeySalt is global and non-secret. It is part of the on-disk
// credential format: changing it (or moving to per-user salts)
// invalidates every stored key.
const authKeySalt = "__H3l!X__"

// DeriveAuthKey derives the credential lookup key for a login/password
// pair: sha256(login || password || salt) as lowercase hex, prefixed
// with the login itself so two logins never share a key even with
// identical passwords. Pure and deterministic.
func DeriveAuthKey(login, password string) string {
	sum := sha256.Sum256([]byte(login + password + authKeySalt))
	return login + ":" + hex.EncodeToString(sum[:])
}
