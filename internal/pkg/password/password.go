package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	appErr "github.com/xxxsen/otpauth/internal/pkg/errors"
)

// Cost is the bcrypt work factor used for every stored credential.
const Cost = 10

func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches hash. A mismatch is not an error;
// only a malformed hash yields ErrHashFormat.
func Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Join(appErr.ErrHashFormat, err)
	}
}
