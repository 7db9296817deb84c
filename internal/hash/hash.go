package hash

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when the user does not exist so that both
// login failure paths cost one bcrypt verification.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("product_hub-dummy-password"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func DummyCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
