// salt.go - password-stretching salt (external collaborator)
package atomcrypte

// Salt is the random value mixed into Argon2 password stretching.
type Salt []byte

// GenerateSalt returns a fresh random salt of wireSaltLen bytes.
func GenerateSalt() (Salt, error) {
	buf, err := randomBytes(wireSaltLen)
	if err != nil {
		return nil, err
	}
	return Salt(buf), nil
}
