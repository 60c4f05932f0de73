package domain

// Role mirrors the single-letter role marker kept by the legacy directory.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// RoleFromMarker maps the directory's marker to a role. Anything other
// than "A" is a regular end-user.
func RoleFromMarker(marker string) Role {
	if marker == "A" {
		return RoleAdmin
	}
	return RoleUser
}

// Administrator identifies a directory account with the admin marker.
// The username doubles as the stable assignment identity.
type Administrator struct {
	UserCode int64
	Username string
}

// DirectoryUser is any account known to the legacy directory.
type DirectoryUser struct {
	UserCode int64
	Username string
}

// Credential is the stored secret for one user code: an AES-CBC encrypted
// password blob plus the role marker, both verbatim from the directory.
type Credential struct {
	EncryptedPassword []byte
	RoleMarker        string
}
