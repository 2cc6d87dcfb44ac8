package domain

// Identity is the bare authenticated identity issued by the identity
// provider. It carries only what the provider knows; the full profile is the
// corresponding Member record.
type Identity struct {
	Subject SubjectID
	Email   string

	// AccessToken is the provider-issued bearer token for this identity.
	AccessToken string
}

// Session is the transient authenticated actor recognized by the running
// instance. Profile is nil while only the provisional identity is known.
type Session struct {
	Identity Identity
	Profile  *Member
}
