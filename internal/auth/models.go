package auth

// User is an authentication principal. Users are provisioned out of band;
// this service only reads them.
type User struct {
	Username     string
	PasswordHash string
}

// TokenResult is what a successful login returns.
type TokenResult struct {
	AccessToken string
	TokenType   string
}
