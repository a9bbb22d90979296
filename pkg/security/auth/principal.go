package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ClientPrincipalHeader is set by the hosting front door on authenticated
// requests.
const ClientPrincipalHeader = "x-ms-client-principal"

var ErrInvalidPrincipal = errors.New("invalid client principal")

// ClientPrincipal is the decoded identity header.
type ClientPrincipal struct {
	IdentityProvider string   `json:"identityProvider"`
	UserID           string   `json:"userId"`
	UserDetails      string   `json:"userDetails"`
	UserRoles        []string `json:"userRoles"`
}

// ParseClientPrincipal decodes the base64 JSON header value. A principal
// without a user id is rejected.
func ParseClientPrincipal(header string) (*ClientPrincipal, error) {
	if header == "" {
		return nil, fmt.Errorf("%w: empty header", ErrInvalidPrincipal)
	}
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrincipal, err)
	}
	var p ClientPrincipal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrincipal, err)
	}
	if p.UserID == "" {
		return nil, fmt.Errorf("%w: missing userId", ErrInvalidPrincipal)
	}
	return &p, nil
}

// EncodeClientPrincipal is the inverse of ParseClientPrincipal.
func EncodeClientPrincipal(p ClientPrincipal) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
