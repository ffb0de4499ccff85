package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// usernameFromToken reads the GitLab username from the OpenID id_token that
// accompanies a token response when the openid scope was granted. The token
// came straight from the token endpoint over TLS, so its signature is not
// re-verified; the value is only used for display.
func usernameFromToken(tok *oauth2.Token) string {
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}

	for _, key := range []string{"nickname", "preferred_username"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
