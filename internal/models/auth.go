package models

import "github.com/golang-jwt/jwt/v5"

// AdminClaims is the payload of the bearer token guarding timetable edits.
type AdminClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
