package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// OperatorClaims are the JWT claims of an operator token issued by the login service
type OperatorClaims struct {
	OperatorID string `json:"operator_id"`
	Username   string `json:"username"`
	jwt.RegisteredClaims
}
