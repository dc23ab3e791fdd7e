// Package storekit is a local stand-in for the platform app store: it sells
// the recognized plans, keeps a transaction ledger and issues signed
// transactions that the entitlement resolver verifies.
package storekit

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cocoacalm/internal/entitlement"
	"cocoacalm/internal/models"
)

const issuer = "cocoacalm-storekit"

// ErrInvalidToken is returned for transactions that fail verification.
var ErrInvalidToken = errors.New("storekit: invalid transaction token")

type transactionClaims struct {
	ProductID             string `json:"productId"`
	OriginalTransactionID string `json:"originalTransactionId"`
	PurchaseDate          int64  `json:"purchaseDate"`
	ExpiresDate           *int64 `json:"expiresDate,omitempty"`
	RevocationDate        *int64 `json:"revocationDate,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues HS256-signed transactions.
type Signer struct {
	key []byte
}

func NewSigner(key []byte) *Signer {
	return &Signer{key: key}
}

func (s *Signer) Sign(tx models.Transaction) (entitlement.SignedTransaction, error) {
	claims := transactionClaims{
		ProductID:             tx.ProductID,
		OriginalTransactionID: tx.OriginalTransactionID,
		PurchaseDate:          tx.PurchaseDate.UnixMilli(),
		ExpiresDate:           millis(tx.ExpiresDate),
		RevocationDate:        millis(tx.RevocationDate),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       tx.TransactionID,
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(tx.PurchaseDate),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}
	return entitlement.SignedTransaction(token), nil
}

// Verifier checks signature, algorithm and issuer before trusting a
// transaction.
type Verifier struct {
	key []byte
}

func NewVerifier(key []byte) *Verifier {
	return &Verifier{key: key}
}

func (v *Verifier) Verify(signed entitlement.SignedTransaction) (models.Transaction, error) {
	var claims transactionClaims
	_, err := jwt.ParseWithClaims(string(signed), &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.ProductID == "" {
		return models.Transaction{}, fmt.Errorf("%w: missing transaction id or product", ErrInvalidToken)
	}

	return models.Transaction{
		TransactionID:         claims.ID,
		OriginalTransactionID: claims.OriginalTransactionID,
		ProductID:             claims.ProductID,
		PurchaseDate:          time.UnixMilli(claims.PurchaseDate).UTC(),
		ExpiresDate:           fromMillis(claims.ExpiresDate),
		RevocationDate:        fromMillis(claims.RevocationDate),
	}, nil
}

func millis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func fromMillis(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}
