// Package compliance provides PII/PHI detection and anonymization for
// scanned source trees.
//
// The detector finds personal data with a fixed table of regex
// patterns; the anonymizer masks or tokenizes it. Token state lives on
// an explicit TokenStore passed by reference, never in process-wide
// globals, so two anonymizers can run side by side without sharing
// state.
package compliance

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

// TokenStore holds the reversible tokenization state: value -> token
// and token -> value. Safe for concurrent use.
type TokenStore struct {
	mu      sync.RWMutex
	tokens  map[string]string // value -> token
	reverse map[string]string // token -> value
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens:  make(map[string]string),
		reverse: make(map[string]string),
	}
}

// Len returns the number of stored tokens.
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

func (s *TokenStore) lookup(value string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[value]
	return token, ok
}

func (s *TokenStore) put(value, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[value] = token
	s.reverse[token] = value
}

func (s *TokenStore) valueFor(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.reverse[token]
	return value, ok
}

// Anonymizer masks and tokenizes personal data for display, logging,
// and test fixture generation.
type Anonymizer struct {
	salt  string
	store *TokenStore
}

// NewAnonymizer creates an anonymizer writing tokens to store. A random
// salt is generated when salt is empty.
func NewAnonymizer(store *TokenStore, salt string) *Anonymizer {
	if salt == "" {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		salt = hex.EncodeToString(buf)
	}
	return &Anonymizer{salt: salt, store: store}
}

// MaskEmail masks the local part of an email address, preserving the
// first and last characters and the domain. Non-email input is returned
// unchanged.
func (a *Anonymizer) MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}

	var masked string
	if len(local) <= 2 {
		masked = strings.Repeat("*", len(local))
	} else {
		masked = local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:]
	}
	return masked + "@" + domain
}

// MaskPhone masks all but the last four digits, preserving the original
// formatting characters.
func (a *Anonymizer) MaskPhone(phone string) string {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 4 {
		return strings.Repeat("*", len(phone))
	}

	keepFrom := digits - 4
	seen := 0
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			if seen < keepFrom {
				b.WriteByte('*')
			} else {
				b.WriteRune(r)
			}
			seen++
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskSSN masks the area and group numbers, keeping the serial.
func (a *Anonymizer) MaskSSN(ssn string) string {
	if len(ssn) == 11 && ssn[3] == '-' && ssn[6] == '-' {
		return "***-**-" + ssn[7:]
	}
	if len(ssn) >= 4 {
		return strings.Repeat("*", len(ssn)-4) + ssn[len(ssn)-4:]
	}
	return strings.Repeat("*", len(ssn))
}

// MaskCreditCard keeps only the last four digits.
func (a *Anonymizer) MaskCreditCard(card string) string {
	var digits []byte
	for i := 0; i < len(card); i++ {
		if card[i] >= '0' && card[i] <= '9' {
			digits = append(digits, card[i])
		}
	}
	if len(digits) < 4 {
		return strings.Repeat("*", len(card))
	}
	return strings.Repeat("*", len(digits)-4) + string(digits[len(digits)-4:])
}

// AnonymizeText masks every PII pattern occurrence in text using the
// type-appropriate masker.
func (a *Anonymizer) AnonymizeText(text string) string {
	for _, pattern := range PIIPatterns {
		text = pattern.Regexp.ReplaceAllStringFunc(text, func(match string) string {
			switch pattern.Name {
			case "email":
				return a.MaskEmail(match)
			case "phone":
				return a.MaskPhone(match)
			case "ssn":
				return a.MaskSSN(match)
			case "credit_card":
				return a.MaskCreditCard(match)
			default:
				return a.HashAnonymize(match)
			}
		})
	}
	return text
}

// Tokenize replaces value with an opaque token. Reversible tokens are
// recorded in the store for Detokenize; irreversible tokens are salted
// hashes with no stored mapping. Tokenizing the same value twice with
// reversible set returns the same token.
func (a *Anonymizer) Tokenize(value string, reversible bool) string {
	if !reversible {
		return a.HashAnonymize(value)
	}

	if token, ok := a.store.lookup(value); ok {
		return token
	}

	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	token := "tok_" + hex.EncodeToString(buf)
	a.store.put(value, token)
	return token
}

// Detokenize returns the original value for a reversible token, or an
// error for unknown tokens.
func (a *Anonymizer) Detokenize(token string) (string, error) {
	value, ok := a.store.valueFor(token)
	if !ok {
		return "", fmt.Errorf("unknown token: %s", token)
	}
	return value, nil
}

// HashAnonymize produces a stable, irreversible 16-character identifier
// for value using the anonymizer's salt.
func (a *Anonymizer) HashAnonymize(value string) string {
	sum := sha256.Sum256([]byte(a.salt + value))
	return hex.EncodeToString(sum[:])[:16]
}
