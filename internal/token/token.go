// Package token signs and verifies the stateless reply tokens embedded in check-in links.
//
// A token is two base64url segments joined by a dot: the JSON claims and an HMAC-SHA256 of
// the encoded claims. The payload is not confidential; only integrity is enforced.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/popeskul/spinecheck/internal/clock"
	"github.com/popeskul/spinecheck/internal/models"
)

var (
	// ErrInvalidToken is returned for tampered, expired, malformed or incomplete tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidPayload is returned by Sign for payloads that could never verify.
	ErrInvalidPayload = errors.New("invalid token payload")
	ErrNoSecrets      = errors.New("at least one signing secret is required")
)

var encoding = base64.RawURLEncoding.Strict()

// Payload is what a reply token asserts.
type Payload struct {
	AssessmentID string        `json:"assessment_id"`
	Day          models.Day    `json:"day"`
	Value        models.Branch `json:"value"`
}

func (p Payload) validate() error {
	if p.AssessmentID == "" {
		return fmt.Errorf("%w: assessment_id is required", ErrInvalidPayload)
	}
	if !p.Day.IsValid() {
		return fmt.Errorf("%w: day %d is not a check-in day", ErrInvalidPayload, p.Day)
	}
	if !p.Value.IsValid() {
		return fmt.Errorf("%w: value %q is not a branch", ErrInvalidPayload, p.Value)
	}
	return nil
}

// claims uses pointers so absent fields are rejected instead of zero-filled.
type claims struct {
	AssessmentID *string `json:"assessment_id"`
	Day          *int    `json:"day"`
	Value        *string `json:"value"`
	IssuedAt     int64   `json:"iat"`
	ExpiresAt    int64   `json:"exp,omitempty"`
}

// SecretProvider supplies signing keys. The first key signs; every key verifies.
type SecretProvider interface {
	Keys() [][]byte
}

// StaticSecrets is a fixed, ordered key list.
type StaticSecrets [][]byte

func (s StaticSecrets) Keys() [][]byte { return s }

// SecretsFromStrings builds StaticSecrets, dropping blank entries.
func SecretsFromStrings(secrets []string) StaticSecrets {
	keys := make(StaticSecrets, 0, len(secrets))
	for _, s := range secrets {
		if s = strings.TrimSpace(s); s != "" {
			keys = append(keys, []byte(s))
		}
	}
	return keys
}

// Codec signs and verifies reply tokens.
type Codec struct {
	secrets SecretProvider
	ttl     time.Duration
	clock   clock.Clock
}

type Option func(*Codec)

// WithTTL sets the token lifetime. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) { c.ttl = ttl }
}

func WithClock(clk clock.Clock) Option {
	return func(c *Codec) { c.clock = clk }
}

func NewCodec(secrets SecretProvider, opts ...Option) (*Codec, error) {
	if secrets == nil || len(secrets.Keys()) == 0 {
		return nil, ErrNoSecrets
	}
	c := &Codec{
		secrets: secrets,
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Sign returns a token asserting p.
func (c *Codec) Sign(p Payload) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	keys := c.secrets.Keys()
	if len(keys) == 0 {
		return "", ErrNoSecrets
	}

	now := c.clock.Now()
	day := int(p.Day)
	value := string(p.Value)
	cl := claims{
		AssessmentID: &p.AssessmentID,
		Day:          &day,
		Value:        &value,
		IssuedAt:     now.Unix(),
	}
	if c.ttl > 0 {
		cl.ExpiresAt = now.Add(c.ttl).Unix()
	}

	raw, err := json.Marshal(cl)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}
	body := encoding.EncodeToString(raw)
	return body + "." + encoding.EncodeToString(mac(keys[0], body)), nil
}

// Verify checks tok and returns its payload. Every failure is ErrInvalidToken.
func (c *Codec) Verify(tok string) (Payload, error) {
	body, sigPart, ok := strings.Cut(tok, ".")
	if !ok || body == "" || sigPart == "" || strings.Contains(sigPart, ".") {
		return Payload{}, fmt.Errorf("%w: malformed", ErrInvalidToken)
	}
	sig, err := encoding.DecodeString(sigPart)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: malformed signature", ErrInvalidToken)
	}
	if !c.signatureMatches(body, sig) {
		return Payload{}, fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	}

	raw, err := encoding.DecodeString(body)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: malformed body", ErrInvalidToken)
	}
	var cl claims
	if err := json.Unmarshal(raw, &cl); err != nil {
		return Payload{}, fmt.Errorf("%w: malformed claims", ErrInvalidToken)
	}
	if cl.AssessmentID == nil || cl.Day == nil || cl.Value == nil {
		return Payload{}, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	if cl.ExpiresAt != 0 && !c.clock.Now().Before(time.Unix(cl.ExpiresAt, 0)) {
		return Payload{}, fmt.Errorf("%w: expired", ErrInvalidToken)
	}

	p := Payload{
		AssessmentID: *cl.AssessmentID,
		Day:          models.Day(*cl.Day),
		Value:        models.Branch(*cl.Value),
	}
	if err := p.validate(); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return p, nil
}

func (c *Codec) signatureMatches(body string, sig []byte) bool {
	for _, key := range c.secrets.Keys() {
		if hmac.Equal(sig, mac(key, body)) {
			return true
		}
	}
	return false
}

func mac(key []byte, body string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(body))
	return h.Sum(nil)
}
