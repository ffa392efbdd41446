package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/models"
	"github.com/popeskul/spinecheck/internal/repository"
)

const (
	CronSecretHeader    = "X-Cron-Secret"
	InboundSecretHeader = "X-Webhook-Secret"

	operatorKey contextKey = "operator"
)

// OperatorLookup resolves the hex SHA-256 of an API key to its operator.
type OperatorLookup interface {
	GetByKeyHash(ctx context.Context, keyHash string) (*models.Operator, error)
}

// HashAPIKey returns the stored form of an operator API key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// OperatorAuth admits requests bearing "Authorization: Bearer <key>" for an enabled operator
// whose role may run check-ins.
func OperatorAuth(lookup OperatorLookup, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := bearerToken(r.Header.Get("Authorization"))
			if key == "" {
				unauthorized(w, r)
				return
			}

			op, err := lookup.GetByKeyHash(r.Context(), HashAPIKey(key))
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					unauthorized(w, r)
					return
				}
				logger.Error("Operator lookup failed",
					zap.String("requestID", GetRequestID(r.Context())),
					zap.Error(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, map[string]interface{}{
					"error":   ErrorCodeInternal,
					"message": ErrorMessageInternal,
				})
				return
			}
			if !op.Role.CanOperate() {
				logger.Warn("Operator role not permitted",
					zap.Int64("operatorID", op.ID),
					zap.String("role", string(op.Role)))
				unauthorized(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey, op)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOperator returns the operator admitted by OperatorAuth, or nil.
func GetOperator(ctx context.Context) *models.Operator {
	op, _ := ctx.Value(operatorKey).(*models.Operator)
	return op
}

// SharedSecret admits requests whose header matches secret. An empty secret rejects everything.
func SharedSecret(header, secret string) func(next http.Handler) http.Handler {
	want := sha256.Sum256([]byte(secret))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := sha256.Sum256([]byte(r.Header.Get(header)))
			if secret == "" || subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="spinecheck"`)
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]interface{}{
		"error":   ErrorCodeUnauthorized,
		"message": ErrorMessageUnauthorized,
	})
}
