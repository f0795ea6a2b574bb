package middleware

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"
)

// SecretTokenHeader carries the secret_token given to setWebhook
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecretMiddleware rejects webhook calls that do not carry secret.
// An empty secret disables the check.
func WebhookSecretMiddleware(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(SecretTokenHeader)
			if token == "" {
				logger.Debug("Missing webhook secret token", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusUnauthorized, "missing secret token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				logger.Warn("Invalid webhook secret token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				RespondWithError(w, http.StatusUnauthorized, "invalid secret token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
