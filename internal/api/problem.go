package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/repository"
)

const problemContentType = "application/problem+json"

// Problem is an RFC 7807 problem document. Error repeats Detail for the
// storefront scripts, which read payload.error.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Error    string `json:"error"`
}

func writeProblem(c *gin.Context, status int, detail string) {
	problem := Problem{
		Type:     fmt.Sprintf("about:blank#%d", status),
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request.URL.Path,
		Error:    detail,
	}

	body, err := json.Marshal(problem)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Abort()
	c.Data(status, problemContentType, body)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, method string, err error) {
	var (
		validationErr *domain.ValidationError
		configErr     *domain.ConfigurationError
		providerErr   *domain.ProviderError
	)

	switch {
	case errors.As(err, &validationErr):
		writeProblem(c, http.StatusBadRequest, validationErr.Message)

	case errors.Is(err, repository.ErrNotFound), errors.Is(err, errProductNotFound):
		writeProblem(c, http.StatusNotFound, "Registro não encontrado.")

	case errors.As(err, &configErr):
		slog.Error("configuration error",
			"method", method,
			"error", err)
		writeProblem(c, http.StatusServiceUnavailable, "Pagamento indisponível no momento.")

	case errors.As(err, &providerErr):
		slog.Error("payment provider error",
			"method", method,
			"error", err)
		writeProblem(c, http.StatusBadGateway, "Falha ao comunicar com o provedor de pagamento.")

	default:
		slog.Error("request failed",
			"method", method,
			"error", err)
		writeProblem(c, http.StatusInternalServerError, "Falha ao processar a solicitação.")
	}
}
