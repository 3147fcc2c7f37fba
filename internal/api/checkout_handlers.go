package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/pixshop/internal/checkout"
	"github.com/nikolayk812/pixshop/internal/domain"
)

func (s *Server) finalize(c *gin.Context) {
	var req checkout.FinalizeRequest
	if err := c.ShouldBind(&req); err != nil {
		writeProblem(c, http.StatusBadRequest, "Dados inválidos.")
		return
	}

	result, err := s.deps.Checkout.Finalize(c.Request.Context(), sessionID(c), req)
	if err != nil {
		writeError(c, "Server.finalize", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) orderStatus(c *gin.Context) {
	orderID, err := parseOrderID(c)
	if err != nil {
		writeError(c, "Server.orderStatus", err)
		return
	}

	view, err := s.deps.Engine.PollStatus(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, "Server.orderStatus", fmt.Errorf("engine.PollStatus: %w", err))
		return
	}

	c.JSON(http.StatusOK, view)
}

func parseOrderID(c *gin.Context) (int64, error) {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		return 0, domain.NewValidationError("order_id", "Pedido inválido.")
	}
	return orderID, nil
}
