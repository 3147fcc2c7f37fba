package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/pixshop/internal/cart"
	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/samber/lo"
)

var errProductNotFound = errors.New("product not found")

type productResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cause       string `json:"cause"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
}

type cartResponse struct {
	Message string             `json:"message,omitempty"`
	Cart    domain.CartSummary `json:"cart"`
}

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.deps.Catalog.ListActiveProducts(c.Request.Context())
	if err != nil {
		writeError(c, "Server.listProducts", fmt.Errorf("catalog.ListActiveProducts: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": lo.Map(products, func(p domain.Product, _ int) productResponse {
			return productResponse{
				ID:          p.ID,
				Name:        p.Name,
				Description: p.Description,
				Cause:       p.Cause,
				Price:       p.Price.StringFixed(2),
				ImageURL:    p.ImageURL,
			}
		}),
	})
}

func (s *Server) getCart(c *gin.Context) {
	summary, err := s.summarizeSession(c, sessionID(c))
	if err != nil {
		writeError(c, "Server.getCart", err)
		return
	}

	c.JSON(http.StatusOK, cartResponse{Cart: summary})
}

func (s *Server) addToCart(c *gin.Context) {
	ctx := c.Request.Context()

	key, err := s.resolveKey(c)
	if err != nil {
		writeError(c, "Server.addToCart", err)
		return
	}

	sid := sessionID(c)

	current, err := s.deps.Carts.Load(ctx, sid)
	if err != nil {
		writeError(c, "Server.addToCart", fmt.Errorf("carts.Load: %w", err))
		return
	}

	cart.Add(&current, key, cart.ParseQuantity(c.PostForm("quantity")))

	if err := s.deps.Carts.Save(ctx, sid, current); err != nil {
		writeError(c, "Server.addToCart", fmt.Errorf("carts.Save: %w", err))
		return
	}

	summary, err := s.deps.Summarizer.Summarize(ctx, current)
	if err != nil {
		writeError(c, "Server.addToCart", fmt.Errorf("summarizer.Summarize: %w", err))
		return
	}

	c.JSON(http.StatusOK, cartResponse{Message: "Item adicionado ao carrinho.", Cart: summary})
}

func (s *Server) updateCart(c *gin.Context) {
	ctx := c.Request.Context()

	key, err := parseKey(c)
	if err != nil {
		writeError(c, "Server.updateCart", err)
		return
	}

	sid := sessionID(c)

	current, err := s.deps.Carts.Load(ctx, sid)
	if err != nil {
		writeError(c, "Server.updateCart", fmt.Errorf("carts.Load: %w", err))
		return
	}

	cart.Update(&current, key, cart.Action(c.PostForm("action")), c.PostForm("quantity"))

	if err := s.deps.Carts.Save(ctx, sid, current); err != nil {
		writeError(c, "Server.updateCart", fmt.Errorf("carts.Save: %w", err))
		return
	}

	summary, err := s.deps.Summarizer.Summarize(ctx, current)
	if err != nil {
		writeError(c, "Server.updateCart", fmt.Errorf("summarizer.Summarize: %w", err))
		return
	}

	c.JSON(http.StatusOK, cartResponse{Cart: summary})
}

func (s *Server) summarizeSession(c *gin.Context, sid string) (domain.CartSummary, error) {
	ctx := c.Request.Context()

	current, err := s.deps.Carts.Load(ctx, sid)
	if err != nil {
		return domain.CartSummary{}, fmt.Errorf("carts.Load: %w", err)
	}

	summary, err := s.deps.Summarizer.Summarize(ctx, current)
	if err != nil {
		return domain.CartSummary{}, fmt.Errorf("summarizer.Summarize: %w", err)
	}

	return summary, nil
}

// parseKey reads the product id from the path and the optional variant_id field.
func parseKey(c *gin.Context) (domain.CartKey, error) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil || productID <= 0 {
		return domain.CartKey{}, domain.NewValidationError("product_id", "Produto inválido.")
	}

	var variantID int64
	if raw := c.PostForm("variant_id"); raw != "" {
		variantID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || variantID < 0 {
			return domain.CartKey{}, domain.NewValidationError("variant_id", "Variação inválida.")
		}
	}

	return domain.CartKey{ProductID: productID, VariantID: variantID}, nil
}

// resolveKey parses the key and checks that it names something that can be sold.
func (s *Server) resolveKey(c *gin.Context) (domain.CartKey, error) {
	ctx := c.Request.Context()

	key, err := parseKey(c)
	if err != nil {
		return key, err
	}

	products, err := s.deps.Catalog.GetProducts(ctx, []int64{key.ProductID})
	if err != nil {
		return key, fmt.Errorf("catalog.GetProducts: %w", err)
	}
	if len(products) == 0 || !products[0].Available() {
		return key, fmt.Errorf("product[%d]: %w", key.ProductID, errProductNotFound)
	}

	if !key.HasVariant() {
		return key, nil
	}

	variants, err := s.deps.Catalog.GetVariants(ctx, []int64{key.VariantID})
	if err != nil {
		return key, fmt.Errorf("catalog.GetVariants: %w", err)
	}
	if len(variants) == 0 || !variants[0].Available() || variants[0].ProductID != key.ProductID {
		return key, fmt.Errorf("variant[%d]: %w", key.VariantID, errProductNotFound)
	}

	return key, nil
}
