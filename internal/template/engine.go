// Package template renders the outbound WhatsApp messages from embedded text templates.
package template

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/nikolayk812/pixshop/internal/domain"
)

const OrderPaid = "order_paid.tmpl"

//go:embed data/*.tmpl
var files embed.FS

type Engine struct {
	tmpl *template.Template
}

func NewEngine() (*Engine, error) {
	tmpl, err := template.New("messages").Option("missingkey=error").ParseFS(files, "data/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS: %w", err)
	}

	return &Engine{tmpl: tmpl}, nil
}

func (e *Engine) Render(name string, data any) (string, error) {
	var sb strings.Builder

	if err := e.tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("tmpl.ExecuteTemplate[%s]: %w", name, err)
	}

	return strings.TrimSpace(sb.String()), nil
}

// RenderOrderPaid builds the payment confirmation message for order.
func (e *Engine) RenderOrderPaid(order domain.Order) (string, error) {
	return e.Render(OrderPaid, BuildOrderPaidData(order))
}
