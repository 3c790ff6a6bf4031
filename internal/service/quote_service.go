// Package service 实现报价（WhatsApp询价）业务逻辑。
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrEmptyCart 空购物车无法发起报价
var ErrEmptyCart = errors.New("cart is empty")

// QuoteRequest 报价请求中的客户信息
type QuoteRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Quote 报价结果：预填消息与指向固定号码的 WhatsApp 深链。
// 单向即发即弃的交接，不等待也不解析任何响应。
type Quote struct {
	Message     string  `json:"message"`
	WhatsAppURL string  `json:"whatsappUrl"`
	Total       float64 `json:"total"`
}

// QuoteService 定义报价业务逻辑接口
type QuoteService interface {
	// BuildQuote 汇总会话购物车生成报价消息与深链，
	// 记录一次报价完成并清空购物车
	BuildQuote(ctx context.Context, sessionID string, req *QuoteRequest) (*Quote, error)
}

// quoteService 实现 QuoteService 接口
type quoteService struct {
	cart           CartService
	analytics      AnalyticsService
	whatsappNumber string
}

// NewQuoteService 创建报价服务实例
func NewQuoteService(cart CartService, analytics AnalyticsService, whatsappNumber string) QuoteService {
	return &quoteService{cart: cart, analytics: analytics, whatsappNumber: whatsappNumber}
}

// BuildQuote 生成报价
func (s *quoteService) BuildQuote(ctx context.Context, sessionID string, req *QuoteRequest) (*Quote, error) {
	cart := s.cart.Cart(ctx, sessionID)
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var b strings.Builder
	b.WriteString("Olá! Gostaria de um orçamento para os seguintes itens:\n\n")
	for i := range cart.Items {
		item := &cart.Items[i]
		fmt.Fprintf(&b, "*%s* (x%d)\n", item.Name, item.Quantity)
		if item.SelectedSize != "" {
			fmt.Fprintf(&b, "Tamanho: %s\n", item.SelectedSize)
		}
		if item.SelectedColor != nil {
			fmt.Fprintf(&b, "Cor: %s\n", item.SelectedColor.Name)
		}
		if item.ImageURL != "" {
			fmt.Fprintf(&b, "Imagem: %s\n", item.ImageURL)
		}
		fmt.Fprintf(&b, "Subtotal: %s\n\n", FormatBRL(item.Subtotal()))
	}
	total := cart.Total()
	fmt.Fprintf(&b, "*Total do Orçamento: %s*\n\n", FormatBRL(total))
	fmt.Fprintf(&b, "Nome: %s\n", req.Name)
	fmt.Fprintf(&b, "Email: %s", req.Email)

	message := b.String()
	whatsappURL := fmt.Sprintf("https://wa.me/%s?text=%s", s.whatsappNumber, url.QueryEscape(message))

	s.analytics.TrackQuoteCompletion(ctx)
	s.cart.ClearCart(ctx, sessionID)

	return &Quote{Message: message, WhatsAppURL: whatsappURL, Total: total}, nil
}

// FormatBRL 按巴西格式渲染货币：千位用点，小数用逗号，如 R$ 1.234,56。
func FormatBRL(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	parts := strings.SplitN(s, ".", 2)
	intPart, decPart := parts[0], parts[1]

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	out := "R$ " + b.String() + "," + decPart
	if neg {
		out = "-" + out
	}
	return out
}
