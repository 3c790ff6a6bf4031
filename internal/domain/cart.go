// Package domain 定义购物车领域模型：购物车行标识、变体定价解析与数量合并规则。
package domain

// 无变体时参与行标识的占位符
const (
	noSizeToken  = "nosize"
	noColorToken = "nocolor"
)

// CartItem 表示购物车中的一行。
// Price 为解析后的价格（可能来自尺寸变体），不是商品基础价。
// ImageURL 在选择了颜色变体时为变体图片，否则为商品主图。
type CartItem struct {
	CartItemID    string       `json:"cartItemId"`
	ProductID     string       `json:"productId"`
	Name          string       `json:"name"`
	Price         float64      `json:"price"`
	ImageURL      string       `json:"imageUrl"`
	Quantity      int          `json:"quantity"`
	SelectedSize  string       `json:"selectedSize,omitempty"`
	SelectedColor *ColorOption `json:"selectedColor,omitempty"`
}

// Subtotal 返回该行小计
func (it *CartItem) Subtotal() float64 {
	return it.Price * float64(it.Quantity)
}

// CartItemID 推导购物车行标识：productId + "-" + (尺寸或nosize) + "-" + (颜色或nocolor)。
// 同商品同尺寸同颜色的两次加购必须合并为同一行。
func CartItemID(productID, selectedSize, selectedColor string) string {
	size := selectedSize
	if size == "" {
		size = noSizeToken
	}
	color := selectedColor
	if color == "" {
		color = noColorToken
	}
	return productID + "-" + size + "-" + color
}

// ResolvePrice 解析购物车行价格：选中尺寸且商品定义了同名尺寸时取该尺寸价格，
// 否则取商品基础价。
func ResolvePrice(p *Product, selectedSize string) float64 {
	if selectedSize != "" {
		if opt := p.SizeByName(selectedSize); opt != nil {
			return opt.Price
		}
	}
	return p.Price
}

// ResolveImageURL 解析购物车行图片：选中颜色时取颜色变体图片，否则取商品主图。
func ResolveImageURL(p *Product, selectedColor *ColorOption) string {
	if selectedColor != nil && selectedColor.ImageURL != "" {
		return selectedColor.ImageURL
	}
	return p.ImageURL
}

// Cart 表示一个会话的购物车
type Cart struct {
	Items []CartItem `json:"items"`
}

// Add 按行标识合并加购：已存在同标识行则数量 +1，否则追加数量为 1 的新行。
// 商品无尺寸/颜色配置时按"无变体"处理。
func (c *Cart) Add(p *Product, selectedSize string, selectedColor *ColorOption) *CartItem {
	colorName := ""
	if selectedColor != nil {
		colorName = selectedColor.Name
	}
	id := CartItemID(p.ID, selectedSize, colorName)

	for i := range c.Items {
		if c.Items[i].CartItemID == id {
			c.Items[i].Quantity++
			return &c.Items[i]
		}
	}

	c.Items = append(c.Items, CartItem{
		CartItemID:    id,
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         ResolvePrice(p, selectedSize),
		ImageURL:      ResolveImageURL(p, selectedColor),
		Quantity:      1,
		SelectedSize:  selectedSize,
		SelectedColor: selectedColor,
	})
	return &c.Items[len(c.Items)-1]
}

// Remove 按行标识移除；行不存在时为无操作，不是错误。
func (c *Cart) Remove(cartItemID string) {
	for i := range c.Items {
		if c.Items[i].CartItemID == cartItemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity 将指定行数量替换为给定值（绝对值，非增量）。
// quantity <= 0 等价于 Remove：数量为零或负的行永远不会保留。
func (c *Cart) UpdateQuantity(cartItemID string, quantity int) {
	if quantity <= 0 {
		c.Remove(cartItemID)
		return
	}
	for i := range c.Items {
		if c.Items[i].CartItemID == cartItemID {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

// Clear 无条件清空购物车
func (c *Cart) Clear() {
	c.Items = nil
}

// Total 返回购物车合计。派生值，每次重新计算，不单独存储。
func (c *Cart) Total() float64 {
	var total float64
	for i := range c.Items {
		total += c.Items[i].Subtotal()
	}
	return total
}

// ItemCount 返回购物车内商品总件数
func (c *Cart) ItemCount() int {
	var n int
	for i := range c.Items {
		n += c.Items[i].Quantity
	}
	return n
}
