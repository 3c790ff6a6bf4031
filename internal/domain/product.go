// Package domain 定义商品目录相关的业务领域模型和核心业务规则。
package domain

import (
	"sort"
)

// SizeOption 商品尺寸选项，可覆盖基础价格
type SizeOption struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ColorOption 商品颜色选项，可覆盖展示图片
type ColorOption struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// Product 表示商品领域模型。
// ID 由文档存储分配，对业务不透明。
// Order 为展示排序键，允许缺失：缺失视为无穷大，排在末尾；取值无需连续。
type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Category    string        `json:"category"`
	ImageURL    string        `json:"imageUrl"`
	Order       *int64        `json:"order"`
	Sizes       []SizeOption  `json:"sizes,omitempty"`
	Colors      []ColorOption `json:"colors,omitempty"`
}

// HasSizes 判断商品是否配置了尺寸选项
func (p *Product) HasSizes() bool { return len(p.Sizes) > 0 }

// HasColors 判断商品是否配置了颜色选项
func (p *Product) HasColors() bool { return len(p.Colors) > 0 }

// SizeByName 按名称查找尺寸选项，找不到返回 nil
func (p *Product) SizeByName(name string) *SizeOption {
	for i := range p.Sizes {
		if p.Sizes[i].Name == name {
			return &p.Sizes[i]
		}
	}
	return nil
}

// ColorByName 按名称查找颜色选项，找不到返回 nil
func (p *Product) ColorByName(name string) *ColorOption {
	for i := range p.Colors {
		if p.Colors[i].Name == name {
			return &p.Colors[i]
		}
	}
	return nil
}

// SortProductsByOrder 按 Order 升序稳定排序，Order 缺失的商品排在末尾。
func SortProductsByOrder(products []*Product) {
	sort.SliceStable(products, func(i, j int) bool {
		oi, oj := products[i].Order, products[j].Order
		switch {
		case oi == nil && oj == nil:
			return false
		case oi == nil:
			return false
		case oj == nil:
			return true
		default:
			return *oi < *oj
		}
	})
}

// NextOrder 计算新增商品应使用的排序键：(现有最大 Order 或 -1) + 1。
// Order 缺失的商品不参与最大值计算。
func NextOrder(products []*Product) int64 {
	max := int64(-1)
	for _, p := range products {
		if p.Order != nil && *p.Order > max {
			max = *p.Order
		}
	}
	return max + 1
}

// CreateProductRequest 表示创建商品请求（ID 与 Order 由系统分配）
type CreateProductRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Category    string        `json:"category"`
	ImageURL    string        `json:"imageUrl"`
	Sizes       []SizeOption  `json:"sizes,omitempty"`
	Colors      []ColorOption `json:"colors,omitempty"`
}

// UpdateProductRequest 表示整字段更新商品请求，按 ID 定位
type UpdateProductRequest struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Category    string        `json:"category"`
	ImageURL    string        `json:"imageUrl"`
	Order       *int64        `json:"order"`
	Sizes       []SizeOption  `json:"sizes,omitempty"`
	Colors      []ColorOption `json:"colors,omitempty"`
}
