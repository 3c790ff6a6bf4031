// Package repo 实现数据访问层，负责文档存储与领域模型之间的映射。
package repo

import (
	"fmt"

	"github.com/MorseWayne/pet_catalog/internal/docstore"
	"github.com/MorseWayne/pet_catalog/internal/domain"
)

// DecodeDiagnostic 记录解码时被修正或丢弃的字段，供日志观测，
// 避免防御性清洗变成静默丢数据。
type DecodeDiagnostic struct {
	DocID  string
	Field  string
	Reason string
}

// decodeProduct 将原始文档映射为商品模型，逐字段做防御性清洗：
//   - price 接受裸数字或带数字 amount 子字段的对象，其余归零；
//   - sizes 条目接受裸名称字符串（价格取商品解析价）或 {name, price} 对象，
//     无法解析出合法 name 的条目丢弃；
//   - colors 条目必须解析出 {name, imageUrl}，缺任一字段的条目丢弃。
//
// 单个字段非法只影响该字段，整条记录从不整体拒绝。
func decodeProduct(doc docstore.Document) (*domain.Product, []DecodeDiagnostic) {
	var diags []DecodeDiagnostic
	drop := func(field, reason string) {
		diags = append(diags, DecodeDiagnostic{DocID: doc.ID, Field: field, Reason: reason})
	}

	p := &domain.Product{
		ID:          doc.ID,
		Name:        asString(doc.Fields["name"]),
		Description: asString(doc.Fields["description"]),
		Category:    asString(doc.Fields["category"]),
		ImageURL:    asString(doc.Fields["imageUrl"]),
	}

	// price：裸数字或 {amount: number}
	switch v := doc.Fields["price"].(type) {
	case nil:
		drop("price", "missing, defaulted to 0")
	case float64:
		p.Price = v
	case map[string]any:
		if amount, ok := v["amount"].(float64); ok {
			p.Price = amount
		} else {
			drop("price", "object without numeric amount, defaulted to 0")
		}
	default:
		drop("price", fmt.Sprintf("unsupported type %T, defaulted to 0", v))
	}

	// order：数字转整型排序键，缺失或非法视为无序（排在末尾）
	if v, ok := doc.Fields["order"]; ok && v != nil {
		if f, ok := v.(float64); ok {
			order := int64(f)
			p.Order = &order
		} else {
			drop("order", fmt.Sprintf("unsupported type %T, treated as missing", v))
		}
	}

	// sizes：保序解码，重名条目保留先出现的
	if raw, ok := doc.Fields["sizes"].([]any); ok {
		seen := make(map[string]struct{})
		for i, entry := range raw {
			opt, ok := decodeSize(entry, p.Price)
			if !ok {
				drop("sizes", fmt.Sprintf("entry %d not a valid size option", i))
				continue
			}
			if _, dup := seen[opt.Name]; dup {
				drop("sizes", fmt.Sprintf("entry %d duplicates size %q", i, opt.Name))
				continue
			}
			seen[opt.Name] = struct{}{}
			p.Sizes = append(p.Sizes, opt)
		}
	} else if v, ok := doc.Fields["sizes"]; ok && v != nil {
		drop("sizes", fmt.Sprintf("unsupported type %T, dropped", v))
	}

	// colors：name 与 imageUrl 缺一不可
	if raw, ok := doc.Fields["colors"].([]any); ok {
		seen := make(map[string]struct{})
		for i, entry := range raw {
			opt, ok := decodeColor(entry)
			if !ok {
				drop("colors", fmt.Sprintf("entry %d not a valid color option", i))
				continue
			}
			if _, dup := seen[opt.Name]; dup {
				drop("colors", fmt.Sprintf("entry %d duplicates color %q", i, opt.Name))
				continue
			}
			seen[opt.Name] = struct{}{}
			p.Colors = append(p.Colors, opt)
		}
	} else if v, ok := doc.Fields["colors"]; ok && v != nil {
		drop("colors", fmt.Sprintf("unsupported type %T, dropped", v))
	}

	return p, diags
}

// decodeSize 解析单个尺寸条目。裸字符串视为名称，价格回退到商品解析价。
func decodeSize(entry any, fallbackPrice float64) (domain.SizeOption, bool) {
	switch v := entry.(type) {
	case string:
		if v == "" {
			return domain.SizeOption{}, false
		}
		return domain.SizeOption{Name: v, Price: fallbackPrice}, true
	case map[string]any:
		name, ok := v["name"].(string)
		if !ok || name == "" {
			return domain.SizeOption{}, false
		}
		price, ok := v["price"].(float64)
		if !ok {
			price = fallbackPrice
		}
		return domain.SizeOption{Name: name, Price: price}, true
	default:
		return domain.SizeOption{}, false
	}
}

// decodeColor 解析单个颜色条目
func decodeColor(entry any) (domain.ColorOption, bool) {
	v, ok := entry.(map[string]any)
	if !ok {
		return domain.ColorOption{}, false
	}
	name, ok := v["name"].(string)
	if !ok || name == "" {
		return domain.ColorOption{}, false
	}
	imageURL, ok := v["imageUrl"].(string)
	if !ok || imageURL == "" {
		return domain.ColorOption{}, false
	}
	return domain.ColorOption{Name: name, ImageURL: imageURL}, true
}

// encodeProductFields 将商品字段编码为文档字段（不含 ID）
func encodeProductFields(name, description string, price float64, category, imageURL string,
	order *int64, sizes []domain.SizeOption, colors []domain.ColorOption) map[string]any {

	fields := map[string]any{
		"name":        name,
		"description": description,
		"price":       price,
		"category":    category,
		"imageUrl":    imageURL,
	}
	if order != nil {
		fields["order"] = float64(*order)
	}
	sizeEntries := make([]any, 0, len(sizes))
	for _, s := range sizes {
		sizeEntries = append(sizeEntries, map[string]any{"name": s.Name, "price": s.Price})
	}
	fields["sizes"] = sizeEntries
	colorEntries := make([]any, 0, len(colors))
	for _, c := range colors {
		colorEntries = append(colorEntries, map[string]any{"name": c.Name, "imageUrl": c.ImageURL})
	}
	fields["colors"] = colorEntries
	return fields
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
