// Package domain 定义使用统计模型：只做前向累加，从不回算历史。
package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// setDataType 集合字段在 JSON 中的类型标记，与历史数据格式保持兼容
const setDataType = "Set"

// StringSet 字符串集合。
// JSON 编码为 {"__dataType":"Set","value":[...]}，解码时还原为集合，
// 这样集合字段经由任何 JSON 持久化通道都能无损往返。
type StringSet map[string]struct{}

// NewStringSet 创建集合，可带初始成员
func NewStringSet(members ...string) StringSet {
	s := make(StringSet, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Add 添加成员
func (s StringSet) Add(member string) {
	s[member] = struct{}{}
}

// Contains 判断成员是否存在
func (s StringSet) Contains(member string) bool {
	_, ok := s[member]
	return ok
}

// Len 返回集合大小
func (s StringSet) Len() int { return len(s) }

// setEnvelope 集合的 JSON 线格式
type setEnvelope struct {
	DataType string   `json:"__dataType"`
	Value    []string `json:"value"`
}

// MarshalJSON 编码为带类型标记的数组信封，成员排序保证输出稳定。
func (s StringSet) MarshalJSON() ([]byte, error) {
	members := make([]string, 0, len(s))
	for m := range s {
		members = append(members, m)
	}
	sort.Strings(members)
	return json.Marshal(setEnvelope{DataType: setDataType, Value: members})
}

// UnmarshalJSON 从信封或裸数组还原集合。
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var env setEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.DataType == setDataType {
		*s = NewStringSet(env.Value...)
		return nil
	}
	// 兼容未加标记的裸数组
	var members []string
	if err := json.Unmarshal(data, &members); err == nil {
		*s = NewStringSet(members...)
		return nil
	}
	return fmt.Errorf("invalid set encoding: %s", string(data))
}

// ProductStat 单个商品的加购统计
type ProductStat struct {
	Name        string `json:"name"`
	AddedToCart int64  `json:"addedToCart"`
}

// AnalyticsData 使用统计。
// 所有计数只做增量累加；重置是唯一的清零途径，且必须连同持久副本一起清除。
type AnalyticsData struct {
	ProductStats          map[string]*ProductStat `json:"productStats"`
	SessionsWithCartItems StringSet               `json:"sessionsWithCartItems"`
	QuotesCompleted       int64                   `json:"quotesCompleted"`
	TotalVisits           int64                   `json:"totalVisits"`
}

// NewAnalyticsData 创建零值统计
func NewAnalyticsData() *AnalyticsData {
	return &AnalyticsData{
		ProductStats:          make(map[string]*ProductStat),
		SessionsWithCartItems: NewStringSet(),
	}
}

// Clone 返回深拷贝。统计映射和会话集合会被并发写入，
// 调用方要在锁外读取或序列化时必须持有独立副本。
func (a *AnalyticsData) Clone() *AnalyticsData {
	stats := make(map[string]*ProductStat, len(a.ProductStats))
	for id, stat := range a.ProductStats {
		c := *stat
		stats[id] = &c
	}
	sessions := make(StringSet, len(a.SessionsWithCartItems))
	for m := range a.SessionsWithCartItems {
		sessions[m] = struct{}{}
	}
	return &AnalyticsData{
		ProductStats:          stats,
		SessionsWithCartItems: sessions,
		QuotesCompleted:       a.QuotesCompleted,
		TotalVisits:           a.TotalVisits,
	}
}

// RecordAddToCart 记录一次加购：商品计数 +1（条目不存在时以当前商品名创建），
// 并把会话 ID 加入有购物车商品的会话集合。
func (a *AnalyticsData) RecordAddToCart(productID, productName, sessionID string) {
	stat, ok := a.ProductStats[productID]
	if !ok {
		stat = &ProductStat{Name: productName}
		a.ProductStats[productID] = stat
	}
	stat.AddedToCart++
	a.SessionsWithCartItems.Add(sessionID)
}

// RecordVisit 记录一次新会话访问
func (a *AnalyticsData) RecordVisit() {
	a.TotalVisits++
}

// RecordQuoteCompletion 记录一次完成的报价流程
func (a *AnalyticsData) RecordQuoteCompletion() {
	a.QuotesCompleted++
}

// ConversionRate 返回报价转化率（完成报价数 / 有购物车商品的会话数），
// 无会话时为 0。
func (a *AnalyticsData) ConversionRate() float64 {
	sessions := a.SessionsWithCartItems.Len()
	if sessions == 0 {
		return 0
	}
	return float64(a.QuotesCompleted) / float64(sessions)
}
