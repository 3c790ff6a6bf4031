// Package domain 定义店铺主题模型。
package domain

// Theme 店铺主题：固定的六个命名颜色槽位，值为 CSS 颜色字符串。
// 启动时从持久存储加载（缺失时用默认值），仅管理端主题编辑器可修改，
// 每次变更都立即映射到展示层变量。
type Theme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
	Base100   string `json:"base100"`
	Base200   string `json:"base200"`
	Base300   string `json:"base300"`
}

// DefaultTheme 返回默认主题
func DefaultTheme() Theme {
	return Theme{
		Primary:   "#E0872E",
		Secondary: "#475569",
		Accent:    "#E0872E",
		Base100:   "#f8fafc",
		Base200:   "#e2e8f0",
		Base300:   "#cbd5e1",
	}
}

// ThemeUpdate 主题部分更新：非 nil 字段覆盖对应槽位
type ThemeUpdate struct {
	Primary   *string `json:"primary"`
	Secondary *string `json:"secondary"`
	Accent    *string `json:"accent"`
	Base100   *string `json:"base100"`
	Base200   *string `json:"base200"`
	Base300   *string `json:"base300"`
}

// Apply 将部分更新应用到主题
func (t *Theme) Apply(u *ThemeUpdate) {
	if u.Primary != nil {
		t.Primary = *u.Primary
	}
	if u.Secondary != nil {
		t.Secondary = *u.Secondary
	}
	if u.Accent != nil {
		t.Accent = *u.Accent
	}
	if u.Base100 != nil {
		t.Base100 = *u.Base100
	}
	if u.Base200 != nil {
		t.Base200 = *u.Base200
	}
	if u.Base300 != nil {
		t.Base300 = *u.Base300
	}
}

// CSSVariables 将命名槽位映射为展示层 CSS 变量。
// 驼峰槽位名转为连字符形式，如 base100 -> --base-100-color。
func (t *Theme) CSSVariables() map[string]string {
	return map[string]string{
		"--primary-color":   t.Primary,
		"--secondary-color": t.Secondary,
		"--accent-color":    t.Accent,
		"--base-100-color":  t.Base100,
		"--base-200-color":  t.Base200,
		"--base-300-color":  t.Base300,
	}
}
