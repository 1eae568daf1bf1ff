package dictionary

import (
	"context"
	"strings"
)

// TranslationService lets hosts override the built-in message catalog.
type TranslationService interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

// DefaultLocale is used when the viewer does not provide one.
const DefaultLocale = "en"

var catalog = map[string]map[string]string{
	"page.title":             {"default": "Dictionary Management", "zh": "数据字典管理"},
	"page.add":               {"default": "Add dictionary item", "zh": "添加字典项"},
	"page.search_type":       {"default": "Search dictionary type", "zh": "搜索字典类型"},
	"page.search_label":      {"default": "Search label", "zh": "搜索标签"},
	"page.search":            {"default": "Search", "zh": "搜索"},
	"page.reset":             {"default": "Reset", "zh": "重置"},
	"page.add_item":          {"default": "Add item", "zh": "添加项"},
	"page.current":           {"default": "Current dictionary:", "zh": "当前字典："},
	"page.select_prompt":     {"default": "Please select a dictionary type", "zh": "请选择字典类型"},
	"page.empty":             {"default": "No data", "zh": "暂无数据"},
	"page.edit":              {"default": "Edit", "zh": "编辑"},
	"page.delete":            {"default": "Delete", "zh": "删除"},
	"page.confirm_delete":    {"default": "Delete this record?", "zh": "确定要删除这条记录吗？"},
	"page.ok":                {"default": "OK", "zh": "确定"},
	"page.cancel":            {"default": "Cancel", "zh": "取消"},
	"page.save":              {"default": "Save", "zh": "保存"},
	"page.prev":              {"default": "Previous", "zh": "上一页"},
	"page.next":              {"default": "Next", "zh": "下一页"},
	"page.page_size":         {"default": "Page size", "zh": "每页条数"},
	"page.total":             {"default": "Total", "zh": "共"},
	"page.loading":           {"default": "Loading…", "zh": "加载中…"},
	"drawer.add":             {"default": "Add dictionary item", "zh": "添加字典项"},
	"drawer.edit":            {"default": "Edit dictionary item", "zh": "编辑字典项"},
	"column.type":            {"default": "Dictionary type", "zh": "字典类型"},
	"column.created_at":      {"default": "Created", "zh": "创建时间"},
	"column.updated_at":      {"default": "Updated", "zh": "更新时间"},
	"column.actions":         {"default": "Actions", "zh": "操作"},
	"field.type":             {"default": "Type", "zh": "类型"},
	"field.label":            {"default": "Label", "zh": "标签"},
	"field.value":            {"default": "Value", "zh": "值"},
	"field.sort":             {"default": "Sort", "zh": "排序"},
	"field.description":      {"default": "Description", "zh": "描述"},
	"form.required":          {"default": "Please enter {field}", "zh": "请输入{field}"},
	"form.sort_number":       {"default": "Sort must be a whole number", "zh": "排序必须是整数"},
	"form.sort_minimum":      {"default": "Sort must not be negative", "zh": "排序不能小于0"},
	"form.invalid":           {"default": "{field} is invalid", "zh": "{field}格式不正确"},
	"notice.created.title":   {"default": "Added!", "zh": "添加成功!"},
	"notice.created.body":    {"default": "New dictionary item added.", "zh": "新字典项已成功添加。"},
	"notice.updated.title":   {"default": "Updated!", "zh": "更新成功!"},
	"notice.updated.body":    {"default": "Dictionary item updated.", "zh": "字典项已成功更新。"},
	"notice.deleted.title":   {"default": "Deleted!", "zh": "删除成功!"},
	"notice.deleted.body":    {"default": "Dictionary item deleted.", "zh": "字典项已删除"},
	"notice.transport.title": {"default": "Request failed", "zh": "请求失败"},
	"chart.title":            {"default": "Items per type", "zh": "各类型字典项数量"},
	"chart.series":           {"default": "Items", "zh": "字典项"},
}

// ResolveLocalizedValue selects the best translation for the provided locale and falls back to the supplied value.
// Keys are matched case-insensitively, and language-region pairs (`zh-cn`) fall back to their base language (`zh`).
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	if value, ok := values["default"]; ok && value != "" {
		return value
	}
	return fallback
}

// Message resolves a catalog entry, substituting `{name}` placeholders.
func Message(locale, key string, args map[string]string) string {
	text := ResolveLocalizedValue(catalog[key], locale, key)
	return interpolate(text, args)
}

// Messages returns every catalog entry for the locale, used by templates.
func Messages(locale string) map[string]string {
	out := make(map[string]string, len(catalog))
	for key := range catalog {
		out[strings.ReplaceAll(key, ".", "_")] = Message(locale, key, nil)
	}
	return out
}

func translateOrFallback(ctx context.Context, svc TranslationService, locale, key string, args map[string]string) string {
	if svc != nil {
		params := make(map[string]any, len(args))
		for k, v := range args {
			params[k] = v
		}
		if translated, err := svc.Translate(ctx, key, locale, params); err == nil && translated != "" {
			return translated
		}
	}
	return Message(locale, key, args)
}

func interpolate(text string, args map[string]string) string {
	if len(args) == 0 {
		return text
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(locale)), "_", "-")
}
