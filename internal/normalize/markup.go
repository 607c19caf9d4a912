package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripMarkup 去掉本地化字符串中的内联 HTML/XML 标记，只保留文本（实体会被解码）。
//
// <br> 与块级元素边界替换为换行，随后由 Clean 统一处理空白。
// 不含 '<' 与 '&' 的文本原样返回；解析失败时也原样返回。
func StripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr").AppendHtml("\n")
	return strings.TrimRight(doc.Find("body").Text(), "\n")
}
