// Package markdown 文章正文的渲染与文本提取
package markdown

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday"
)

var policy = bluemonday.UGCPolicy()

// ToHTML 将Markdown转换为经过清洗的HTML
func ToHTML(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	unsafe := blackfriday.MarkdownCommon([]byte(content))
	return string(policy.SanitizeBytes(unsafe))
}

// PlainText 提取HTML中的纯文本，空白折叠为单个空格
func PlainText(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script,style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// Summarize 截取前max个字符作为摘要
func Summarize(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
