package htmltext

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// 换行分隔的块级标签，保证同一行身价文本不会跨元素粘连
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "li": {}, "tr": {}, "td": {}, "th": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"table": {}, "ul": {}, "ol": {}, "section": {}, "article": {},
	"header": {}, "footer": {}, "blockquote": {},
}

// VisibleText 提取页面可见文本：剔除脚本样式，块级元素之间以换行分隔
func VisibleText(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("解析HTML失败: %w", err)
	}
	doc.Find("script, style, noscript, iframe").Remove()

	var b strings.Builder
	for _, n := range doc.Nodes {
		collectText(n, &b)
	}
	return b.String(), nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
	if n.Type == html.ElementNode {
		if _, ok := blockTags[n.Data]; ok {
			b.WriteByte('\n')
		}
	}
}
