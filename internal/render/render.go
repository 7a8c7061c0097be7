// Package render produces the bilingual comparison page linked from the
// Feishu card. Pure templating over normalized articles.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/diaozhan234-png/ai-news-daily/internal/news"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>AI资讯日报 | {{.Date}}</title>
<style>
body { font-family: "Microsoft YaHei", Arial, sans-serif; max-width: 1100px; margin: 0 auto; padding: 20px; line-height: 1.8; color: #333; background: #f5f7fa; }
.header { text-align: center; padding: 20px 0; border-bottom: 2px solid #3498db; margin-bottom: 30px; }
.header h1 { color: #2c3e50; font-size: 28px; }
.date { color: #7f8c8d; font-size: 15px; margin-top: 8px; }
.card { background: #fff; border-radius: 8px; padding: 25px; margin-bottom: 25px; box-shadow: 0 2px 8px rgba(0,0,0,0.08); }
.card h2 { color: #3498db; font-size: 20px; margin-bottom: 12px; border-left: 4px solid #3498db; padding-left: 10px; }
.meta { color: #7f8c8d; font-size: 14px; margin-bottom: 14px; }
.block { margin-bottom: 16px; padding: 14px; border-radius: 4px; }
.en { background: #f8f9fa; border-left: 4px solid #95a5a6; }
.zh { background: #e8f4fd; border-left: 4px solid #3498db; }
.block h3 { font-size: 15px; margin-bottom: 8px; color: #2c3e50; }
.link { display: inline-block; margin-top: 8px; padding: 6px 12px; background: #2980b9; color: #fff; text-decoration: none; border-radius: 4px; font-size: 14px; }
.empty { text-align: center; color: #7f8c8d; padding: 60px 0; }
</style>
</head>
<body>
<div class="header">
<h1>AI资讯日报 中英对照</h1>
<div class="date">更新时间：{{.Date}}</div>
</div>
{{if .Articles}}{{range $i, $a := .Articles}}
<div class="card">
<h2>{{inc $i}}. {{$a.Title.Translated}}</h2>
<div class="meta">来源：{{$a.SourceName}} | 热度：{{printf "%.1f" $a.Popularity}}{{if $a.CompanyTag}} | {{$a.CompanyTag}}{{end}}</div>
<div class="block en"><h3>英文标题</h3><p>{{$a.Title.Source}}</p></div>
<div class="block zh"><h3>中文标题</h3><p>{{$a.Title.Translated}}</p></div>
<div class="block en"><h3>英文正文</h3><p>{{$a.Body.Source}}</p></div>
<div class="block zh"><h3>中文翻译</h3><p>{{$a.Body.Translated}}</p></div>
<a class="link" href="{{$a.URL}}" target="_blank">查看英文原文</a>
</div>
{{end}}{{else}}
<div class="empty">今日暂无可用资讯</div>
{{end}}
</body>
</html>
`

var tmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(pageTemplate))

// Page renders the two-column comparison document.
func Page(articles []news.Article, date string) ([]byte, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Date     string
		Articles []news.Article
	}{Date: date, Articles: articles})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteIndex renders the page and writes it as index.html under dir.
func WriteIndex(articles []news.Article, date, dir string) (string, error) {
	data, err := Page(articles, date)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write index.html: %w", err)
	}
	return path, nil
}
