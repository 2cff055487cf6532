// Package web 嵌入服务端渲染的 HTML 模板
package web

import (
	"embed"
	"errors"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// URLFunc 将媒体存储路径映射为公开 URL
type URLFunc func(storedPath string) string

// Templates 解析全部模板；页面模板以文件名命名（如 "home.html"）
func Templates(mediaURL URLFunc) (*template.Template, error) {
	funcs := template.FuncMap{
		"mediaURL":   func(p string) string { return mediaURL(p) },
		"formatTime": formatTime,
		"dict":       dict,
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 2006 15:04")
}

// dict 供模板向子模板传递多个值：dict "Post" . "ViewerID" $id
func dict(kv ...interface{}) (map[string]interface{}, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, errors.New("dict: keys must be strings")
		}
		m[k] = kv[i+1]
	}
	return m, nil
}
