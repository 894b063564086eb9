package middleware

import (
	"strings"

	"github.com/dontknow492/Notes/pkg/app"
	"github.com/dontknow492/Notes/pkg/code"

	ut "github.com/go-playground/universal-translator"
	"github.com/gin-gonic/gin"
)

// LangWithTranslator 根据 lang 参数或请求头选择校验错误的翻译器
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string
		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		}
		lang = strings.ToLower(strings.ReplaceAll(lang, "-", "_"))

		if uni != nil {
			// 翻译器按 zh 注册，响应码按 zh_cn
			trans, found := uni.GetTranslator(strings.SplitN(lang, "_", 2)[0])
			if !found {
				trans, _ = uni.GetTranslator("en")
			}
			c.Set(app.TransKey, trans)
		}

		if lang != "" {
			if lang == "zh" {
				lang = "zh_cn"
			}
			_ = code.SetGlobalDefaultLang(lang)
		}

		c.Next()
	}
}
