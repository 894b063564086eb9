package code

import (
	"errors"
)

// lang holds the English and Chinese message of a code.
// lang 存储英文和中文文本
type lang struct {
	en    string
	zh_cn string
}

const FALLBACK_LNG = "en"

var lng = FALLBACK_LNG

var supportedLanguages = []string{"en", "zh_cn"}

// GetMessage returns the message in the global language, falling back to English.
// GetMessage 根据全局语言返回消息，缺失时回退为英文
func (l lang) GetMessage() string {
	if lng == "zh_cn" && l.zh_cn != "" {
		return l.zh_cn
	}
	return l.en
}

// GetSupportedLanguages returns the languages a lang can carry.
func GetSupportedLanguages() []string {
	return append([]string{}, supportedLanguages...)
}

// SetGlobalDefaultLang sets the global language; unknown values reset it to en.
// SetGlobalDefaultLang 设置全局默认语言
func SetGlobalDefaultLang(language string) error {
	for _, l := range supportedLanguages {
		if l == language {
			lng = language
			return nil
		}
	}
	lng = FALLBACK_LNG
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang gets the global language.
func GetGlobalDefaultLang() string {
	return lng
}
