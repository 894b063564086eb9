package app

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/pkg/errors"
)

// TransKey gin.Context 中存储翻译器的键
const TransKey = "trans"

type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 合并所有错误信息
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ",")
}

// MapsToString 字段名到错误信息
func (v ValidErrors) MapsToString() map[string]string {
	m := make(map[string]string, len(v))
	for _, err := range v {
		m[err.Key] = err.Message
	}
	return m
}

// NewTranslator configures gin's validator to report json field names and
// registers en and zh messages.
// NewTranslator 初始化验证器翻译，返回 UniversalTranslator
func NewTranslator() (*ut.UniversalTranslator, error) {
	validate, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, errors.New("gin validator engine is not validator/v10")
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	uni := ut.New(en.New(), en.New(), zh.New())
	enTran, _ := uni.GetTranslator("en")
	zhTran, _ := uni.GetTranslator("zh")

	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, errors.Wrap(err, "register en translations")
	}
	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, errors.Wrap(err, "register zh translations")
	}
	return uni, nil
}

// BindAndValid binds query, form or json into v and validates it with the
// translator stored on the context, falling back to raw messages.
// BindAndValid 绑定并校验参数
func BindAndValid(c *gin.Context, v any) (bool, ValidErrors) {
	var errs ValidErrors
	err := c.ShouldBind(v)
	if err == nil {
		return true, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs = append(errs, &ValidError{Key: "body", Message: err.Error()})
		return false, errs
	}

	trans, _ := c.Value(TransKey).(ut.Translator)
	for _, fe := range verrs {
		msg := fe.Error()
		if trans != nil {
			msg = fe.Translate(trans)
		}
		errs = append(errs, &ValidError{Key: fe.Field(), Message: msg})
	}
	return false, errs
}
