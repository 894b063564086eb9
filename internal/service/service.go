package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/dontknow492/Notes/internal/dao"
	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/metrics"
	"github.com/dontknow492/Notes/pkg/code"
	"github.com/dontknow492/Notes/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/zap"
)

// toCodeError 将仓储层错误转换为响应码
func toCodeError(err error) error {
	if err == nil {
		return nil
	}

	var c *code.Code
	if errors.As(err, &c) {
		return err
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return code.ErrorInvalidParams.WithDetails(ve.Details()...).WithCause(err)
	}

	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		if nf.Entity == "tag" {
			return code.ErrorTagNotFound.WithDetails(nf.Error()).WithCause(err)
		}
		return code.ErrorNoteNotFound.WithDetails(nf.Error()).WithCause(err)
	}

	// 标签重名由 RenameTag 自行映射，其余约束失败属于存储错误
	if errors.Is(err, domain.ErrConstraint) {
		return code.ErrorStorage.WithDetails(err.Error()).WithCause(err)
	}

	if errors.Is(err, errChangeHubClosed) {
		return code.ErrorStorageRetryable.WithDetails(err.Error()).WithCause(err)
	}

	if errors.Is(err, context.Canceled) {
		return code.ErrorRequestTimeout.WithCause(err)
	}

	if dao.IsRetryable(err) {
		return code.ErrorStorageRetryable.WithCause(err)
	}
	return code.ErrorStorage.WithCause(err)
}

// tracked wraps one service call with a span, a metric sample and an error
// log line for storage failures.
type tracked struct {
	span    opentracing.Span
	op      string
	start   time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func track(ctx context.Context, lg *zap.Logger, m *metrics.Metrics, op string) (*tracked, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	return &tracked{span: span, op: op, start: time.Now(), logger: lg, metrics: m}, ctx
}

// done maps err, records it and finishes the span. It returns the mapped error.
func (t *tracked) done(err error, fields ...zap.Field) error {
	defer t.span.Finish()
	t.metrics.ObserveOperation(t.op, t.start, err)
	if err == nil {
		return nil
	}

	ext.Error.Set(t.span, true)
	t.span.LogKV("error", err.Error())

	mapped := toCodeError(err)
	if c, ok := mapped.(*code.Code); ok && c.StatusCode() >= 500 {
		t.logger.Warn("service operation failed", append(fields,
			zap.String(logger.FieldMethod, t.op),
			zap.Duration(logger.FieldDuration, time.Since(t.start)),
			zap.Error(err),
		)...)
	}
	return mapped
}

// inputValidator checks request shaped structs; field names come from the
// json tag so error details match the wire names.
var inputValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validate runs the validator and turns failures into a domain.ValidationError.
func validate(s interface{}) error {
	err := inputValidator.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule = fmt.Sprintf("%s=%s", rule, fe.Param())
		}
		fields[fe.Field()] = rule
	}
	return &domain.ValidationError{Fields: fields}
}

func validateID(field string, id int64) error {
	if id <= 0 {
		return &domain.ValidationError{Fields: map[string]string{field: "gt=0"}}
	}
	return nil
}
