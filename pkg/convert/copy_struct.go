package convert

import (
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// Copy 将 src 中同名字段复制到 dst，切片和指针深拷贝
// dst 必须为指针
func Copy(dst any, src any) error {
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		return errors.Wrap(err, "copy struct")
	}
	return nil
}
