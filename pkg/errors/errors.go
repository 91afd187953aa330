package errors

import "errors"

// ErrQuotaConflict 条件扣减未命中：链接剩余机会不足或已被并发提交扣减
var ErrQuotaConflict = errors.New("链接配额已被并发操作占用，请刷新后重试")

// ErrDuplicateNumber 批量落账触碰 number 唯一约束：整批回滚，无部分写入
var ErrDuplicateNumber = errors.New("号码唯一约束冲突")

// NumbersSoldError 号码冲突：请求中的部分号码已被售出
// Numbers 为冲突子集，供客户端剔除后重试
type NumbersSoldError struct {
	Numbers []string
}

func (e *NumbersSoldError) Error() string {
	return "部分号码已被售出"
}

// AsNumbersSold 判断 err 是否为号码冲突错误
func AsNumbersSold(err error) (*NumbersSoldError, bool) {
	var target *NumbersSoldError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
