package vehicle

import "errors"

var (
	// ErrInvalidDT 时间步长非正或非有限
	ErrInvalidDT = errors.New("vehicle: dt must be positive and finite")
	// ErrInvalidInput 控制输入不在 {-1,0,1} 中
	ErrInvalidInput = errors.New("vehicle: control input must be -1, 0 or 1")
	// ErrNonFinite 状态或积分结果出现NaN/Inf
	ErrNonFinite = errors.New("vehicle: non-finite state")
)
