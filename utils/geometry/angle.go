package geometry

import "math"

const twoPi = 2 * math.Pi

// WrapToPi 将角度归一化到 (-π, π]
// 功能：对任意有限角度做真正的取模回绕（不是截断）
// 算法说明：
// 1. 先平移π后对2π取模，得到 [0, 2π)（负余数加2π修正）
// 2. 再平移回 [-π, π)
// 3. 恰好落在-π的结果映射为π，保证区间左开右闭
// 说明：NaN/Inf输入原样返回NaN，由调用方在步进边界处拒绝
func WrapToPi(angle float64) float64 {
	a := math.Mod(angle+math.Pi, twoPi)
	if a < 0 {
		a += twoPi
	}
	a -= math.Pi
	if a <= -math.Pi {
		a = math.Pi
	}
	return a
}

// Radians 角度转弧度
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees 弧度转角度
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// IsFinite 非NaN且非Inf
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Sign 返回-1、0或1
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
