// 二维几何工具：点、轴对齐矩形、角度归一化与局部坐标变换
package geometry

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Point 二维点（世界坐标，单位：像素）
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f,%.2f)", p.X, p.Y)
}

// Add 向量加法
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Scale 向量数乘
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// IsFinite 判断两个分量是否都是有限值（非NaN、非Inf）
func (p Point) IsFinite() bool {
	return IsFinite(p.X) && IsFinite(p.Y)
}

// Polar 从原点出发沿angle方向前进distance后的点
func Polar(origin Point, angle, distance float64) Point {
	return Point{
		X: origin.X + math.Cos(angle)*distance,
		Y: origin.Y + math.Sin(angle)*distance,
	}
}

// LocalToWorld 局部坐标到世界坐标的变换
// 功能：将以origin为原点、朝向为heading的局部坐标系中的点(local.X前向, local.Y侧向)变换到世界坐标
// 参数：origin-局部坐标系原点，heading-局部坐标系x轴的世界朝向（弧度），local-局部坐标
// 返回：世界坐标
func LocalToWorld(origin Point, heading float64, local Point) Point {
	sin, cos := math.Sincos(heading)
	return Point{
		X: origin.X + cos*local.X - sin*local.Y,
		Y: origin.Y + sin*local.X + cos*local.Y,
	}
}

// Rect 轴对齐矩形
// 说明：点包含判定采用左闭右开区间 [Min, Max)，与像素矩形的判定方式一致
type Rect struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MinY float64 `json:"min_y" yaml:"min_y"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MaxY float64 `json:"max_y" yaml:"max_y"`
}

// NewRect 根据左上角与宽高创建矩形
func NewRect(x, y, w, h float64) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center 矩形中心
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Empty 矩形面积为0或为负
func (r Rect) Empty() bool {
	return !(r.MaxX > r.MinX && r.MaxY > r.MinY)
}

// Contains 判断点是否位于矩形内（左闭右开）
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}

// ContainsRect 判断矩形o是否完全位于r内（闭区间）
func (r Rect) ContainsRect(o Rect) bool {
	return o.MinX >= r.MinX && o.MaxX <= r.MaxX && o.MinY >= r.MinY && o.MaxY <= r.MaxY
}

// Clamp 将点的每个分量限制在矩形的闭区间 [Min, Max] 内
// 说明：这是世界边界的截断，与Contains的赛道判定相互独立
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: lo.Clamp(p.X, r.MinX, r.MaxX),
		Y: lo.Clamp(p.Y, r.MinY, r.MaxY),
	}
}

func (r Rect) IsFinite() bool {
	return IsFinite(r.MinX) && IsFinite(r.MinY) && IsFinite(r.MaxX) && IsFinite(r.MaxY)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.2f,%.2f)x[%.2f,%.2f)", r.MinX, r.MaxX, r.MinY, r.MaxY)
}
