package vehicle_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/geometry"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/randengine"
)

func runtimeConfig(t *testing.T) *config.RuntimeConfig {
	t.Helper()
	rc, err := config.NewRuntimeConfig(config.Default())
	require.NoError(t, err)
	return rc
}

func newVehicle(t *testing.T, start geometry.Point, heading float64) (*vehicle.Vehicle, *config.RuntimeConfig) {
	t.Helper()
	rc := runtimeConfig(t)
	v, err := vehicle.New(rc.Vehicle, rc.Sensor, rc.World, start, heading)
	require.NoError(t, err)
	return v, rc
}

func center() geometry.Point {
	return geometry.Point{X: 500, Y: 350}
}

func TestThrottleFromRest(t *testing.T) {
	v, _ := newVehicle(t, center(), 0)

	require.NoError(t, v.Advance(1.0, 0, 1))

	assert.Equal(t, 240.0, v.Speed())
	assert.Equal(t, 0.0, v.Heading())
	assert.Equal(t, 0.0, v.SteerAngle())
	assert.InDelta(t, 740, v.Position().X, 1e-9)
	assert.InDelta(t, 350, v.Position().Y, 1e-9)
}

func TestThrottleClampedToMaxSpeed(t *testing.T) {
	v, rc := newVehicle(t, geometry.Point{X: 100, Y: 350}, 0)
	for range 5 {
		require.NoError(t, v.Advance(0.5, 0, 1))
	}
	assert.Equal(t, rc.Vehicle.MaxSpeed, v.Speed())

	for range 20 {
		require.NoError(t, v.Advance(0.5, 0, -1))
	}
	assert.Equal(t, rc.Vehicle.MaxReverseSpeed, v.Speed())
}

func TestSelfCenteringStep(t *testing.T) {
	v, _ := newVehicle(t, center(), 0)
	require.NoError(t, v.SetPose(entity.Pose{Position: center(), Speed: 50, SteerAngle: 0.3}))

	require.NoError(t, v.Advance(0.1, 0, 0))

	// 摩擦后速度38，仍高于回正阈值20
	assert.InDelta(t, 38, v.Speed(), 1e-9)
	assert.InDelta(t, 0.3-math.Pi/4*0.1, v.SteerAngle(), 1e-12)
	assert.Greater(t, v.SteerAngle(), 0.0)
}

func TestSelfCenteringReachesZero(t *testing.T) {
	for _, start := range []float64{0.3, -0.3, 0.001, -1e-6} {
		v, _ := newVehicle(t, geometry.Point{X: 100, Y: 350}, 0)
		require.NoError(t, v.SetPose(entity.Pose{Position: geometry.Point{X: 100, Y: 350}, Speed: 100, SteerAngle: start}))

		prev := math.Abs(v.SteerAngle())
		reached := false
		for range 50 {
			require.NoError(t, v.Advance(0.05, 0, 1))
			a := v.SteerAngle()
			assert.LessOrEqual(t, math.Abs(a), prev)
			assert.GreaterOrEqual(t, a*start, 0.0, "steer changed sign")
			prev = math.Abs(a)
			if a == 0 {
				reached = true
				break
			}
		}
		assert.True(t, reached, "steer from %v never reached zero", start)
	}
}

func TestSteerHeldAtLowSpeed(t *testing.T) {
	v, _ := newVehicle(t, center(), 0)
	require.NoError(t, v.SetPose(entity.Pose{Position: center(), Speed: 0, SteerAngle: 0.2}))

	for range 10 {
		require.NoError(t, v.Advance(0.1, 0, 0))
	}
	assert.Equal(t, 0.2, v.SteerAngle())
	assert.Equal(t, 0.0, v.Speed())
	assert.Equal(t, 0.0, v.Heading())
}

func TestSteerInputRateAndClamp(t *testing.T) {
	v, rc := newVehicle(t, center(), 0)

	require.NoError(t, v.Advance(0.1, 1, 0))
	assert.InDelta(t, math.Pi/2*0.1, v.SteerAngle(), 1e-12)

	for range 2 {
		require.NoError(t, v.Advance(0.1, 1, 0))
	}
	assert.Equal(t, rc.Vehicle.MaxSteerAngle, v.SteerAngle())

	for range 5 {
		require.NoError(t, v.Advance(0.1, -1, 0))
	}
	assert.Equal(t, -rc.Vehicle.MaxSteerAngle, v.SteerAngle())
}

func TestFrictionDecaysToExactlyZero(t *testing.T) {
	for _, start := range []float64{100, -100, 7} {
		v, _ := newVehicle(t, center(), 0)
		require.NoError(t, v.SetPose(entity.Pose{Position: center(), Speed: start}))

		prev := math.Abs(v.Speed())
		for range 20 {
			require.NoError(t, v.Advance(0.1, 0, 0))
			s := v.Speed()
			assert.LessOrEqual(t, math.Abs(s), prev)
			assert.GreaterOrEqual(t, s*start, 0.0, "speed crossed zero")
			prev = math.Abs(s)
		}
		assert.Equal(t, 0.0, v.Speed())
	}
}

func TestBicycleModelYaw(t *testing.T) {
	v, _ := newVehicle(t, center(), 0)
	require.NoError(t, v.SetPose(entity.Pose{Position: center(), Speed: 10, SteerAngle: 0.2}))

	require.NoError(t, v.Advance(0.01, 0, 0))

	speed := 10 - 120*0.01
	assert.InDelta(t, speed, v.Speed(), 1e-12)
	// 低于回正阈值，转角保持
	assert.Equal(t, 0.2, v.SteerAngle())
	assert.InDelta(t, speed*math.Tan(0.2)/52*0.01, v.Heading(), 1e-12)
}

func TestNoYawBelowMinimumSpeed(t *testing.T) {
	v, _ := newVehicle(t, center(), 0)
	require.NoError(t, v.SetPose(entity.Pose{Position: center(), Speed: 0.9, SteerAngle: 0.3}))

	require.NoError(t, v.Advance(0.001, 0, 0))
	assert.Less(t, v.Speed(), 1.0)
	assert.Equal(t, 0.0, v.Heading())
}

func TestYawRateClamp(t *testing.T) {
	rc := runtimeConfig(t)
	params := rc.Vehicle
	params.MaxYawRate = 0.5
	v, err := vehicle.New(params, rc.Sensor, rc.World, center(), 0)
	require.NoError(t, err)
	require.NoError(t, v.SetPose(entity.Pose{Position: center(), Speed: 280, SteerAngle: 0.3}))

	require.NoError(t, v.Advance(0.1, 1, 1))

	assert.Equal(t, params.MaxSteerAngle, v.SteerAngle())
	assert.InDelta(t, 0.05, v.Heading(), 1e-12)
}

func TestHeadingWrapsAroundPi(t *testing.T) {
	v, _ := newVehicle(t, center(), 0)
	require.NoError(t, v.SetPose(entity.Pose{Position: center(), Speed: 200, SteerAngle: 0.3, Heading: math.Pi - 0.01}))

	require.NoError(t, v.Advance(0.1, 1, 1))

	h := v.Heading()
	assert.Less(t, h, 0.0)
	assert.Greater(t, h, -math.Pi)
}

func TestWorldClampIndependentOfTrack(t *testing.T) {
	v, rc := newVehicle(t, geometry.Point{X: 995, Y: 350}, 0)
	require.NoError(t, v.SetPose(entity.Pose{Position: geometry.Point{X: 995, Y: 350}, Speed: 280}))

	require.NoError(t, v.Advance(0.5, 0, 1))
	assert.Equal(t, rc.World.MaxX, v.Position().X)
	assert.InDelta(t, 350, v.Position().Y, 1e-9)
	assert.False(t, rc.Track.Contains(v.Position()))

	// 继续前进仍被钉在世界边界
	require.NoError(t, v.Advance(0.5, 0, 1))
	assert.Equal(t, rc.World.MaxX, v.Position().X)
}

func TestAdvanceRejectsInvalidInput(t *testing.T) {
	v, _ := newVehicle(t, center(), 0.5)
	require.NoError(t, v.SetPose(entity.Pose{Position: center(), Heading: 0.5, Speed: 100, SteerAngle: 0.1}))
	before := v.Pose()

	for _, dt := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, v.Advance(dt, 0, 1), vehicle.ErrInvalidDT, "dt=%v", dt)
	}
	assert.ErrorIs(t, v.Advance(0.1, 2, 0), vehicle.ErrInvalidInput)
	assert.ErrorIs(t, v.Advance(0.1, 0, -3), vehicle.ErrInvalidInput)
	// 乘积溢出
	assert.ErrorIs(t, v.Advance(math.MaxFloat64, 0, 1), vehicle.ErrNonFinite)

	assert.Equal(t, before, v.Pose())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	rc := runtimeConfig(t)

	bad := rc.Vehicle
	bad.WheelBase = 0
	_, err := vehicle.New(bad, rc.Sensor, rc.World, center(), 0)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	bad = rc.Vehicle
	bad.MaxReverseSpeed = bad.MaxSpeed + 1
	_, err = vehicle.New(bad, rc.Sensor, rc.World, center(), 0)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	sensor := rc.Sensor
	sensor.Step = 0
	_, err = vehicle.New(rc.Vehicle, sensor, rc.World, center(), 0)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = vehicle.New(rc.Vehicle, rc.Sensor, rc.World, geometry.Point{X: math.NaN()}, 0)
	assert.ErrorIs(t, err, vehicle.ErrNonFinite)

	v, _ := newVehicle(t, center(), 0)
	assert.ErrorIs(t, v.SetPose(entity.Pose{Speed: math.Inf(1)}), vehicle.ErrNonFinite)
}

func TestStateBoundsUnderRandomInputs(t *testing.T) {
	v, rc := newVehicle(t, center(), 0)
	e := randengine.New(2024)
	for range 5000 {
		dt := e.Uniform(1e-4, 0.5)
		steering := e.IntRange(-1, 1)
		throttle := e.IntRange(-1, 1)
		require.NoError(t, v.Advance(dt, steering, throttle))
		v.RecomputeSensors(rc.Track)

		h := v.Heading()
		assert.True(t, h > -math.Pi && h <= math.Pi, "heading %v", h)
		assert.GreaterOrEqual(t, v.Speed(), rc.Vehicle.MaxReverseSpeed)
		assert.LessOrEqual(t, v.Speed(), rc.Vehicle.MaxSpeed)
		assert.LessOrEqual(t, math.Abs(v.SteerAngle()), rc.Vehicle.MaxSteerAngle)
		p := v.Position()
		assert.True(t, p.X >= 0 && p.X <= rc.World.MaxX && p.Y >= 0 && p.Y <= rc.World.MaxY, "position %v", p)
		for _, r := range v.Sensors() {
			assert.GreaterOrEqual(t, r.Distance, 0.0)
			assert.LessOrEqual(t, r.Distance, rc.Sensor.MaxRange)
		}
		obs := v.Observe()
		for _, d := range obs.Sensors() {
			assert.True(t, d >= 0 && d <= 1, "normalized distance %v", d)
		}
		assert.True(t, obs.Speed() >= 0 && obs.Speed() <= 1)
		assert.True(t, obs.Steer() >= -1 && obs.Steer() <= 1)
	}
}

func TestWheels(t *testing.T) {
	v, _ := newVehicle(t, geometry.Point{X: 100, Y: 100}, 0)
	require.NoError(t, v.SetPose(entity.Pose{Position: geometry.Point{X: 100, Y: 100}, SteerAngle: 0.2}))

	wheels := v.Wheels()
	want := []geometry.Point{{X: 74, Y: 116}, {X: 74, Y: 84}, {X: 126, Y: 116}, {X: 126, Y: 84}}
	for i, w := range wheels {
		assert.InDelta(t, want[i].X, w.Position.X, 1e-9)
		assert.InDelta(t, want[i].Y, w.Position.Y, 1e-9)
		assert.Equal(t, i >= 2, w.Front)
		if w.Front {
			assert.InDelta(t, 0.2, w.Heading, 1e-12)
		} else {
			assert.Equal(t, 0.0, w.Heading)
		}
	}
}

func TestTelemetry(t *testing.T) {
	v, rc := newVehicle(t, center(), 0)
	require.NoError(t, v.SetPose(entity.Pose{Position: center(), Speed: 150, SteerAngle: rc.Vehicle.MaxSteerAngle / 2}))

	tm := v.Telemetry()
	assert.InDelta(t, 15, tm.SpeedKmh, 1e-9)
	assert.InDelta(t, 9, tm.SteerDeg, 1e-9)
	assert.InDelta(t, 0.5, tm.SteerNorm, 1e-12)
	assert.Contains(t, tm.String(), "km/h")
}

func TestObserveLayoutAndIdempotence(t *testing.T) {
	v, rc := newVehicle(t, center(), 0)

	obs := v.Observe()
	require.Len(t, obs, len(rc.Sensor.Angles)+2)
	for _, d := range obs.Sensors() {
		assert.Equal(t, 1.0, d)
	}
	assert.InDelta(t, 0.3, obs.Speed(), 1e-12)
	assert.Equal(t, 0.0, obs.Steer())

	require.NoError(t, v.Advance(0.1, 1, 1))
	v.RecomputeSensors(rc.Track)
	first := v.Observe()
	second := v.Observe()
	if diff := cmp.Diff(first, second, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("observe not idempotent (-first +second):\n%s", diff)
	}
	assert.InDelta(t, (24.0+120)/400, first.Speed(), 1e-12)
	assert.InDelta(t, (math.Pi/20)/(math.Pi/10), first.Steer(), 1e-12)
}

func TestObserveZeroMaxSteer(t *testing.T) {
	rc := runtimeConfig(t)
	params := rc.Vehicle
	params.MaxSteerAngle = 0
	v, err := vehicle.New(params, rc.Sensor, rc.World, center(), 0)
	require.NoError(t, err)
	require.NoError(t, v.Advance(0.1, 1, 1))
	assert.Equal(t, 0.0, v.Observe().Steer())
}
