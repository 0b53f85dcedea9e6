package specload

import (
	"testing"

	"github.com/CaptainPineapple/melsec-gateway/r3"
)

func TestMotionProfileOverride_FiresOnRHAxis(t *testing.T) {
	got, ok := motionProfileOverride("MotionProfile", 1, 3, "rh-something")
	if !ok {
		t.Fatalf("override should fire")
	}
	if got.Name != "LINEAR" || got.Value != 3 {
		t.Fatalf("got %+v", got)
	}
}

func TestMotionProfileOverride_RequiresExactIdentity(t *testing.T) {
	if _, ok := motionProfileOverride("MotionProfile", 2, 3, "rh-something"); ok {
		t.Fatalf("override must not fire off mecha 1")
	}
	if _, ok := motionProfileOverride("MotionProfile", 1, 4, "rh-something"); ok {
		t.Fatalf("override must not fire off id 3")
	}
	if _, ok := motionProfileOverride("MotionProfile", 1, 3, "linear-type"); ok {
		t.Fatalf("override must not fire without an rh-prefixed answer")
	}
}

func TestMotionDeviceCategoryOverride(t *testing.T) {
	got, ok := motionDeviceCategoryOverride("MotionDeviceCategory", 2)
	if !ok || got.Name != "OTHER" || got.Value != 0 {
		t.Fatalf("got %+v, %v", got, ok)
	}
	if _, ok := motionDeviceCategoryOverride("MotionDeviceCategory", 1); ok {
		t.Fatalf("override must not fire on mecha 1")
	}
}

func TestEvaluateEnum_StillReachableWithoutOverride(t *testing.T) {
	cases := []r3.EnumCase{
		{Key: "^SOME", Name: "SOME_TYPE", Value: 1},
		{Key: "Default", Name: "UNKNOWN", Value: -1},
	}
	got, err := r3.EvaluateEnum("SOMETHING", cases)
	if err != nil {
		t.Fatalf("EvaluateEnum: %v", err)
	}
	if got.Name != "SOME_TYPE" {
		t.Fatalf("got %+v", got)
	}
}
