package r3

import "testing"

func TestFormatRead_ScalarDouble(t *testing.T) {
	cmd := Command{Command: "VAL{i}", Match: `VAL=(-?\d+\.\d+)`, MechaNo: 1, TaskSlotNo: 1, ID: 2}
	outgoing, match := FormatRead(cmd, 0)
	if outgoing != "1;1;VAL2" {
		t.Fatalf("outgoing = %q, want %q", outgoing, "1;1;VAL2")
	}
	if match != `VAL=(-?\d+\.\d+)` {
		t.Fatalf("match = %q, want unchanged (no {i} in this match template)", match)
	}

	answer := "VAL=3.14"
	v, err := ParseFloat64(answer, match)
	if err != nil {
		t.Fatalf("ParseFloat64: %v", err)
	}
	if v != 3.14 {
		t.Fatalf("v = %v, want 3.14", v)
	}
}

func TestFormatRead_ArrayElement(t *testing.T) {
	cmd := Command{Command: "ARR{i}_{j}", Match: "ARR=(.+)", MechaNo: 2, TaskSlotNo: 3, ID: 4}
	outgoing, _ := FormatRead(cmd, 5)
	if outgoing != "2;3;ARR4_5" {
		t.Fatalf("outgoing = %q, want %q", outgoing, "2;3;ARR4_5")
	}
}

func TestFormatWrite(t *testing.T) {
	cmd := Command{Command: "SET{i}={value}", MechaNo: 1, TaskSlotNo: 1, ID: 7}
	outgoing := FormatWrite(cmd, "42")
	if outgoing != "1;1;SET7=42" {
		t.Fatalf("outgoing = %q, want %q", outgoing, "1;1;SET7=42")
	}
}

func TestFormatName(t *testing.T) {
	if got := FormatName("Axis_{i}", 3); got != "Axis_3" {
		t.Fatalf("got %q", got)
	}
	if got := FormatName("Range_{first16}_{last16}", 2); got != "Range_16_31" {
		t.Fatalf("got %q", got)
	}
}

func TestParsePosition_TenElementWithFlags(t *testing.T) {
	answer := "(1.0,2.0,3.0,4.0,5.0,6.0)(0,1)"
	out, err := ParsePosition(answer, 10)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	want := []float64{1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 0, 0, 0, 1}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %v, want %v (full: %v)", i, out[i], want[i], out)
		}
	}
}

func TestParsePosition_EightElementJointNoFlags(t *testing.T) {
	answer := "(10,20,30,40,50,60,70,80)"
	out, err := ParsePosition(answer, 8)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	for i, v := range []float64{10, 20, 30, 40, 50, 60, 70, 80} {
		if out[i] != v {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], v)
		}
	}
}

func TestEvaluateEnum_DeclaredCaseWithoutOverride(t *testing.T) {
	cases := []EnumCase{
		{Key: "^rh", Name: "RH_TYPE", Value: 1},
		{Key: "Default", Name: "UNKNOWN", Value: -1},
	}
	// Scenario 5: a MotionProfile override under mecha=1,id=3 forces
	// ("LINEAR", 3) ahead of any declared case when the answer matches
	// "^[rR][hH]"; that override lives in specload (it needs node
	// identity), so here we only confirm the underlying case evaluation a
	// declared case would fall back to without the override.
	got, err := EvaluateEnum("rh-something", cases)
	if err != nil {
		t.Fatalf("EvaluateEnum: %v", err)
	}
	if got.Name != "RH_TYPE" {
		t.Fatalf("got %+v", got)
	}
}

func TestEvaluateEnum_Default(t *testing.T) {
	cases := []EnumCase{
		{Key: "^rh", Name: "RH_TYPE", Value: 1},
		{Key: "Default", Name: "UNKNOWN", Value: -1},
	}
	got, err := EvaluateEnum("something-else", cases)
	if err != nil {
		t.Fatalf("EvaluateEnum: %v", err)
	}
	if got.Name != "UNKNOWN" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseBool_EmptyMatchChecksAnyAnswer(t *testing.T) {
	ok, err := ParseBool("", "", 0)
	if err != nil {
		t.Fatalf("ParseBool: %v", err)
	}
	if ok {
		t.Fatalf("empty answer should be false")
	}

	ok, err = ParseBool("1", "", 0)
	if err != nil {
		t.Fatalf("ParseBool: %v", err)
	}
	if !ok {
		t.Fatalf("non-empty answer should be true")
	}
}

func TestParseBool_PositionBit(t *testing.T) {
	ok, err := ParseBool("FLAGS=0A", "FLAGS=([0-9A-Fa-f]+)", 1)
	if err != nil {
		t.Fatalf("ParseBool: %v", err)
	}
	if !ok {
		t.Fatalf("0x0A has bit 1 set")
	}
	ok, err = ParseBool("FLAGS=0A", "FLAGS=([0-9A-Fa-f]+)", 2)
	if err != nil {
		t.Fatalf("ParseBool: %v", err)
	}
	if ok {
		t.Fatalf("0x0A does not have bit 2 set")
	}
}
