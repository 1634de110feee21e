package event

import (
	"reflect"
	"testing"
)

func TestSignal_EmitsInSubscriptionOrder(t *testing.T) {
	var s Signal[int]
	var got []string

	s.Subscribe(func(v int) { got = append(got, "a") })
	s.Subscribe(func(v int) { got = append(got, "b") })
	s.Subscribe(func(v int) { got = append(got, "c") })

	s.Emit(1)

	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestSignal_EmitWithoutSubscribersIsDropped(t *testing.T) {
	var s Signal[string]
	s.Emit("nobody listening")
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestSignal_Unsubscribe(t *testing.T) {
	var s Signal[int]
	calls := 0
	unsubscribe := s.Subscribe(func(int) { calls++ })
	s.Subscribe(func(int) {})

	s.Emit(1)
	unsubscribe()
	unsubscribe()
	s.Emit(2)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestSignal_SubscribeDuringEmitAppliesToNextEmit(t *testing.T) {
	var s Signal[int]
	late := 0
	s.Subscribe(func(int) {
		s.Subscribe(func(int) { late++ })
	})

	s.Emit(1)
	if late != 0 {
		t.Fatalf("late subscriber ran during the emit that added it")
	}
	s.Emit(2)
	if late != 1 {
		t.Fatalf("late = %d, want 1", late)
	}
}

func TestSignal_NilHandlerIgnored(t *testing.T) {
	var s Signal[int]
	unsubscribe := s.Subscribe(nil)
	unsubscribe()
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}
