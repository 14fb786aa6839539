package common

import (
	"reflect"
	"testing"
)

func TestParseNodePath(t *testing.T) {
	cases := []struct {
		in       string
		abs      bool
		names    []string
		subNames []string
	}{
		{"", false, nil, nil},
		{"Target", false, []string{"Target"}, nil},
		{"../Armature/Skeleton3D:hips", false, []string{"..", "Armature", "Skeleton3D"}, []string{"hips"}},
		{"Mesh:blend_shapes:smile", false, []string{"Mesh"}, []string{"blend_shapes", "smile"}},
		{"/root/World", true, []string{"root", "World"}, nil},
		{".:position", false, []string{"."}, []string{"position"}},
	}
	for _, c := range cases {
		p := ParseNodePath(c.in)
		if p.Absolute != c.abs || !reflect.DeepEqual(p.Names, c.names) || !reflect.DeepEqual(p.SubNames, c.subNames) {
			t.Errorf("ParseNodePath(%q) = %+v", c.in, p)
		}
		if p.String() != c.in {
			t.Errorf("String() = %q, want %q", p.String(), c.in)
		}
	}
}

func TestSignal(t *testing.T) {
	var s Signal[int]
	var got []int

	a := s.Connect(func(v int) { got = append(got, v) })
	s.Connect(func(v int) { got = append(got, v*10) })
	s.Emit(1)
	if !reflect.DeepEqual(got, []int{1, 10}) {
		t.Fatalf("after first emit got %v", got)
	}

	s.Disconnect(a)
	if s.IsConnected(a) {
		t.Errorf("handler %d still connected", a)
	}
	s.Emit(2)
	if !reflect.DeepEqual(got, []int{1, 10, 20}) {
		t.Errorf("after disconnect got %v", got)
	}
}

func TestSignalDisconnectDuringEmit(t *testing.T) {
	var s Signal[string]
	calls := 0
	var id int
	id = s.Connect(func(string) {
		calls++
		s.Disconnect(id)
	})
	s.Emit("x")
	s.Emit("y")
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}
