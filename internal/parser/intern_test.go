package parser

import (
	"fmt"
	"testing"
	"unsafe"
)

func TestStringIntern(t *testing.T) {
	si := NewStringIntern()

	line := "eth0 RX 1 TX 2"
	s1 := si.Intern(line[:4])
	s2 := si.Intern(string([]byte("eth0")))
	if s1 != s2 {
		t.Fatalf("Expected equal strings, got %q and %q", s1, s2)
	}
	if unsafe.StringData(s1) != unsafe.StringData(s2) {
		t.Error("Expected interned strings to share storage")
	}
	if unsafe.StringData(s1) == unsafe.StringData(line) {
		t.Error("Expected pooled name to be a copy of the line slice")
	}

	si.Intern("wlan0")
	if si.Len() != 2 {
		t.Errorf("Expected pool size 2, got %d", si.Len())
	}
}

func TestStringIntern_Bounded(t *testing.T) {
	si := NewStringIntern()
	for i := 0; i < MaxInternPoolSize+10; i++ {
		si.Intern(fmt.Sprintf("if%d", i))
	}
	if si.Len() != MaxInternPoolSize {
		t.Errorf("Expected pool capped at %d, got %d", MaxInternPoolSize, si.Len())
	}
	if got := si.Intern("overflow"); got != "overflow" {
		t.Errorf("Expected passthrough when full, got %q", got)
	}
}
