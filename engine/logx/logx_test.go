package logx

import "testing"

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel,
		"info":  InfoLevel,
		"warn":  WarnLevel,
		"error": ErrorLevel,
		"panic": PanicLevel,
		"fatal": FatalLevel,
	}
	for name, want := range cases {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
	if got := ParseLevel("bogus"); got != DebugLevel {
		t.Errorf("ParseLevel(bogus) = %v, want DebugLevel", got)
	}
}

func TestLoggingDoesNotPanic(t *testing.T) {
	SetComponent("logx_test")
	SetLevel(InfoLevel)
	Debugf("should not be emitted")
	Infof("hello %d", 1)
	Warnf("careful %d", 2)
	Errorf("broken %d", 3)
}
