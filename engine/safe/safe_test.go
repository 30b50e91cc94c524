package safe

import (
	"fmt"
	"testing"
)

func TestRun(t *testing.T) {
	if paniced := Run(func() {}); paniced {
		t.Fatal("expected no panic")
	}
	if paniced := Run(func() { panic(1) }); !paniced {
		t.Fatal("expected panic to be reported")
	}
	if paniced := Run(func() { panic(fmt.Errorf("bad")) }); !paniced {
		t.Fatal("expected panic to be reported")
	}
}
