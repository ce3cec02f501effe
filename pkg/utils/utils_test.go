package utils_test

import (
	"testing"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

func init() {
	utils.SetupIDWorker(1)
}

func Test_GenSpecIDStr(t *testing.T) {
	a := utils.GenSpecIDStr()
	b := utils.GenSpecIDStr()
	if a == b {
		t.Fatal("ids must be unique")
	}
}

func Test_RandomStr(t *testing.T) {
	if got := utils.RandomStr(32); len(got) != 32 {
		t.Fatalf("unexpected length %d", len(got))
	}
}

func Test_Random(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := utils.Random(0, 3)
		if v < 0 || v > 3 {
			t.Fatalf("out of range: %d", v)
		}
	}
}
