package args_test

import (
	"testing"

	"github.com/slate-ml/slate/pkg/utils/args"
)

func TestKeyValues(t *testing.T) {
	t.Run("it collects repeated KEY=VALUE values in order", func(t *testing.T) {
		kvs := args.KeyValues{}
		for _, expr := range []string{"epochs=10", "lr=0.001", "epochs=20"} {
			if err := kvs.Set(expr); err != nil {
				t.Fatalf("failed to set %s: %+v", expr, err)
			}
		}

		if kvs.String() != "epochs=10,lr=0.001,epochs=20" {
			t.Errorf("String unmatch: %s", kvs.String())
		}

		m := kvs.Map()
		if m["epochs"] != "20" || m["lr"] != "0.001" {
			t.Errorf("Map unmatch: %+v", m)
		}
	})

	t.Run("values may contain =", func(t *testing.T) {
		kvs := args.KeyValues{}
		if err := kvs.Set("expr=a=b"); err != nil {
			t.Fatal(err)
		}
		if m := kvs.Map(); m["expr"] != "a=b" {
			t.Errorf("Map unmatch: %+v", m)
		}
	})

	t.Run("it rejects expressions without =", func(t *testing.T) {
		kvs := args.KeyValues{}
		if err := kvs.Set("nokey"); err == nil {
			t.Error("no error occured")
		}
		if err := kvs.Set("=value"); err == nil {
			t.Error("no error occured")
		}
	})
}
