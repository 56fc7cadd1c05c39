package app

import (
	"os"
	"testing"

	"github.com/neox5/simv/seed"
)

func TestMain(m *testing.M) {
	seed.Init(1)
	os.Exit(m.Run())
}
