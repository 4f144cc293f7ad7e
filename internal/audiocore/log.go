package audiocore

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the package-wide structured logger, grounded on the teacher's
// use of charmbracelet/log for its daemon/worker output. Callers may
// replace it (e.g. cmd/audiocore wiring a custom level or writer) before
// starting an AudioTask.
var Logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "audiocore",
})

func init() {
	Logger.SetLevel(log.InfoLevel)
}
