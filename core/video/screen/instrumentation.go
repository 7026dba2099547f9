package screen

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/klaramir/livesession/core/video/screen"

var logger = otelslog.NewLogger(scopeName)
